package seed

import (
	"context"
	"io"
	"log"
	"testing"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/store/memory"
)

const fixture = `
machines:
  - code: CNC-01
    name: Lathe
  - id: 6f1c2a3e-0d4b-4c1e-9a55-0b7c1d2e3f40
    code: CNC-02
    name: Mill
work_orders:
  - order_no: WO-2025-001
    part_name: Flange
    quantity: 250
workers:
  - username: admin
    full_name: Floor Admin
    role: admin
  - username: op1
    role: worker
`

func TestParse_Valid(t *testing.T) {
	f, err := Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse() err=%v, want nil", err)
	}
	if len(f.Machines) != 2 || len(f.WorkOrders) != 1 || len(f.Workers) != 2 {
		t.Fatalf("Parse() = %+v", f)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "machines: [",
		"missing code":  "machines:\n  - name: Lathe\n",
		"zero quantity": "work_orders:\n  - order_no: WO-1\n    quantity: 0\n",
		"bad role":      "workers:\n  - username: x\n    role: owner\n",
		"bad id":        "machines:\n  - id: m1\n    code: C\n    name: N\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(body)); err == nil {
				t.Fatalf("Parse() err=nil, want error")
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	logger := log.New(io.Discard, "", 0)

	f, err := Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse() err=%v", err)
	}

	res, err := Apply(ctx, st, f, logger)
	if err != nil {
		t.Fatalf("Apply() err=%v, want nil", err)
	}
	if res != (Result{Machines: 2, WorkOrders: 1, Workers: 2}) {
		t.Fatalf("Apply() = %+v", res)
	}

	m, err := st.GetMachine(ctx, "6f1c2a3e-0d4b-4c1e-9a55-0b7c1d2e3f40")
	if err != nil || m.Code != "CNC-02" {
		t.Fatalf("GetMachine(fixed id) = %+v, %v", m, err)
	}
	orders, _ := st.ListWorkOrders(ctx)
	if orders[0].Status != domain.WorkOrderPending {
		t.Fatalf("work order status=%s, want pending", orders[0].Status)
	}

	again, err := Apply(ctx, st, f, logger)
	if err != nil {
		t.Fatalf("second Apply() err=%v", err)
	}
	if again != (Result{}) {
		t.Fatalf("second Apply() = %+v, want nothing created", again)
	}
}
