package board

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/http/dto"
	"shopfloor-tracker/internal/http/handlers"
)

type fakeSource struct {
	liveFn func(context.Context) (dto.LiveResponse, error)
}

func (f *fakeSource) Live(ctx context.Context) (dto.LiveResponse, error) {
	return f.liveFn(ctx)
}

func sample() dto.LiveResponse {
	return dto.LiveResponse{
		GeneratedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Machines: []dto.LiveEntryResponse{
			{
				Machine:              dto.MachineResponse{Code: "CNC-01", Name: "Lathe"},
				Status:               "running",
				Task:                 &dto.TaskResponse{QuantityAssigned: 100},
				Worker:               &dto.WorkerResponse{Username: "op1"},
				WorkOrder:            &dto.WorkOrderResponse{OrderNo: "WO-1"},
				Phase:                "production",
				ActiveElapsedSeconds: 3725,
			},
			{
				Machine: dto.MachineResponse{Code: "CNC-02", Name: "Mill"},
				Status:  "idle",
			},
		},
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := map[int64]string{0: "00:00:00", 59: "00:00:59", 3725: "01:02:05", -4: "00:00:00"}
	for in, want := range cases {
		if got := FormatElapsed(in); got != want {
			t.Fatalf("FormatElapsed(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	out := Render(sample(), nil, sample().GeneratedAt)

	for _, want := range []string{"CNC-01", "WO-1", "op1", "production", "01:02:05", "0/100", "CNC-02"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Render() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "CNC-01") > strings.Index(out, "CNC-02") {
		t.Fatalf("Render() reordered machines:\n%s", out)
	}
}

func TestRender_ErrorAndEmpty(t *testing.T) {
	out := Render(dto.LiveResponse{}, errors.New("connection refused"), time.Time{})
	if !strings.Contains(out, "connection refused") || !strings.Contains(out, "no machines") {
		t.Fatalf("Render() = %s", out)
	}
}

func TestModel_UpdateKeepsLastGoodData(t *testing.T) {
	m := NewModel(&fakeSource{}, 5*time.Second)

	next, _ := m.Update(dataMsg{Live: sample()})
	m = next.(Model)
	if len(m.live.Machines) != 2 {
		t.Fatalf("machines=%d, want 2", len(m.live.Machines))
	}

	next, _ = m.Update(dataMsg{Err: errors.New("timeout")})
	m = next.(Model)
	if len(m.live.Machines) != 2 || m.err == nil {
		t.Fatalf("after failed poll machines=%d err=%v", len(m.live.Machines), m.err)
	}
	if !strings.Contains(m.View(), "timeout") {
		t.Fatalf("View() hides poll error")
	}
}

func TestModel_FetchCmd(t *testing.T) {
	src := &fakeSource{liveFn: func(context.Context) (dto.LiveResponse, error) { return sample(), nil }}
	m := NewModel(src, 5*time.Second)

	msg := m.fetchCmd()()
	data, ok := msg.(dataMsg)
	if !ok || data.Err != nil || len(data.Live.Machines) != 2 {
		t.Fatalf("fetchCmd() msg=%#v", msg)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Update(q) cmd=nil, want quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("Update(q) did not quit")
	}
}

func TestClient_Live(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/live" || r.Header.Get(handlers.HeaderRole) != "supervisor" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"generated_at":"2025-03-10T09:00:00Z","machines":[{"machine":{"id":"m","code":"CNC-01","name":"Lathe","stopped":false},"status":"idle","phase":"","active_elapsed_seconds":0,"pause_elapsed_seconds":0}]}`))
	}))
	defer srv.Close()

	live, err := NewClient(srv.URL+"/", domain.Identity{Role: domain.RoleSupervisor}).Live(context.Background())
	if err != nil {
		t.Fatalf("Live() err=%v", err)
	}
	if len(live.Machines) != 1 || live.Machines[0].Machine.Code != "CNC-01" {
		t.Fatalf("Live() = %+v", live)
	}

	_, err = NewClient(srv.URL, domain.Identity{Role: domain.RoleWorker}).Live(context.Background())
	if err == nil || !strings.Contains(err.Error(), "forbidden") {
		t.Fatalf("Live(worker) err=%v, want forbidden", err)
	}
}
