// Package seed loads demo floor data (machines, work orders, workers) from a
// YAML fixture. Applying a fixture twice is harmless: records whose natural
// key already exists are skipped.
package seed

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/store"
)

type Machine struct {
	ID   string `yaml:"id"`
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type WorkOrder struct {
	ID          string `yaml:"id"`
	OrderNo     string `yaml:"order_no"`
	PartName    string `yaml:"part_name"`
	Quantity    int    `yaml:"quantity"`
	Description string `yaml:"description"`
}

type Worker struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
}

type Fixture struct {
	Machines   []Machine   `yaml:"machines"`
	WorkOrders []WorkOrder `yaml:"work_orders"`
	Workers    []Worker    `yaml:"workers"`
}

// Result counts the records Apply created.
type Result struct {
	Machines   int
	WorkOrders int
	Workers    int
}

func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read seed: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse seed: %w", err)
	}
	return f, f.validate()
}

func (f Fixture) validate() error {
	for i, m := range f.Machines {
		if m.Code == "" || m.Name == "" {
			return fmt.Errorf("machines[%d]: code and name are required", i)
		}
		if err := optionalID(m.ID); err != nil {
			return fmt.Errorf("machines[%d]: %w", i, err)
		}
	}
	for i, wo := range f.WorkOrders {
		if wo.OrderNo == "" || wo.Quantity <= 0 {
			return fmt.Errorf("work_orders[%d]: order_no and a positive quantity are required", i)
		}
		if err := optionalID(wo.ID); err != nil {
			return fmt.Errorf("work_orders[%d]: %w", i, err)
		}
	}
	for i, w := range f.Workers {
		if w.Username == "" || !domain.Role(w.Role).Valid() {
			return fmt.Errorf("workers[%d]: username and a valid role are required", i)
		}
		if err := optionalID(w.ID); err != nil {
			return fmt.Errorf("workers[%d]: %w", i, err)
		}
	}
	return nil
}

func optionalID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("id %q is not a uuid", id)
	}
	return nil
}

func Apply(ctx context.Context, cat store.Catalog, f Fixture, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	var res Result

	machines, err := cat.ListMachines(ctx)
	if err != nil {
		return res, err
	}
	codes := make(map[string]bool, len(machines))
	for _, m := range machines {
		codes[m.Code] = true
	}
	for _, m := range f.Machines {
		if codes[m.Code] {
			continue
		}
		if _, err := cat.CreateMachine(ctx, domain.Machine{ID: m.ID, Code: m.Code, Name: m.Name}); err != nil {
			return res, fmt.Errorf("seed machine %s: %w", m.Code, err)
		}
		codes[m.Code] = true
		res.Machines++
	}

	orders, err := cat.ListWorkOrders(ctx)
	if err != nil {
		return res, err
	}
	orderNos := make(map[string]bool, len(orders))
	for _, wo := range orders {
		orderNos[wo.OrderNo] = true
	}
	for _, wo := range f.WorkOrders {
		if orderNos[wo.OrderNo] {
			continue
		}
		_, err := cat.CreateWorkOrder(ctx, domain.WorkOrder{
			ID:          wo.ID,
			OrderNo:     wo.OrderNo,
			PartName:    wo.PartName,
			Quantity:    wo.Quantity,
			Description: wo.Description,
		})
		if err != nil {
			return res, fmt.Errorf("seed work order %s: %w", wo.OrderNo, err)
		}
		orderNos[wo.OrderNo] = true
		res.WorkOrders++
	}

	workers, err := cat.ListWorkers(ctx)
	if err != nil {
		return res, err
	}
	usernames := make(map[string]bool, len(workers))
	for _, w := range workers {
		usernames[w.Username] = true
	}
	for _, w := range f.Workers {
		if usernames[w.Username] {
			continue
		}
		_, err := cat.CreateWorker(ctx, domain.Worker{ID: w.ID, Username: w.Username, FullName: w.FullName, Role: domain.Role(w.Role)})
		if err != nil {
			return res, fmt.Errorf("seed worker %s: %w", w.Username, err)
		}
		usernames[w.Username] = true
		res.Workers++
	}

	logger.Printf("[seed] created machines=%d work_orders=%d workers=%d", res.Machines, res.WorkOrders, res.Workers)
	return res, nil
}
