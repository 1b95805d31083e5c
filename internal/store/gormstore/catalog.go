package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/store"
)

func (s *Store) CreateMachine(ctx context.Context, m domain.Machine) (domain.Machine, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	row := machineRow{ID: m.ID, Code: m.Code, Name: m.Name, Stopped: m.Stopped, CreatedAt: m.CreatedAt.UTC()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Machine{}, fmt.Errorf("machine code %q already exists", m.Code)
		}
		return domain.Machine{}, fmt.Errorf("create machine: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetMachine(ctx context.Context, id string) (domain.Machine, error) {
	var row machineRow
	if err := first(s.db.WithContext(ctx), &row, "machine", id); err != nil {
		return domain.Machine{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListMachines(ctx context.Context) ([]domain.Machine, error) {
	var rows []machineRow
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	out := make([]domain.Machine, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) SetMachineStopped(ctx context.Context, id string, stopped bool) (domain.Machine, error) {
	var row machineRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &row, "machine", id); err != nil {
			return err
		}
		row.Stopped = stopped
		return tx.Model(&machineRow{}).Where("id = ?", id).Update("stopped", stopped).Error
	})
	if err != nil {
		return domain.Machine{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) CreateWorkOrder(ctx context.Context, wo domain.WorkOrder) (domain.WorkOrder, error) {
	if wo.ID == "" {
		wo.ID = uuid.NewString()
	}
	if wo.CreatedAt.IsZero() {
		wo.CreatedAt = time.Now().UTC()
	}
	if wo.Status == "" {
		wo.Status = domain.WorkOrderPending
	}
	row := workOrderRow{
		ID:          wo.ID,
		OrderNo:     wo.OrderNo,
		PartName:    wo.PartName,
		Quantity:    wo.Quantity,
		Description: wo.Description,
		Status:      string(wo.Status),
		CreatedBy:   wo.CreatedBy,
		CreatedAt:   wo.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.WorkOrder{}, fmt.Errorf("create work order: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetWorkOrder(ctx context.Context, id string) (domain.WorkOrder, error) {
	var row workOrderRow
	if err := first(s.db.WithContext(ctx), &row, "work order", id); err != nil {
		return domain.WorkOrder{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListWorkOrders(ctx context.Context) ([]domain.WorkOrder, error) {
	var rows []workOrderRow
	if err := s.db.WithContext(ctx).Order("order_no ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	out := make([]domain.WorkOrder, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) SetWorkOrderStatus(ctx context.Context, id string, status domain.WorkOrderStatus) (domain.WorkOrder, error) {
	var row workOrderRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &row, "work order", id); err != nil {
			return err
		}
		row.Status = string(status)
		return tx.Model(&workOrderRow{}).Where("id = ?", id).Update("status", row.Status).Error
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) CreateWorker(ctx context.Context, w domain.Worker) (domain.Worker, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	row := workerRow{ID: w.ID, Username: w.Username, FullName: w.FullName, Role: string(w.Role), CreatedAt: w.CreatedAt.UTC()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Worker{}, fmt.Errorf("username %q already exists", w.Username)
		}
		return domain.Worker{}, fmt.Errorf("create worker: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetWorker(ctx context.Context, id string) (domain.Worker, error) {
	var row workerRow
	if err := first(s.db.WithContext(ctx), &row, "worker", id); err != nil {
		return domain.Worker{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	var rows []workerRow
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	out := make([]domain.Worker, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func first(db *gorm.DB, dest any, kind, id string) error {
	if err := db.First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
		}
		return fmt.Errorf("load %s %s: %w", kind, id, err)
	}
	return nil
}
