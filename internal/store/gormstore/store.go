// Package gormstore persists tasks, their event log and the floor catalog
// through gorm. Mutations run in a transaction and commit the task row with a
// version compare-and-set, so a lost race surfaces as an error instead of a
// silent overwrite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfloor-tracker/internal/claims"
	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/lifecycle"
	"shopfloor-tracker/internal/store"
)

var errConcurrentUpdate = errors.New("concurrent update")

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New migrates the schema on db and returns a store backed by it.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("gormstore: nil db")
	}
	if err := db.AutoMigrate(&machineRow{}, &workOrderRow{}, &workerRow{}, &taskRow{}, &eventRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenSQLite opens dsn with the pure-Go sqlite driver. SQLite allows a single
// writer, so the pool is pinned to one connection.
func OpenSQLite(dsn string, l *log.Logger) (*Store, error) {
	if l == nil {
		l = log.Default()
	}
	gl := logger.New(l, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gl,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return New(db)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.Status = domain.StatusAssigned
	task.CurrentWorkerID = ""
	task.QuantityCompleted = 0
	task.CancelledAt = nil

	row := taskRowFrom(task)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Task{}, fmt.Errorf("task %s already exists", task.ID)
		}
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row, err := loadTask(s.db.WithContext(ctx), id)
	if err != nil {
		return domain.Task{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListTasks(ctx context.Context, f store.TaskFilter) ([]domain.Task, error) {
	q := s.db.WithContext(ctx).Model(&taskRow{})
	if f.MachineID != "" {
		q = q.Where("machine_id = ?", f.MachineID)
	}
	if f.WorkerID != "" {
		q = q.Where("current_worker_id = ?", f.WorkerID)
	}
	if f.WorkOrderID != "" {
		q = q.Where("work_order_id = ?", f.WorkOrderID)
	}
	if f.ParentID != "" {
		q = q.Where("parent_task_id = ?", f.ParentID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		q = q.Where("status IN ?", statuses)
	}

	var rows []taskRow
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]domain.Task, len(rows))
	for i, r := range rows {
		tasks[i] = r.toDomain()
	}
	return tasks, nil
}

func (s *Store) Claim(ctx context.Context, taskID, workerID string) (domain.Task, error) {
	var out domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, history, err := loadTaskWithHistory(tx, taskID)
		if err != nil {
			return err
		}
		task := row.toDomain()
		if task.Status, err = lifecycle.Status(task, history); err != nil {
			return fmt.Errorf("replay task %s: %w", taskID, err)
		}
		held, err := heldTasks(tx, workerID)
		if err != nil {
			return err
		}
		claimed, err := claims.Claim(task, workerID, held)
		if err != nil {
			return err
		}
		if err := commitTask(tx, row.Version, claimed); err != nil {
			return err
		}
		out = claimed
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

func (s *Store) AppendEvent(ctx context.Context, ev domain.WorkEvent) (domain.Task, error) {
	var out domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, history, err := loadTaskWithHistory(tx, ev.TaskID)
		if err != nil {
			return err
		}
		held, err := heldTasks(tx, ev.WorkerID)
		if err != nil {
			return err
		}
		next, err := lifecycle.Append(row.toDomain(), history, ev, held)
		if err != nil {
			return err
		}

		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		ev.MachineID = row.MachineID
		er := eventRowFrom(ev)
		if err := tx.Create(&er).Error; err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if err := commitTask(tx, row.Version, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

func (s *Store) Withdraw(ctx context.Context, taskID string, at time.Time) (domain.Task, error) {
	var out domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, history, err := loadTaskWithHistory(tx, taskID)
		if err != nil {
			return err
		}
		at = at.UTC()
		cancelled, err := lifecycle.Withdraw(row.toDomain(), history, at)
		if err != nil {
			return err
		}
		if err := commitTask(tx, row.Version, cancelled); err != nil {
			return err
		}
		out = cancelled
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

func (s *Store) ListEvents(ctx context.Context, taskID string) ([]domain.WorkEvent, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadTask(db, taskID); err != nil {
		return nil, err
	}
	return loadHistory(db, taskID)
}

func (s *Store) ListEventsBetween(ctx context.Context, start, end time.Time) ([]domain.WorkEvent, error) {
	var rows []eventRow
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start.UTC(), end.UTC()).
		Order("timestamp ASC").Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return eventsFromRows(rows), nil
}

func loadTask(db *gorm.DB, id string) (taskRow, error) {
	var row taskRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return taskRow{}, fmt.Errorf("task %s: %w", id, store.ErrNotFound)
		}
		return taskRow{}, fmt.Errorf("load task %s: %w", id, err)
	}
	return row, nil
}

func loadHistory(db *gorm.DB, taskID string) ([]domain.WorkEvent, error) {
	var rows []eventRow
	if err := db.Where("task_id = ?", taskID).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load events for %s: %w", taskID, err)
	}
	return eventsFromRows(rows), nil
}

func loadTaskWithHistory(tx *gorm.DB, taskID string) (taskRow, []domain.WorkEvent, error) {
	row, err := loadTask(tx, taskID)
	if err != nil {
		return taskRow{}, nil, err
	}
	history, err := loadHistory(tx, taskID)
	if err != nil {
		return taskRow{}, nil, err
	}
	return row, history, nil
}

func heldTasks(tx *gorm.DB, workerID string) ([]domain.Task, error) {
	if workerID == "" {
		return nil, nil
	}
	var rows []taskRow
	if err := tx.Where("current_worker_id = ?", workerID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("held tasks for %s: %w", workerID, err)
	}
	held := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		if t := r.toDomain(); !t.Status.IsTerminal() {
			held = append(held, t)
		}
	}
	return held, nil
}

// commitTask writes t over the row read at version. Zero rows affected means
// another writer committed first.
func commitTask(tx *gorm.DB, version int64, t domain.Task) error {
	res := tx.Model(&taskRow{}).
		Where("id = ? AND version = ?", t.ID, version).
		Updates(map[string]any{
			"status":             string(t.Status),
			"current_worker_id":  holderColumn(t.CurrentWorkerID),
			"quantity_completed": t.QuantityCompleted,
			"cancelled_at":       t.CancelledAt,
			"version":            gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: worker %s", domain.ErrWorkerBusy, t.CurrentWorkerID)
		}
		return fmt.Errorf("update task %s: %w", t.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &domain.TransitionError{Kind: domain.ErrInvalidTransition, From: t.Status, Msg: errConcurrentUpdate.Error()}
	}
	return nil
}

func eventsFromRows(rows []eventRow) []domain.WorkEvent {
	out := make([]domain.WorkEvent, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}
