package service

import (
	"errors"

	"shopfloor-tracker/internal/store"
)

var (
	ErrNotFound     = store.ErrNotFound
	ErrInvalidInput = errors.New("invalid input")
	ErrStoreNil     = errors.New("store is nil")
	ErrPoolNil      = errors.New("follow-up pool is nil")
	ErrInvalidID    = errors.New("invalid id")
	ErrForbidden    = errors.New("operation not permitted for role")
)
