package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"medexpenses/internal/apperr"
)

// Store groups the repositories over one database handle. Inside
// Transaction every repository shares the same transaction.
type Store interface {
	Patients() PatientRepository
	Users() UserRepository
	Lookups() LookupRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Patients() PatientRepository { return NewPatientRepository(s.db) }

func (s *gormStore) Users() UserRepository { return NewUserRepository(s.db) }

func (s *gormStore) Lookups() LookupRepository { return NewLookupRepository(s.db) }

// Transaction commits when fn returns nil and rolls back otherwise,
// including on panic.
func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps store errors onto the application taxonomy.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, apperr.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", what, apperr.ErrInvalidReference)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
