// Package store is the record-oriented persistence layer shared by the services.
// It wraps gorm with the handful of operations the domain needs and translates
// driver errors into package sentinels.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// Filter is an exact-match condition set keyed by column name.
type Filter map[string]interface{}

// Pipeline shapes an aggregation query (select, where, group, order) on a model-scoped query.
type Pipeline func(q *gorm.DB) *gorm.DB

// Store provides typed access to the table behind model T.
type Store[T any] struct {
	db *gorm.DB
}

// New creates a Store bound to db.
func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// WithTx returns a Store that runs its operations inside tx.
func (s *Store[T]) WithTx(tx *gorm.DB) *Store[T] {
	return &Store[T]{db: tx}
}

func (s *Store[T]) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T))
}

// Create inserts record.
func (s *Store[T]) Create(ctx context.Context, record *T) error {
	return translate(s.db.WithContext(ctx).Create(record).Error)
}

// FindByID loads the record with the given primary key.
func (s *Store[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var record T
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

// FindOne loads the first record matching filter.
func (s *Store[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	var record T
	if err := s.db.WithContext(ctx).Where(map[string]interface{}(filter)).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

// Find returns all records matching filter, ordered by order (e.g. "expense_date DESC").
func (s *Store[T]) Find(ctx context.Context, filter Filter, order string) ([]T, error) {
	q := s.query(ctx)
	if len(filter) > 0 {
		q = q.Where(map[string]interface{}(filter))
	}
	if order != "" {
		q = q.Order(order)
	}
	records := []T{}
	if err := q.Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return records, nil
}

// Count returns the number of records matching filter.
func (s *Store[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	var n int64
	q := s.query(ctx)
	if len(filter) > 0 {
		q = q.Where(map[string]interface{}(filter))
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Update overwrites only the given columns of record and reloads it.
func (s *Store[T]) Update(ctx context.Context, record *T, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Model(record).Updates(fields).Error; err != nil {
		return translate(err)
	}
	return translate(db.First(record).Error)
}

// DeleteByID removes the record with the given primary key. It returns
// ErrNotFound when nothing was deleted.
func (s *Store[T]) DeleteByID(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere bulk-deletes every record matching filter and returns the count.
// An empty filter is refused so a bug can never truncate a table.
func (s *Store[T]) DeleteWhere(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("delete where: empty filter")
	}
	res := s.db.WithContext(ctx).Where(map[string]interface{}(filter)).Delete(new(T))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

// Aggregate runs pipeline on a model-scoped query and scans the rows into dest.
func (s *Store[T]) Aggregate(ctx context.Context, dest interface{}, pipeline Pipeline) error {
	return translate(pipeline(s.query(ctx)).Scan(dest).Error)
}

// Dialect reports the underlying SQL dialect ("postgres", "sqlite", …).
func (s *Store[T]) Dialect() string {
	return s.db.Dialector.Name()
}

// Transaction runs fn inside a database transaction. fn receives the
// transaction handle; rebind stores to it with WithTx.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
