// Package repository maps create/read/list/update/delete onto gorm for any
// model keyed by a string "id" column.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Preload names an association (dotted for nested ones) with an optional
// order clause and column list for it. Columns must include the key the
// association joins on.
type Preload struct {
	Association string
	Order       string
	Columns     []string
}

// Query is an equality-filtered, ordered listing.
type Query struct {
	Filters  map[string]interface{}
	Order    string
	Limit    int
	Preloads []Preload
	// Scopes are applied after Filters for conditions equality can't express.
	Scopes []func(*gorm.DB) *gorm.DB
}

type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, id string, preloads ...Preload) (*T, error)
	List(ctx context.Context, q Query) ([]T, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filters map[string]interface{}) (int64, error)
}

type GormRepository[T any] struct {
	DB *gorm.DB
}

func New[T any](db *gorm.DB) *GormRepository[T] {
	return &GormRepository[T]{DB: db}
}

// WithTx returns a repository bound to tx.
func (r *GormRepository[T]) WithTx(tx *gorm.DB) *GormRepository[T] {
	return &GormRepository[T]{DB: tx}
}

func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.DB.WithContext(ctx).Create(entity).Error
}

func (r *GormRepository[T]) Get(ctx context.Context, id string, preloads ...Preload) (*T, error) {
	var out T
	err := ApplyPreloads(r.DB.WithContext(ctx), preloads).First(&out, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *GormRepository[T]) List(ctx context.Context, q Query) ([]T, error) {
	out := make([]T, 0)
	db := ApplyPreloads(r.DB.WithContext(ctx).Model(new(T)), q.Preloads)
	db = applyFilters(db, q.Filters)
	for _, scope := range q.Scopes {
		db = scope(db)
	}
	if q.Order != "" {
		db = db.Order(q.Order)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if err := db.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies fields to the row with the given id. An empty field set
// only checks existence.
func (r *GormRepository[T]) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	db := r.DB.WithContext(ctx)
	if len(fields) == 0 {
		var n int64
		if err := db.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	}
	res := db.Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository[T]) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository[T]) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	var n int64
	err := applyFilters(r.DB.WithContext(ctx).Model(new(T)), filters).Count(&n).Error
	return n, err
}

// ApplyPreloads adds each preload to db, ordering the association when asked.
func ApplyPreloads(db *gorm.DB, preloads []Preload) *gorm.DB {
	for _, p := range preloads {
		if p.Order == "" && len(p.Columns) == 0 {
			db = db.Preload(p.Association)
			continue
		}
		order, columns := p.Order, p.Columns
		db = db.Preload(p.Association, func(tx *gorm.DB) *gorm.DB {
			if len(columns) > 0 {
				tx = tx.Select(columns)
			}
			if order != "" {
				tx = tx.Order(order)
			}
			return tx
		})
	}
	return db
}

func applyFilters(db *gorm.DB, filters map[string]interface{}) *gorm.DB {
	for column, value := range filters {
		db = db.Where(column+" = ?", value)
	}
	return db
}
