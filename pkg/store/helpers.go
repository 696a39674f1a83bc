package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generic GORM helpers shared by the per-entity store files. They operate on
// the raw *gorm.DB and handle context propagation, not-found conversion and
// unique constraint detection in one place.

// getByField retrieves a single record of type T by matching field=value,
// converting gorm.ErrRecordNotFound to the provided domain error.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error, preloads ...string) (*T, error) {
	var result T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listByField retrieves all records of type T matching field=value.
// Returns an empty slice (not nil) on success with no records.
func listByField[T any](db *gorm.DB, ctx context.Context, field string, value any, order string) ([]*T, error) {
	results := []*T{}
	q := db.WithContext(ctx).Where(field+" = ?", value)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// createWithID generates a UUID for the entity if it has no ID, then creates
// it. Unique constraint violations are converted to dupErr.
func createWithID[T any](db *gorm.DB, ctx context.Context, entity *T, currentID string, idSetter func(*T, string), dupErr error) (string, error) {
	id := currentID
	if id == "" {
		id = uuid.New().String()
		idSetter(entity, id)
	}
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", dupErr
		}
		return "", err
	}
	return id, nil
}

// deleteByField deletes records of type T matching field=value.
// Returns notFoundErr if no rows were affected.
func deleteByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) error {
	var zero T
	result := db.WithContext(ctx).Where(field+" = ?", value).Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
