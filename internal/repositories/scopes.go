package repositories

import (
	"errors"
	"fmt"

	"autoshop/internal/models"

	"gorm.io/gorm"
)

// DefaultPageSize is used when a caller passes no page size.
const DefaultPageSize = 12

func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// translate maps driver-level errors onto domain errors. notFound is
// returned in place of gorm.ErrRecordNotFound.
func translate(err error, notFound error, format string, args ...interface{}) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return fmt.Errorf("%s: %w", what, notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, models.ErrDuplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", what, models.ErrInUse)
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}
