package db

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound reports whether err means the queried row does not exist.
// Repositories translate this into a nil result so services decide how
// missing rows surface.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
