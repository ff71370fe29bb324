package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// translateUniqueViolation normalizes driver-specific unique-index failures
// to gorm.ErrDuplicatedKey so services can match them with errors.Is. The
// sqlite driver already translates most cases; the message check covers the
// ones raised from raw statements.
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return gorm.ErrDuplicatedKey
	}
	return err
}
