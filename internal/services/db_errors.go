package services

import (
	"smartspend/internal/database"
	apperrors "smartspend/internal/errors"
)

// dbError classifies a failed GORM call. Unreachable databases surface as
// DATABASE_UNAVAILABLE, everything else as INTERNAL_ERROR.
func dbError(err error) error {
	if database.IsUnavailable(err) {
		return apperrors.Wrap(apperrors.ErrDatabaseUnavailable, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
