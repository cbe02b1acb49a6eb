package company

import "errors"

var (
	ErrCompanyNotFound        = errors.New("company not found")
	ErrCompanyCodeExists      = errors.New("company code already exists")
	ErrCompanyVersionConflict = errors.New("company was modified by someone else")
	ErrCompanyInUse           = errors.New("company still has users")
)
