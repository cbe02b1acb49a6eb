package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrNotInCompany is returned when a company admin targets another company's user.
	ErrNotInCompany = errors.New("employee belongs to another company")
	ErrEmailExists  = errors.New("email already registered")
	ErrNoCompany    = errors.New("session is not bound to a company")
)
