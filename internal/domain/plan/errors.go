package plan

import "errors"

var (
	ErrPlanNotFound        = errors.New("plan not found")
	ErrPlanVersionConflict = errors.New("plan was modified by someone else")
	ErrPlanInUse           = errors.New("plan is assigned to users")
)
