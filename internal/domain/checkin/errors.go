package checkin

import "errors"

var (
	ErrTokenNotFound       = errors.New("check-in token not found")
	ErrTokenInvalid        = errors.New("check-in token is invalid")
	ErrTokenExpired        = errors.New("check-in token has expired")
	ErrTokenConsumed       = errors.New("check-in token was already used")
	ErrTokenSuperseded     = errors.New("check-in token was replaced by a newer one")
	ErrTokenUserMismatch   = errors.New("check-in token belongs to another user")
	ErrNoActivePlan        = errors.New("user has no active plan")
	ErrUserInactive        = errors.New("user is not active")
	ErrQuotaExceeded       = errors.New("monthly check-in quota exhausted")
	ErrCooldownActive      = errors.New("already checked in at this partner recently")
	ErrCategoryNotIncluded = errors.New("plan does not include this partner category")
	ErrNotAnEmployee       = errors.New("only employees can check in")
)
