package partner

import "errors"

var (
	ErrPartnerNotFound         = errors.New("partner not found")
	ErrPartnerNotApproved      = errors.New("partner is not approved")
	ErrInvalidStatusTransition = errors.New("invalid partner status transition")
	ErrPartnerVersionConflict  = errors.New("partner was modified by someone else")
	ErrInvalidTerminalKey      = errors.New("invalid partner terminal credentials")
)
