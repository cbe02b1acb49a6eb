package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wellpass/wellpass-backend/internal/domain/auth"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/employee"
	"github.com/wellpass/wellpass-backend/internal/domain/invoice"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Session
	case errors.Is(err, session.ErrUnauthenticated):
		Unauthenticated(w, "Authentication required", session.LoginPath)
	case errors.Is(err, session.ErrForbidden):
		Forbidden(w, "Insufficient permissions")

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccountInactive), errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "Account is inactive")
	case errors.Is(err, auth.ErrOAuthAccountNotFound):
		NotFound(w, "No account is registered for this Google email")
	case errors.Is(err, auth.ErrOAuthAccountMismatch):
		Conflict(w, "Google account does not match the registered one")
	case errors.Is(err, auth.ErrCompanyCodeRequired):
		ValidationError(w, map[string]string{"company_code": "company_code is required"})
	case errors.Is(err, auth.ErrCompanyInactive):
		Forbidden(w, "Company is inactive")

	// User and employee domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists), errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNotInCompany):
		Forbidden(w, "Employee belongs to another company")
	case errors.Is(err, employee.ErrNoCompany):
		Forbidden(w, "Session is not bound to a company")

	// Company domain errors
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrCompanyCodeExists):
		Conflict(w, "Company code already exists")
	case errors.Is(err, company.ErrCompanyVersionConflict):
		Conflict(w, "Company was modified by someone else")
	case errors.Is(err, company.ErrCompanyInUse):
		Conflict(w, "Company still has users")

	// Plan domain errors
	case errors.Is(err, plan.ErrPlanNotFound):
		NotFound(w, "Plan not found")
	case errors.Is(err, plan.ErrPlanVersionConflict):
		Conflict(w, "Plan was modified by someone else")
	case errors.Is(err, plan.ErrPlanInUse):
		Conflict(w, "Plan is assigned to users")

	// Partner domain errors
	case errors.Is(err, partner.ErrPartnerNotFound):
		NotFound(w, "Partner not found")
	case errors.Is(err, partner.ErrPartnerNotApproved):
		Forbidden(w, "Partner is not approved")
	case errors.Is(err, partner.ErrInvalidStatusTransition):
		Conflict(w, "Invalid partner status transition")
	case errors.Is(err, partner.ErrPartnerVersionConflict):
		Conflict(w, "Partner was modified by someone else")
	case errors.Is(err, partner.ErrInvalidTerminalKey):
		Unauthorized(w, "Invalid partner terminal credentials")

	// Check-in domain errors
	case errors.Is(err, checkin.ErrTokenNotFound):
		NotFound(w, "Check-in token not found")
	case errors.Is(err, checkin.ErrTokenInvalid):
		BadRequest(w, "Check-in token is invalid", nil)
	case errors.Is(err, checkin.ErrTokenExpired):
		Gone(w, "TOKEN_EXPIRED", "Check-in token has expired")
	case errors.Is(err, checkin.ErrTokenSuperseded):
		Gone(w, "TOKEN_SUPERSEDED", "Check-in token was replaced by a newer one")
	case errors.Is(err, checkin.ErrTokenConsumed):
		Conflict(w, "Check-in token was already used")
	case errors.Is(err, checkin.ErrTokenUserMismatch):
		Forbidden(w, "Check-in token belongs to another user")
	case errors.Is(err, checkin.ErrNoActivePlan):
		Forbidden(w, "No active plan")
	case errors.Is(err, checkin.ErrUserInactive):
		Forbidden(w, "User is not active")
	case errors.Is(err, checkin.ErrNotAnEmployee):
		Forbidden(w, "Only employees can check in")
	case errors.Is(err, checkin.ErrCategoryNotIncluded):
		Forbidden(w, "Plan does not include this partner category")
	case errors.Is(err, checkin.ErrQuotaExceeded):
		TooManyRequests(w, "QUOTA_EXCEEDED", "Monthly check-in quota exhausted")
	case errors.Is(err, checkin.ErrCooldownActive):
		TooManyRequests(w, "COOLDOWN_ACTIVE", "Already checked in at this partner recently")

	// Invoice domain errors
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		NotFound(w, "Invoice not found")
	case errors.Is(err, invoice.ErrInvoiceExists):
		Conflict(w, "Invoice already generated for this period")
	case errors.Is(err, invoice.ErrInvalidStatusTransition):
		Conflict(w, "Invalid invoice status transition")
	case errors.Is(err, invoice.ErrPDFNotAvailable):
		NotFound(w, "Invoice PDF is not available")

	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
