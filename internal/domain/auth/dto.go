package auth

import (
	"strings"

	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyCode string `json:"company_code,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.CompanyCode = strings.ToUpper(strings.TrimSpace(r.CompanyCode))

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 120 {
		errs.Add("name", "name must not exceed 120 characters")
	}

	validateEmail(&errs, r.Email)
	validatePassword(&errs, "password", r.Password)

	if r.CompanyCode != "" && !validator.IsValidCompanyCode(r.CompanyCode) {
		errs.Add("company_code", "company_code must be 3-20 characters of A-Z, 0-9 or -")
	}

	return errs.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	validateEmail(&errs, r.Email)
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

// RefreshTokenRequest accepts the token in the body when the cookie is unavailable.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.RefreshToken) {
		errs.Add("refresh_token", "refresh_token is required")
	}
	return errs.Err()
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	validateEmail(&errs, r.Email)
	return errs.Err()
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	validatePassword(&errs, "password", r.Password)
	return errs.Err()
}

// SessionTrackingRequest describes the client a refresh token was issued to.
type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string            `json:"access_token"`
	AccessTokenExpiresAt  int64             `json:"access_token_expires_at"`
	RefreshToken          string            `json:"-"`
	RefreshTokenExpiresAt int64             `json:"-"`
	User                  user.UserResponse `json:"user"`
}

func validateEmail(errs *validator.ValidationErrors, email string) {
	switch {
	case validator.IsEmpty(email):
		errs.Add("email", "email is required")
	case len(email) > 254:
		errs.Add("email", "email must not exceed 254 characters")
	case !validator.IsValidEmail(email):
		errs.Add("email", "email must be a valid email address")
	}
}

func validatePassword(errs *validator.ValidationErrors, field, password string) {
	switch {
	case validator.IsEmpty(password):
		errs.Add(field, field+" is required")
	case len(password) < 8:
		errs.Add(field, field+" must be at least 8 characters")
	case len(password) > 72:
		errs.Add(field, field+" must not exceed 72 characters")
	}
}
