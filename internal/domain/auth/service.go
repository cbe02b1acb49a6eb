package auth

import (
	"context"
)

type AuthService interface {
	// Register creates an employee of the company identified by CompanyCode, or activates
	// a previously invited user with the same email.
	Register(ctx context.Context, req RegisterRequest, track SessionTrackingRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, track SessionTrackingRequest) (TokenResponse, error)
	// LoginWithGoogle signs in an existing user. Accounts are never created here.
	LoginWithGoogle(ctx context.Context, email, googleID, name string, track SessionTrackingRequest) (TokenResponse, error)
	// Refresh rotates the refresh token and issues a new access token.
	Refresh(ctx context.Context, refreshToken string, track SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	// ForgotPassword succeeds whether or not the email is registered.
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}
