package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/auth"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/email"
	"github.com/wellpass/wellpass-backend/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

const passwordResetTTL = time.Hour

type AuthServiceImpl struct {
	db        database.Transactor
	users     user.UserRepository
	companies company.CompanyRepository
	tokens    auth.TokenRepository
	jwt.Service
	email       email.EmailService
	frontendURL string
	now         func() time.Time
}

func NewAuthService(
	db database.Transactor,
	userRepository user.UserRepository,
	companyRepository company.CompanyRepository,
	tokenRepository auth.TokenRepository,
	jwtService jwt.Service,
	emailService email.EmailService,
	frontendURL string,
) auth.AuthService {
	return &AuthServiceImpl{
		db:          db,
		users:       userRepository,
		companies:   companyRepository,
		tokens:      tokenRepository,
		Service:     jwtService,
		email:       emailService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens creates an access and refresh token pair and stores the refresh token hash.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, track auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		resp auth.TokenResponse
		err  error
	)
	resp.AccessToken, resp.AccessTokenExpiresAt, err = a.GenerateAccessToken(u.ID, u.Email, u.CompanyID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresAt, err = a.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	err = a.tokens.CreateRefreshToken(ctx, auth.RefreshToken{
		UserID:    u.ID,
		TokenHash: auth.HashToken(resp.RefreshToken),
		ExpiresAt: time.Unix(resp.RefreshTokenExpiresAt, 0),
		UserAgent: track.UserAgent,
		IPAddress: track.IPAddress,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token: %w", err)
	}

	resp.User = user.NewUserResponse(u)
	return resp, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest, track auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hash, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var resp auth.TokenResponse
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := a.users.GetByEmail(ctx, req.Email)
		switch {
		case err == nil:
			if existing.Status != user.StatusInvited {
				return user.ErrUserEmailExists
			}
			if existing.CompanyID != nil {
				if err := a.requireActiveCompany(ctx, *existing.CompanyID); err != nil {
					return err
				}
			}
			activated, err := a.users.ActivateInvited(ctx, existing.ID, req.Name, &hash)
			if err != nil {
				return fmt.Errorf("failed to activate invited user: %w", err)
			}
			resp, err = a.issueTokens(ctx, activated, track)
			return err
		case !errors.Is(err, user.ErrUserNotFound):
			return fmt.Errorf("failed to get user by email: %w", err)
		}

		if req.CompanyCode == "" {
			return auth.ErrCompanyCodeRequired
		}
		c, err := a.companies.GetByCode(ctx, req.CompanyCode)
		if err != nil {
			return err
		}
		if c.Status != company.StatusActive {
			return auth.ErrCompanyInactive
		}

		created, err := a.users.Create(ctx, user.User{
			Email:        req.Email,
			Name:         strings.TrimSpace(req.Name),
			Role:         user.RoleEmployee,
			CompanyID:    &c.ID,
			Status:       user.StatusActive,
			PasswordHash: &hash,
		})
		if err != nil {
			return err
		}
		resp, err = a.issueTokens(ctx, created, track)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user registered", "user_id", resp.User.ID, "company_id", resp.User.CompanyID)
	return resp, nil
}

func (a *AuthServiceImpl) requireActiveCompany(ctx context.Context, companyID string) error {
	c, err := a.companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if c.Status != company.StatusActive {
		return auth.ErrCompanyInactive
	}
	return nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, track auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if u.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !u.IsActive() {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	var resp auth.TokenResponse
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		resp, err = a.issueTokens(ctx, u, track)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleEmail, googleID, name string, track auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	err := a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := a.users.GetByEmail(ctx, googleEmail)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.ErrOAuthAccountNotFound
			}
			return fmt.Errorf("failed to get user by email: %w", err)
		}
		if u.OAuthProviderID != nil && *u.OAuthProviderID != googleID {
			return auth.ErrOAuthAccountMismatch
		}

		switch u.Status {
		case user.StatusInactive:
			return auth.ErrAccountInactive
		case user.StatusInvited:
			if name == "" {
				name = u.Name
			}
			u, err = a.users.ActivateInvited(ctx, u.ID, name, u.PasswordHash)
			if err != nil {
				return fmt.Errorf("failed to activate invited user: %w", err)
			}
		}

		if u.OAuthProviderID == nil {
			u, err = a.users.LinkGoogleAccount(ctx, u.ID, googleID)
			if err != nil {
				return fmt.Errorf("failed to link google account: %w", err)
			}
		}

		resp, err = a.issueTokens(ctx, u, track)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}

// Refresh implements auth.AuthService.
func (a *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string, track auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userID, err := a.ValidateRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	hash := auth.HashToken(refreshToken)

	var resp auth.TokenResponse
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		now := a.now()

		revoked, err := a.tokens.IsRefreshTokenRevoked(ctx, hash, now)
		if err != nil {
			return fmt.Errorf("failed to check refresh token: %w", err)
		}
		if revoked {
			return auth.ErrRefreshTokenRevoked
		}

		u, err := a.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !u.IsActive() {
			return auth.ErrAccountInactive
		}

		if err := a.tokens.RevokeRefreshToken(ctx, hash, now); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		resp, err = a.issueTokens(ctx, u, track)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := a.tokens.RevokeRefreshToken(ctx, auth.HashToken(refreshToken), a.now()); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// ForgotPassword implements auth.AuthService.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			slog.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if u.Status == user.StatusInactive {
		return nil
	}

	raw, err := randomToken()
	if err != nil {
		return err
	}
	expiresAt := a.now().Add(passwordResetTTL)
	err = a.tokens.CreatePasswordReset(ctx, auth.PasswordReset{
		UserID:    u.ID,
		TokenHash: auth.HashToken(raw),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save password reset: %w", err)
	}

	link := a.frontendURL + "/auth/reset-password?token=" + url.QueryEscape(raw)
	if err := a.email.SendPasswordReset(ctx, u.Email, u.Name, link, expiresAt.UTC().Format(time.RFC1123)); err != nil {
		slog.Error("failed to send password reset email", "user_id", u.ID, "error", err)
	}
	return nil
}

// ResetPassword implements auth.AuthService.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	hash, err := a.hashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		now := a.now()

		userID, err := a.tokens.ConsumePasswordReset(ctx, auth.HashToken(req.Token), now)
		if err != nil {
			return err
		}
		if err := a.users.UpdatePassword(ctx, userID, hash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.tokens.RevokeAllForUser(ctx, userID, now); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		slog.Info("password reset", "user_id", userID)
		return nil
	})
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
