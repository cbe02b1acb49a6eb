package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

const userColumns = `id, email, name, role, company_id, plan_id, status, password_hash,
	oauth_provider, oauth_provider_id, created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.CompanyID,
		&u.PlanID,
		&u.Status,
		&u.PasswordHash,
		&u.OAuthProvider,
		&u.OAuthProviderID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		newUser.ID = ids.NewUUID()
	}

	query := `
		INSERT INTO users (
			id, email, name, role, company_id, plan_id, status, password_hash,
			oauth_provider, oauth_provider_id, created_at, updated_at
		)
		VALUES ($1, LOWER(TRIM($2)), $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.ID,
		newUser.Email,
		newUser.Name,
		newUser.Role,
		newUser.CompanyID,
		newUser.PlanID,
		newUser.Status,
		newUser.PasswordHash,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return user.User{}, notFound(err, user.ErrUserNotFound)
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	))
	if err != nil {
		return user.User{}, notFound(err, user.ErrUserNotFound)
	}
	return u, nil
}

// ListByCompany implements user.UserRepository.
func (r *userRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE company_id = $1 ORDER BY name, id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepositoryImpl) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountActive implements user.UserRepository.
func (r *userRepositoryImpl) CountActive(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, user.StatusActive)
}

// CountByCompany implements user.UserRepository.
func (r *userRepositoryImpl) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE company_id = $1`, companyID)
}

// CountByPlan implements user.UserRepository.
func (r *userRepositoryImpl) CountByPlan(ctx context.Context, planID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE plan_id = $1`, planID)
}

// update runs an UPDATE ... WHERE id = $1 RETURNING the full row.
func (r *userRepositoryImpl) update(ctx context.Context, set string, args ...interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE users SET ` + set + `, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	u, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		return user.User{}, notFound(err, user.ErrUserNotFound)
	}
	return u, nil
}

// UpdateProfile implements user.UserRepository.
func (r *userRepositoryImpl) UpdateProfile(ctx context.Context, id string, name string) (user.User, error) {
	return r.update(ctx, `name = $2`, id, name)
}

// UpdatePlan implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePlan(ctx context.Context, id string, planID *string, status user.Status) (user.User, error) {
	return r.update(ctx, `plan_id = $2, status = $3`, id, planID, status)
}

// UpdateStatus implements user.UserRepository.
func (r *userRepositoryImpl) UpdateStatus(ctx context.Context, id string, status user.Status) (user.User, error) {
	return r.update(ctx, `status = $2`, id, status)
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	_, err := r.update(ctx, `password_hash = $2`, id, passwordHash)
	return err
}

// ActivateInvited implements user.UserRepository.
func (r *userRepositoryImpl) ActivateInvited(ctx context.Context, id string, name string, passwordHash *string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = $2, password_hash = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING ` + userColumns

	u, err := scanUser(q.QueryRow(ctx, query, id, name, passwordHash, user.StatusActive, user.StatusInvited))
	if err != nil {
		return user.User{}, notFound(err, user.ErrUserNotFound)
	}
	return u, nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, id string, googleID string) (user.User, error) {
	return r.update(ctx, `oauth_provider = 'google', oauth_provider_id = $2`, id, googleID)
}
