package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

type userRepository struct {
	s *Store
}

func NewUserRepository(s *Store) user.UserRepository {
	return &userRepository{s: s}
}

func copyUser(u user.User) user.User {
	u.CompanyID = cloneString(u.CompanyID)
	u.PlanID = cloneString(u.PlanID)
	u.PasswordHash = cloneString(u.PasswordHash)
	u.OAuthProvider = cloneString(u.OAuthProvider)
	u.OAuthProviderID = cloneString(u.OAuthProviderID)
	return u
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	newUser.Email = strings.ToLower(strings.TrimSpace(newUser.Email))
	for _, u := range r.s.users {
		if u.Email == newUser.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	if newUser.ID == "" {
		newUser.ID = ids.NewUUID()
	}
	now := r.s.now()
	newUser.CreatedAt, newUser.UpdatedAt = now, now

	r.s.users[newUser.ID] = copyUser(newUser)
	return copyUser(newUser), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) ListByCompany(ctx context.Context, companyID string) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []user.User
	for _, u := range r.s.users {
		if u.BelongsTo(companyID) {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *userRepository) CountActive(ctx context.Context) (int64, error) {
	return r.count(func(u user.User) bool { return u.Status == user.StatusActive }), nil
}

func (r *userRepository) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	return r.count(func(u user.User) bool { return u.BelongsTo(companyID) }), nil
}

func (r *userRepository) CountByPlan(ctx context.Context, planID string) (int64, error) {
	return r.count(func(u user.User) bool { return u.PlanID != nil && *u.PlanID == planID }), nil
}

func (r *userRepository) count(match func(user.User) bool) int64 {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if match(u) {
			n++
		}
	}
	return n
}

// update applies fn to the stored user and returns the result.
func (r *userRepository) update(id string, fn func(u *user.User) error) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	if err := fn(&u); err != nil {
		return user.User{}, err
	}
	u.UpdatedAt = r.s.now()
	r.s.users[id] = copyUser(u)
	return copyUser(u), nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, name string) (user.User, error) {
	return r.update(id, func(u *user.User) error {
		u.Name = name
		return nil
	})
}

func (r *userRepository) UpdatePlan(ctx context.Context, id string, planID *string, status user.Status) (user.User, error) {
	return r.update(id, func(u *user.User) error {
		u.PlanID = cloneString(planID)
		u.Status = status
		return nil
	})
}

func (r *userRepository) UpdateStatus(ctx context.Context, id string, status user.Status) (user.User, error) {
	return r.update(id, func(u *user.User) error {
		u.Status = status
		return nil
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	_, err := r.update(id, func(u *user.User) error {
		u.PasswordHash = &passwordHash
		return nil
	})
	return err
}

func (r *userRepository) ActivateInvited(ctx context.Context, id string, name string, passwordHash *string) (user.User, error) {
	return r.update(id, func(u *user.User) error {
		if u.Status != user.StatusInvited {
			return user.ErrUserNotFound
		}
		u.Name = name
		u.PasswordHash = cloneString(passwordHash)
		u.Status = user.StatusActive
		return nil
	})
}

func (r *userRepository) LinkGoogleAccount(ctx context.Context, id string, googleID string) (user.User, error) {
	provider := "google"
	return r.update(id, func(u *user.User) error {
		u.OAuthProvider = &provider
		u.OAuthProviderID = &googleID
		return nil
	})
}
