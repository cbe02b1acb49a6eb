package memory

import (
	"context"
	"sort"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
)

type tokenRepository struct {
	s *Store
}

func NewTokenRepository(s *Store) checkin.TokenRepository {
	return &tokenRepository{s: s}
}

func copyToken(t checkin.Token) checkin.Token {
	t.ConsumedAt = cloneTime(t.ConsumedAt)
	t.SupersededAt = cloneTime(t.SupersededAt)
	return t
}

func (r *tokenRepository) Create(ctx context.Context, t checkin.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tokens[t.ID] = copyToken(t)
	return nil
}

func (r *tokenRepository) GetByID(ctx context.Context, id string) (checkin.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[id]
	if !ok {
		return checkin.Token{}, checkin.ErrTokenNotFound
	}
	return copyToken(t), nil
}

func (r *tokenRepository) GetLiveByUser(ctx context.Context, userID string, now time.Time) (checkin.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *checkin.Token
	for _, t := range r.s.tokens {
		if t.UserID != userID || t.State(now) != checkin.TokenLive {
			continue
		}
		if found == nil || t.CreatedAt.After(found.CreatedAt) {
			t := t
			found = &t
		}
	}
	if found == nil {
		return checkin.Token{}, checkin.ErrTokenNotFound
	}
	return copyToken(*found), nil
}

func (r *tokenRepository) SupersedeLive(ctx context.Context, userID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tokens {
		if t.UserID != userID || t.ConsumedAt != nil || t.SupersededAt != nil {
			continue
		}
		ts := at
		t.SupersededAt = &ts
		r.s.tokens[id] = t
		n++
	}
	return n, nil
}

func (r *tokenRepository) Consume(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[id]
	if !ok {
		return checkin.ErrTokenNotFound
	}
	if t.State(at) != checkin.TokenLive {
		return checkin.ErrTokenConsumed
	}
	ts := at
	t.ConsumedAt = &ts
	r.s.tokens[id] = t
	return nil
}

func (r *tokenRepository) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

type checkInRepository struct {
	s *Store
}

func NewCheckInRepository(s *Store) checkin.CheckInRepository {
	return &checkInRepository{s: s}
}

func copyCheckIn(c checkin.CheckIn) checkin.CheckIn {
	c.CompanyID = cloneString(c.CompanyID)
	return c
}

func (r *checkInRepository) Append(ctx context.Context, c checkin.CheckIn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.checkIns = append(r.s.checkIns, copyCheckIn(c))
	return nil
}

func (r *checkInRepository) ListByUser(ctx context.Context, userID string) ([]checkin.CheckIn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]checkin.CheckIn, 0)
	for _, c := range r.s.checkIns {
		if c.UserID == userID {
			out = append(out, copyCheckIn(c))
		}
	}
	return out, nil
}

func (r *checkInRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, c := range r.s.checkIns {
		if c.UserID == userID && !c.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *checkInRepository) LastAtPartner(ctx context.Context, userID, partnerID string) (time.Time, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var last time.Time
	found := false
	for _, c := range r.s.checkIns {
		if c.UserID == userID && c.PartnerID == partnerID && (!found || c.Timestamp.After(last)) {
			last, found = c.Timestamp, true
		}
	}
	return last, found, nil
}

func (r *checkInRepository) UsageByCompany(ctx context.Context, companyID string, since time.Time) ([]checkin.Usage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byUser := make(map[string]*checkin.Usage)
	for _, c := range r.s.checkIns {
		if c.CompanyID == nil || *c.CompanyID != companyID || c.Timestamp.Before(since) {
			continue
		}
		u, ok := byUser[c.UserID]
		if !ok {
			u = &checkin.Usage{UserID: c.UserID}
			byUser[c.UserID] = u
		}
		u.CheckIns++
		if u.LastCheckIn == nil || c.Timestamp.After(*u.LastCheckIn) {
			ts := c.Timestamp
			u.LastCheckIn = &ts
		}
	}

	out := make([]checkin.Usage, 0, len(byUser))
	for _, u := range byUser {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *checkInRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.checkIns {
		if !c.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *checkInRepository) DailyCounts(ctx context.Context, since time.Time, loc *time.Location) ([]checkin.DailyCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]int)
	for _, c := range r.s.checkIns {
		if c.Timestamp.Before(since) {
			continue
		}
		counts[c.Timestamp.In(loc).Format("2006-01-02")]++
	}

	out := make([]checkin.DailyCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, checkin.DailyCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
