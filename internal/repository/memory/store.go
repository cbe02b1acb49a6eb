// Package memory implements every repository on an in-process store. It backs the mock
// mode of the API and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/auth"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/invoice"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
)

// Store holds all collections behind one lock. Transactions are serialized with a
// second lock so that check-then-write sequences in services observe no interleaving
// from other transactions.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	users         map[string]user.User
	companies     map[string]company.Company
	plans         map[string]plan.Plan
	partners      map[string]partner.Partner
	tokens        map[string]checkin.Token
	checkIns      []checkin.CheckIn
	invoices      map[string]invoice.Invoice
	refreshTokens map[string]auth.RefreshToken
	resets        map[string]auth.PasswordReset
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[string]user.User),
		companies:     make(map[string]company.Company),
		plans:         make(map[string]plan.Plan),
		partners:      make(map[string]partner.Partner),
		tokens:        make(map[string]checkin.Token),
		invoices:      make(map[string]invoice.Invoice),
		refreshTokens: make(map[string]auth.RefreshToken),
		resets:        make(map[string]auth.PasswordReset),
	}
}

// WithClock sets the clock used for created/updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

type txKey struct{}

// WithinTransaction runs fn while holding the transaction lock. Nested calls reuse the
// outer transaction. Writes are not rolled back when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
