package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
)

const tokenColumns = `id, user_id, value, created_at, expires_at, consumed_at, superseded_at`

type tokenRepositoryImpl struct {
	db *database.DB
}

func NewTokenRepository(db *database.DB) checkin.TokenRepository {
	return &tokenRepositoryImpl{db: db}
}

func scanToken(row pgx.Row) (checkin.Token, error) {
	var t checkin.Token
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Value,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.ConsumedAt,
		&t.SupersededAt,
	)
	return t, err
}

// Create implements checkin.TokenRepository.
func (r *tokenRepositoryImpl) Create(ctx context.Context, t checkin.Token) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO checkin_tokens (id, user_id, value, created_at, expires_at, consumed_at, superseded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.Value, t.CreatedAt, t.ExpiresAt, t.ConsumedAt, t.SupersededAt,
	)
	if err != nil {
		return fmt.Errorf("create check-in token: %w", err)
	}
	return nil
}

// GetByID implements checkin.TokenRepository.
func (r *tokenRepositoryImpl) GetByID(ctx context.Context, id string) (checkin.Token, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanToken(q.QueryRow(ctx, `SELECT `+tokenColumns+` FROM checkin_tokens WHERE id = $1`, id))
	if err != nil {
		return checkin.Token{}, notFound(err, checkin.ErrTokenNotFound)
	}
	return t, nil
}

// GetLiveByUser implements checkin.TokenRepository.
func (r *tokenRepositoryImpl) GetLiveByUser(ctx context.Context, userID string, now time.Time) (checkin.Token, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + tokenColumns + `
		FROM checkin_tokens
		WHERE user_id = $1 AND consumed_at IS NULL AND superseded_at IS NULL AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1`

	t, err := scanToken(q.QueryRow(ctx, query, userID, now))
	if err != nil {
		return checkin.Token{}, notFound(err, checkin.ErrTokenNotFound)
	}
	return t, nil
}

// SupersedeLive implements checkin.TokenRepository.
func (r *tokenRepositoryImpl) SupersedeLive(ctx context.Context, userID string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE checkin_tokens
		SET superseded_at = $2
		WHERE user_id = $1 AND consumed_at IS NULL AND superseded_at IS NULL`,
		userID, at,
	)
	if err != nil {
		return 0, fmt.Errorf("supersede tokens of user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// Consume implements checkin.TokenRepository. The conditional update makes concurrent
// redemptions of one token race on a single row; exactly one of them wins.
func (r *tokenRepositoryImpl) Consume(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE checkin_tokens
		SET consumed_at = $2
		WHERE id = $1 AND consumed_at IS NULL AND superseded_at IS NULL AND expires_at > $2`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("consume token %s: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM checkin_tokens WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return checkin.ErrTokenNotFound
	}
	return checkin.ErrTokenConsumed
}

// DeleteExpiredBefore implements checkin.TokenRepository.
func (r *tokenRepositoryImpl) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM checkin_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge check-in tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

const checkInColumns = `id, user_id, company_id, partner_id, partner_name, partner_type, recorded_at, qr_token_id`

type checkInRepositoryImpl struct {
	db *database.DB
}

func NewCheckInRepository(db *database.DB) checkin.CheckInRepository {
	return &checkInRepositoryImpl{db: db}
}

// Append implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) Append(ctx context.Context, c checkin.CheckIn) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO check_ins (`+checkInColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.CompanyID, c.PartnerID, c.PartnerName, c.PartnerType, c.Timestamp, c.QRToken,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return checkin.ErrTokenConsumed
		}
		return fmt.Errorf("append check-in: %w", err)
	}
	return nil
}

// ListByUser implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]checkin.CheckIn, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+checkInColumns+` FROM check_ins WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	checkIns := make([]checkin.CheckIn, 0)
	for rows.Next() {
		var c checkin.CheckIn
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.CompanyID,
			&c.PartnerID,
			&c.PartnerName,
			&c.PartnerType,
			&c.Timestamp,
			&c.QRToken,
		); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

// CountByUserSince implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM check_ins WHERE user_id = $1 AND recorded_at >= $2`, userID, since).Scan(&n)
	return n, err
}

// LastAtPartner implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) LastAtPartner(ctx context.Context, userID, partnerID string) (time.Time, bool, error) {
	q := GetQuerier(ctx, r.db)

	var last time.Time
	err := q.QueryRow(ctx, `
		SELECT recorded_at FROM check_ins
		WHERE user_id = $1 AND partner_id = $2
		ORDER BY recorded_at DESC
		LIMIT 1`,
		userID, partnerID,
	).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return last, true, nil
}

// UsageByCompany implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) UsageByCompany(ctx context.Context, companyID string, since time.Time) ([]checkin.Usage, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT user_id, COUNT(*), MAX(recorded_at)
		FROM check_ins
		WHERE company_id = $1 AND recorded_at >= $2
		GROUP BY user_id
		ORDER BY user_id`,
		companyID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("company usage: %w", err)
	}
	defer rows.Close()

	usage := make([]checkin.Usage, 0)
	for rows.Next() {
		var (
			u    checkin.Usage
			last time.Time
		)
		if err := rows.Scan(&u.UserID, &u.CheckIns, &last); err != nil {
			return nil, err
		}
		u.LastCheckIn = &last
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// CountSince implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) CountSince(ctx context.Context, since time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM check_ins WHERE recorded_at >= $1`, since).Scan(&n)
	return n, err
}

// DailyCounts implements checkin.CheckInRepository. loc must be a named IANA zone.
func (r *checkInRepositoryImpl) DailyCounts(ctx context.Context, since time.Time, loc *time.Location) ([]checkin.DailyCount, error) {
	q := GetQuerier(ctx, r.db)

	zone := loc.String()
	if loc == time.Local {
		zone = "UTC"
	}

	rows, err := q.Query(ctx, `
		SELECT TO_CHAR(recorded_at AT TIME ZONE $2, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM check_ins
		WHERE recorded_at >= $1
		GROUP BY day
		ORDER BY day`,
		since, zone,
	)
	if err != nil {
		return nil, fmt.Errorf("daily check-in counts: %w", err)
	}
	defer rows.Close()

	counts := make([]checkin.DailyCount, 0)
	for rows.Next() {
		var c checkin.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
