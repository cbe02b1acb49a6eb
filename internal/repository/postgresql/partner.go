package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

const partnerColumns = `id, name, type, city, address, latitude, longitude, rating, open_hours, image_url,
	status, terminal_key_hash, version, created_at, updated_at`

type partnerRepositoryImpl struct {
	db *database.DB
}

func NewPartnerRepository(db *database.DB) partner.PartnerRepository {
	return &partnerRepositoryImpl{db: db}
}

func scanPartner(row pgx.Row) (partner.Partner, error) {
	var p partner.Partner
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&p.City,
		&p.Address,
		&p.Latitude,
		&p.Longitude,
		&p.Rating,
		&p.OpenHours,
		&p.ImageURL,
		&p.Status,
		&p.TerminalKeyHash,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// Create implements partner.PartnerRepository.
func (r *partnerRepositoryImpl) Create(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = ids.NewUUID()
	}
	if p.Status == "" {
		p.Status = partner.StatusPending
	}

	query := `
		INSERT INTO partners (
			id, name, type, city, address, latitude, longitude, rating, open_hours, image_url,
			status, terminal_key_hash, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, NOW(), NOW())
		RETURNING ` + partnerColumns

	created, err := scanPartner(q.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Type,
		p.City,
		p.Address,
		p.Latitude,
		p.Longitude,
		p.Rating,
		p.OpenHours,
		p.ImageURL,
		p.Status,
		p.TerminalKeyHash,
	))
	if err != nil {
		return partner.Partner{}, fmt.Errorf("create partner: %w", err)
	}
	return created, nil
}

// GetByID implements partner.PartnerRepository.
func (r *partnerRepositoryImpl) GetByID(ctx context.Context, id string) (partner.Partner, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPartner(q.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
	if err != nil {
		return partner.Partner{}, notFound(err, partner.ErrPartnerNotFound)
	}
	return p, nil
}

// List implements partner.PartnerRepository.
func (r *partnerRepositoryImpl) List(ctx context.Context, filter partner.Filter) ([]partner.Partner, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.City != "" {
		add("city", filter.City)
	}
	if filter.Type != "" {
		add("type", filter.Type)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}

	query := `SELECT ` + partnerColumns + ` FROM partners`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY name, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	partners := make([]partner.Partner, 0)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

// Update implements partner.PartnerRepository. Status and terminal key are left as stored.
func (r *partnerRepositoryImpl) Update(ctx context.Context, p partner.Partner, expectedVersion int) (partner.Partner, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE partners
		SET name = $2, type = $3, city = $4, address = $5, latitude = $6, longitude = $7,
			rating = $8, open_hours = $9, image_url = $10,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $11
		RETURNING ` + partnerColumns

	updated, err := scanPartner(q.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Type,
		p.City,
		p.Address,
		p.Latitude,
		p.Longitude,
		p.Rating,
		p.OpenHours,
		p.ImageURL,
		expectedVersion,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return partner.Partner{}, fmt.Errorf("update partner %s: %w", p.ID, err)
	}
	if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
		return partner.Partner{}, getErr
	}
	return partner.Partner{}, partner.ErrPartnerVersionConflict
}

// UpdateStatus implements partner.PartnerRepository.
func (r *partnerRepositoryImpl) UpdateStatus(ctx context.Context, id string, status partner.Status) (partner.Partner, error) {
	var result partner.Partner
	err := NewTransactor(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		current, err := scanPartner(q.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err, partner.ErrPartnerNotFound)
		}
		if !partner.CanTransition(current.Status, status) {
			return partner.ErrInvalidStatusTransition
		}
		if current.Status == status {
			result = current
			return nil
		}

		query := `
			UPDATE partners
			SET status = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING ` + partnerColumns
		result, err = scanPartner(q.QueryRow(ctx, query, id, status))
		return err
	})
	if err != nil {
		return partner.Partner{}, err
	}
	return result, nil
}

// SetTerminalKeyHash implements partner.PartnerRepository.
func (r *partnerRepositoryImpl) SetTerminalKeyHash(ctx context.Context, id string, hash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE partners SET terminal_key_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("set terminal key for partner %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return partner.ErrPartnerNotFound
	}
	return nil
}

// Delete implements partner.PartnerRepository.
func (r *partnerRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete partner %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return partner.ErrPartnerNotFound
	}
	return nil
}
