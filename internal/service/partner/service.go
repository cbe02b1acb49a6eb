package partner

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type PartnerServiceImpl struct {
	partner.PartnerRepository
}

func NewPartnerService(partnerRepository partner.PartnerRepository) partner.PartnerService {
	return &PartnerServiceImpl{PartnerRepository: partnerRepository}
}

// ListApproved implements partner.PartnerService.
func (s *PartnerServiceImpl) ListApproved(ctx context.Context, query partner.ListPartnersQuery) ([]partner.PartnerResponse, error) {
	query.Status = string(partner.StatusApproved)
	return s.list(ctx, query)
}

// List implements partner.PartnerService.
// Subtle: this method shadows the method (PartnerRepository).List of PartnerServiceImpl.PartnerRepository.
func (s *PartnerServiceImpl) List(ctx context.Context, query partner.ListPartnersQuery) ([]partner.PartnerResponse, error) {
	return s.list(ctx, query)
}

// list applies the repository filter and, when a location is given, keeps partners inside
// the radius ordered by distance.
func (s *PartnerServiceImpl) list(ctx context.Context, query partner.ListPartnersQuery) ([]partner.PartnerResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	partners, err := s.PartnerRepository.List(ctx, partner.Filter{
		City:   strings.TrimSpace(query.City),
		Type:   partner.Type(query.Type),
		Status: partner.Status(query.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	out := make([]partner.PartnerResponse, 0, len(partners))
	for _, p := range partners {
		resp := partner.NewPartnerResponse(p)
		if query.HasLocation() {
			km := utils.CalculateHaversineDistance(*query.Lat, *query.Lng, p.Latitude, p.Longitude) / 1000
			if km > *query.RadiusKm {
				continue
			}
			resp.DistanceKm = &km
		}
		out = append(out, resp)
	}

	if query.HasLocation() {
		sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	}
	return out, nil
}

// GetApproved implements partner.PartnerService.
func (s *PartnerServiceImpl) GetApproved(ctx context.Context, id string) (partner.PartnerResponse, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return partner.PartnerResponse{}, err
	}
	if !p.IsApproved() {
		return partner.PartnerResponse{}, partner.ErrPartnerNotFound
	}
	return partner.NewPartnerResponse(p), nil
}

// Create implements partner.PartnerService.
// Subtle: this method shadows the method (PartnerRepository).Create of PartnerServiceImpl.PartnerRepository.
func (s *PartnerServiceImpl) Create(ctx context.Context, req partner.CreatePartnerRequest) (partner.PartnerResponse, error) {
	if err := req.Validate(); err != nil {
		return partner.PartnerResponse{}, err
	}

	created, err := s.PartnerRepository.Create(ctx, partner.Partner{
		Name:      req.Name,
		Type:      partner.Type(req.Type),
		City:      req.City,
		Address:   strings.TrimSpace(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Rating:    req.Rating,
		OpenHours: req.OpenHours,
		ImageURL:  req.ImageURL,
		Status:    partner.StatusPending,
	})
	if err != nil {
		return partner.PartnerResponse{}, err
	}

	slog.Info("partner created", "partner_id", created.ID, "type", created.Type)
	return partner.NewPartnerResponse(created), nil
}

// Update implements partner.PartnerService.
// Subtle: this method shadows the method (PartnerRepository).Update of PartnerServiceImpl.PartnerRepository.
func (s *PartnerServiceImpl) Update(ctx context.Context, req partner.UpdatePartnerRequest) (partner.PartnerResponse, error) {
	if err := req.Validate(); err != nil {
		return partner.PartnerResponse{}, err
	}

	p, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return partner.PartnerResponse{}, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		p.Type = partner.Type(*req.Type)
	}
	if req.City != nil {
		p.City = strings.TrimSpace(*req.City)
	}
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if req.Latitude != nil {
		p.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = *req.Longitude
	}
	if req.Rating != nil {
		p.Rating = *req.Rating
	}
	if req.OpenHours != nil {
		p.OpenHours = req.OpenHours
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}

	updated, err := s.PartnerRepository.Update(ctx, p, req.Version)
	if err != nil {
		return partner.PartnerResponse{}, err
	}
	return partner.NewPartnerResponse(updated), nil
}

// UpdateStatus implements partner.PartnerService.
// Subtle: this method shadows the method (PartnerRepository).UpdateStatus of PartnerServiceImpl.PartnerRepository.
func (s *PartnerServiceImpl) UpdateStatus(ctx context.Context, req partner.UpdateStatusRequest) (partner.PartnerResponse, error) {
	if err := req.Validate(); err != nil {
		return partner.PartnerResponse{}, err
	}

	updated, err := s.PartnerRepository.UpdateStatus(ctx, req.ID, partner.Status(req.Status))
	if err != nil {
		return partner.PartnerResponse{}, err
	}

	slog.Info("partner status updated", "partner_id", updated.ID, "status", updated.Status)
	return partner.NewPartnerResponse(updated), nil
}

// RotateTerminalKey implements partner.PartnerService.
func (s *PartnerServiceImpl) RotateTerminalKey(ctx context.Context, id string) (partner.TerminalKeyResponse, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return partner.TerminalKeyResponse{}, fmt.Errorf("generate terminal key: %w", err)
	}
	key := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return partner.TerminalKeyResponse{}, fmt.Errorf("hash terminal key: %w", err)
	}
	if err := s.SetTerminalKeyHash(ctx, id, string(hash)); err != nil {
		return partner.TerminalKeyResponse{}, err
	}

	slog.Info("partner terminal key rotated", "partner_id", id)
	return partner.TerminalKeyResponse{PartnerID: id, TerminalKey: key}, nil
}

// AuthenticateTerminal implements partner.PartnerService.
func (s *PartnerServiceImpl) AuthenticateTerminal(ctx context.Context, partnerID, key string) (partner.Partner, error) {
	if partnerID == "" || key == "" {
		return partner.Partner{}, partner.ErrInvalidTerminalKey
	}

	p, err := s.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, partner.ErrPartnerNotFound) {
			return partner.Partner{}, partner.ErrInvalidTerminalKey
		}
		return partner.Partner{}, err
	}
	if p.TerminalKeyHash == nil {
		return partner.Partner{}, partner.ErrInvalidTerminalKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*p.TerminalKeyHash), []byte(key)); err != nil {
		return partner.Partner{}, partner.ErrInvalidTerminalKey
	}
	if !p.IsApproved() {
		return partner.Partner{}, partner.ErrPartnerNotApproved
	}
	return p, nil
}
