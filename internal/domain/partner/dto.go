package partner

import (
	"strings"
	"time"

	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

type PartnerResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Rating      float64  `json:"rating"`
	OpenHours   *string  `json:"open_hours,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Status      string   `json:"status"`
	HasTerminal bool     `json:"has_terminal"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	Version     int      `json:"version"`
	CreatedAt   string   `json:"created_at"`
}

func NewPartnerResponse(p Partner) PartnerResponse {
	return PartnerResponse{
		ID:          p.ID,
		Name:        p.Name,
		Type:        string(p.Type),
		City:        p.City,
		Address:     p.Address,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Rating:      p.Rating,
		OpenHours:   p.OpenHours,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		HasTerminal: p.TerminalKeyHash != nil,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// ListPartnersQuery filters the partner directory. Lat, Lng and RadiusKm must be given together.
type ListPartnersQuery struct {
	City     string
	Type     string
	Status   string
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
}

func (q *ListPartnersQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Type != "" && !Type(q.Type).Valid() {
		errs.Add("type", "type must be one of gym, spa, club, digital")
	}
	if q.Status != "" && !validator.IsInSlice(q.Status, []string{
		string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusSuspended),
	}) {
		errs.Add("status", "invalid status")
	}

	geo := 0
	for _, v := range []*float64{q.Lat, q.Lng, q.RadiusKm} {
		if v != nil {
			geo++
		}
	}
	if geo != 0 && geo != 3 {
		errs.Add("radius_km", "lat, lng and radius_km must be provided together")
	}
	if q.Lat != nil && !validator.IsValidLatitude(*q.Lat) {
		errs.Add("lat", "lat must be between -90 and 90")
	}
	if q.Lng != nil && !validator.IsValidLongitude(*q.Lng) {
		errs.Add("lng", "lng must be between -180 and 180")
	}
	if q.RadiusKm != nil && *q.RadiusKm <= 0 {
		errs.Add("radius_km", "radius_km must be positive")
	}

	return errs.Err()
}

func (q *ListPartnersQuery) HasLocation() bool {
	return q.Lat != nil && q.Lng != nil && q.RadiusKm != nil
}

type CreatePartnerRequest struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	City      string  `json:"city"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Rating    float64 `json:"rating"`
	OpenHours *string `json:"open_hours,omitempty"`
	ImageURL  *string `json:"image_url,omitempty"`
}

func (r *CreatePartnerRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	r.City = strings.TrimSpace(r.City)

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !Type(r.Type).Valid() {
		errs.Add("type", "type must be one of gym, spa, club, digital")
	}
	if validator.IsEmpty(r.City) {
		errs.Add("city", "city is required")
	}
	if !validator.IsValidLatitude(r.Latitude) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if !validator.IsValidLongitude(r.Longitude) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
	if !validator.InRange(r.Rating, 0, 5) {
		errs.Add("rating", "rating must be between 0 and 5")
	}

	return errs.Err()
}

type UpdatePartnerRequest struct {
	ID        string   `json:"-"`
	Name      *string  `json:"name,omitempty"`
	Type      *string  `json:"type,omitempty"`
	City      *string  `json:"city,omitempty"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	OpenHours *string  `json:"open_hours,omitempty"`
	ImageURL  *string  `json:"image_url,omitempty"`
	Version   int      `json:"version"`
}

func (r *UpdatePartnerRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Type != nil && !Type(*r.Type).Valid() {
		errs.Add("type", "type must be one of gym, spa, club, digital")
	}
	if r.City != nil && validator.IsEmpty(*r.City) {
		errs.Add("city", "city must not be empty")
	}
	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
	if r.Rating != nil && !validator.InRange(*r.Rating, 0, 5) {
		errs.Add("rating", "rating must be between 0 and 5")
	}
	if r.Version < 1 {
		errs.Add("version", "version is required")
	}

	return errs.Err()
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if !validator.IsInSlice(r.Status, []string{
		string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusSuspended),
	}) {
		errs.Add("status", "status must be one of pending, approved, rejected, suspended")
	}
	return errs.Err()
}

// TerminalKeyResponse carries a freshly generated terminal key. It is shown only once.
type TerminalKeyResponse struct {
	PartnerID   string `json:"partner_id"`
	TerminalKey string `json:"terminal_key"`
}
