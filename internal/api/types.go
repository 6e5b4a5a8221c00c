package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LeadStatus is the lifecycle state of a lead. The remote service is the only
// authority on legal transitions; the client forwards whatever it is given.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusConverted LeadStatus = "converted"
	StatusClosed    LeadStatus = "closed"
)

// Statuses lists every known status in display order.
func Statuses() []LeadStatus {
	return []LeadStatus{StatusNew, StatusContacted, StatusConverted, StatusClosed}
}

// Valid reports whether s is one of the known statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusConverted, StatusClosed:
		return true
	default:
		return false
	}
}

// DefaultSource tags leads captured by the landing page form.
const DefaultSource = "website"

// Product is a catalogue entry shown in the gallery carousel.
type Product struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Model     string   `json:"model,omitempty"`
	Positions int      `json:"positions,omitempty"`
	Color     string   `json:"color,omitempty"`
	Price     float64  `json:"price"`
	Features  []string `json:"features,omitempty"`
	ImageURL  string   `json:"imageUrl"`
	InStock   bool     `json:"inStock"`
}

// Lead is a prospective customer captured through the registration form.
type Lead struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Message         string     `json:"message,omitempty"`
	Source          string     `json:"source,omitempty"`
	ProductInterest string     `json:"productInterest,omitempty"`
	Status          LeadStatus `json:"status"`
	CreatedAt       Timestamp  `json:"createdAt"`
	UpdatedAt       Timestamp  `json:"updatedAt"`
}

// NewLead is the payload of a lead creation request.
type NewLead struct {
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Message         string     `json:"message,omitempty"`
	ProductInterest string     `json:"productInterest,omitempty"`
	Source          string     `json:"source"`
	Status          LeadStatus `json:"status"`
}

// LeadUpdate carries a partial update; nil fields are left untouched.
type LeadUpdate struct {
	Name            *string     `json:"name,omitempty"`
	Email           *string     `json:"email,omitempty"`
	Phone           *string     `json:"phone,omitempty"`
	Message         *string     `json:"message,omitempty"`
	Source          *string     `json:"source,omitempty"`
	ProductInterest *string     `json:"productInterest,omitempty"`
	Status          *LeadStatus `json:"status,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u LeadUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.Message == nil &&
		u.Source == nil && u.ProductInterest == nil && u.Status == nil
}

// LeadFilter narrows a lead listing. Zero values are ignored.
type LeadFilter struct {
	Status LeadStatus
	Since  time.Time
	Until  time.Time
}

// Timestamp decodes the timestamp shapes the collaborator emits: RFC 3339
// with or without a zone, and bare dates. Values without a zone are UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses any of the accepted layouts.
func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("api: unrecognised timestamp %q", raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("api: timestamp: %w", err)
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
