package leads

import (
	"strings"
	"time"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
)

// Bucket groups leads by score.
type Bucket string

const (
	BucketHot  Bucket = "hot"
	BucketWarm Bucket = "warm"
	BucketCold Bucket = "cold"
)

const (
	hotThreshold  = 70
	warmThreshold = 40
	maxScore      = 100
	longMessage   = 40
)

// Lead represents a contact form submission for a store
type Lead struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Score     int       `json:"score"`
	Bucket    Bucket    `json:"bucket"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	StoreID string `json:"-"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// Validate trims the request and checks required fields.
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.StoreID) == "" {
		return apperrors.ErrMissingStore
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
	r.Source = strings.ToLower(strings.TrimSpace(r.Source))
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	return nil
}

// Score rates how promising a submission is, from 0 to 100.
func Score(req *CreateLeadRequest) int {
	score := 0
	if req.Email != "" {
		score += 20
	}
	if req.Phone != "" {
		score += 20
	}
	if len([]rune(req.Message)) >= longMessage {
		score += 20
	}
	switch req.Source {
	case "referral":
		score += 30
	case "ads":
		score += 10
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}

// BucketFor maps a score to its bucket.
func BucketFor(score int) Bucket {
	switch {
	case score >= hotThreshold:
		return BucketHot
	case score >= warmThreshold:
		return BucketWarm
	default:
		return BucketCold
	}
}

// ParseBucket validates a bucket filter. Empty means no filter.
func ParseBucket(raw string) (Bucket, error) {
	b := Bucket(strings.ToLower(strings.TrimSpace(raw)))
	switch b {
	case "", BucketHot, BucketWarm, BucketCold:
		return b, nil
	}
	return "", ErrInvalidBucket
}

// ListLeadsFilter narrows ListByStore.
type ListLeadsFilter struct {
	Bucket Bucket
	Limit  int
	Offset int
}

func newLead(id string, req *CreateLeadRequest, createdAt time.Time) *Lead {
	score := Score(req)
	return &Lead{
		ID:        id,
		StoreID:   req.StoreID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		Source:    req.Source,
		Score:     score,
		Bucket:    BucketFor(score),
		CreatedAt: createdAt,
	}
}
