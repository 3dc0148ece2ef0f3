package settings

import (
	"context"
	"fmt"

	dErrors "panchayat/pkg/domain-errors"
)

// Defaults are merged under stored rows so every key is always present in
// responses even before anything has been saved.
var Defaults = map[string]string{
	"village_name":        "Sarahi Village",
	"district":            "Katni",
	"state":               "Madhya Pradesh",
	"sarpanch_name":       "Ramesh Kumar",
	"contact_email":       "admin@panchayat.gov.in",
	"contact_phone":       "9999999999",
	"digitization_target": "90",
	"financial_year":      "2025-26",
}

type Store interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns stored settings merged over the defaults.
func (s *Service) Get(ctx context.Context) (map[string]string, error) {
	stored, err := s.store.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	merged := make(map[string]string, len(Defaults)+len(stored))
	for k, v := range Defaults {
		merged[k] = v
	}
	for k, v := range stored {
		merged[k] = v
	}
	return merged, nil
}

// Update upserts every key in the payload. Values are stored as strings
// regardless of their JSON type.
func (s *Service) Update(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "Settings object required")
	}
	for key, value := range values {
		if err := s.store.Set(ctx, key, fmt.Sprintf("%v", value)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save setting")
		}
	}
	return nil
}
