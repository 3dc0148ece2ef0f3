package scheme

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"panchayat/internal/identity"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/requestcontext"
)

// Service manages welfare schemes. Writes are admin-only at the route level;
// the service itself does not re-check roles.
type Service struct {
	schemes Store
	users   identity.Store
}

func NewService(schemes Store, users identity.Store) *Service {
	return &Service{schemes: schemes, users: users}
}

// List returns all schemes newest-first with the creator's name attached.
func (s *Service) List(ctx context.Context) ([]Scheme, error) {
	schemes, err := s.schemes.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schemes")
	}
	if err := s.attachCreators(ctx, schemes); err != nil {
		return nil, err
	}
	if schemes == nil {
		schemes = []Scheme{}
	}
	return schemes, nil
}

type CreateInput struct {
	SchemeName     string   `json:"scheme_name"`
	Description    string   `json:"description"`
	IsActive       *bool    `json:"is_active"`
	AllocatedFunds *float64 `json:"allocated_funds"`
	UtilizedFunds  *float64 `json:"utilized_funds"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Scheme, error) {
	if input.SchemeName == "" || input.Description == "" {
		return Scheme{}, dErrors.New(dErrors.CodeBadRequest, "scheme_name and description are required")
	}
	scheme := Scheme{
		ID:          uuid.NewString(),
		SchemeName:  input.SchemeName,
		Description: input.Description,
		IsActive:    input.IsActive == nil || *input.IsActive,
		CreatedByID: requestcontext.UserID(ctx),
		CreatedAt:   requestcontext.Now(ctx),
	}
	if input.AllocatedFunds != nil {
		scheme.AllocatedFunds = *input.AllocatedFunds
	}
	if input.UtilizedFunds != nil {
		scheme.UtilizedFunds = *input.UtilizedFunds
	}
	if err := s.schemes.Create(ctx, scheme); err != nil {
		return Scheme{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create scheme")
	}
	return scheme, nil
}

type UpdateInput struct {
	SchemeName     string   `json:"scheme_name"`
	Description    string   `json:"description"`
	IsActive       *bool    `json:"is_active"`
	AllocatedFunds *float64 `json:"allocated_funds"`
	UtilizedFunds  *float64 `json:"utilized_funds"`
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Scheme, error) {
	scheme, err := s.schemes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Scheme{}, dErrors.New(dErrors.CodeNotFound, "Scheme not found")
		}
		return Scheme{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheme")
	}
	if input.SchemeName != "" {
		scheme.SchemeName = input.SchemeName
	}
	if input.Description != "" {
		scheme.Description = input.Description
	}
	if input.IsActive != nil {
		scheme.IsActive = *input.IsActive
	}
	if input.AllocatedFunds != nil {
		scheme.AllocatedFunds = *input.AllocatedFunds
	}
	if input.UtilizedFunds != nil {
		scheme.UtilizedFunds = *input.UtilizedFunds
	}
	if err := s.schemes.Update(ctx, scheme); err != nil {
		return Scheme{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update scheme")
	}
	return scheme, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.schemes.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Scheme not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete scheme")
	}
	return nil
}

func (s *Service) attachCreators(ctx context.Context, schemes []Scheme) error {
	ids := make([]string, 0, len(schemes))
	seen := make(map[string]struct{}, len(schemes))
	for _, scheme := range schemes {
		if scheme.CreatedByID == "" {
			continue
		}
		if _, ok := seen[scheme.CreatedByID]; !ok {
			seen[scheme.CreatedByID] = struct{}{}
			ids = append(ids, scheme.CreatedByID)
		}
	}
	refs, err := s.users.Refs(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve creators")
	}
	for i := range schemes {
		if ref, ok := refs[schemes[i].CreatedByID]; ok {
			r := ref
			schemes[i].Creator = &r
		}
	}
	return nil
}
