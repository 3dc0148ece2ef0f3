package registration

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"panchayat/internal/identity"
	"panchayat/internal/platform/metrics"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/requestcontext"
)

// Notifier is the fire-and-forget inbox hook. Implementations must never
// return; failures are their own to log.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, kind string)
}

// Service runs the admin review queue: list, inspect, approve or reject. On
// approval it materializes the citizen account.
type Service struct {
	requests Store
	users    identity.Store
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewService(requests Store, users identity.Store, notifier Notifier, m *metrics.Metrics) *Service {
	return &Service{requests: requests, users: users, notifier: notifier, metrics: m}
}

func (s *Service) List(ctx context.Context, status string) ([]Request, error) {
	requests, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registration requests")
	}
	if requests == nil {
		requests = []Request{}
	}
	return requests, nil
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Request{}, dErrors.New(dErrors.CodeNotFound, "Registration request not found")
		}
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration request")
	}
	return req, nil
}

// Decision is the admin's verdict on a request.
type Decision struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

// Decide applies an approve/reject decision. Approval materializes exactly one
// User + CitizenProfile; re-approving an already-materialized email is a no-op
// on the user table. Decisions may overwrite a previous one (documented
// idempotency gap; the existing-email check is the only guard).
func (s *Service) Decide(ctx context.Context, id string, decision Decision) (Request, error) {
	if decision.Status == "" {
		return Request{}, dErrors.New(dErrors.CodeBadRequest, "status is required")
	}
	if !ValidDecision(decision.Status) {
		return Request{}, dErrors.New(dErrors.CodeBadRequest, "status must be approved or rejected")
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}

	now := requestcontext.Now(ctx)
	req.Status = decision.Status
	req.ReviewedAt = &now
	req.ReviewedByID = requestcontext.UserID(ctx)
	if decision.RejectionReason != "" {
		req.RejectionReason = decision.RejectionReason
	}
	if err := s.requests.Update(ctx, req); err != nil {
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registration request")
	}

	if decision.Status == StatusApproved {
		if err := s.materialize(ctx, req); err != nil {
			return Request{}, err
		}
	}
	return req, nil
}

// materialize creates the citizen account for an approved request unless a
// user with that email already exists.
func (s *Service) materialize(ctx context.Context, req Request) error {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing user")
	}

	user := identity.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Role:         identity.RoleCitizen,
		FullName:     req.FullName,
		Mobile:       req.Mobile,
		IsActive:     true,
		CreatedAt:    requestcontext.Now(ctx),
	}
	user.Profile = &identity.CitizenProfile{
		UserID:        user.ID,
		AadhaarNumber: req.AadhaarNumber,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		Address:       req.Address,
		Village:       req.Village,
		Pincode:       req.Pincode,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with another approval of the same email; the account
			// exists, which is all approval guarantees.
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create citizen account")
	}
	if s.metrics != nil {
		s.metrics.UsersMaterialized.Inc()
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, user.ID, "Registration approved",
			"Your registration has been approved. Welcome to the Gram Panchayat portal.", "success")
	}
	return nil
}
