package certificate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"panchayat/internal/identity"
	"panchayat/internal/platform/metrics"
	"panchayat/internal/platform/sequence"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/requestcontext"
)

// Notifier is the fire-and-forget inbox hook for status changes.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, kind string)
}

// Service runs the certificate workflow: citizen submissions, owner/staff
// reads, and staff status transitions.
type Service struct {
	certs    Store
	users    identity.Store
	numbers  sequence.Allocator
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewService(certs Store, users identity.Store, numbers sequence.Allocator, notifier Notifier, m *metrics.Metrics) *Service {
	return &Service{certs: certs, users: users, numbers: numbers, notifier: notifier, metrics: m}
}

type CreateInput struct {
	CertificateType string         `json:"certificate_type"`
	Purpose         string         `json:"purpose"`
	Data            map[string]any `json:"data"`
}

// Create submits a new application for the calling citizen. The application
// number comes from the per-year counter.
func (s *Service) Create(ctx context.Context, input CreateInput) (Certificate, error) {
	if input.CertificateType == "" || input.Purpose == "" {
		return Certificate{}, dErrors.New(dErrors.CodeBadRequest, "certificate_type and purpose are required")
	}

	now := requestcontext.Now(ctx)
	n, err := s.numbers.Next(ctx, NumberPrefix, now.Year())
	if err != nil {
		return Certificate{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate application number")
	}

	data := input.Data
	if data == nil {
		data = map[string]any{}
	}
	cert := Certificate{
		ID:                uuid.NewString(),
		ApplicationNumber: sequence.Format(NumberPrefix, now.Year(), n),
		CitizenID:         requestcontext.UserID(ctx),
		CertificateType:   input.CertificateType,
		Purpose:           input.Purpose,
		Data:              data,
		Status:            StatusPending,
		SubmittedAt:       now,
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		return Certificate{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create certificate")
	}
	if s.metrics != nil {
		s.metrics.CertificatesCreated.Inc()
	}
	return cert, nil
}

// List returns the caller's own certificates for citizens, all for staff.
func (s *Service) List(ctx context.Context) ([]Certificate, error) {
	citizenID := ""
	if requestcontext.UserRole(ctx) == string(identity.RoleCitizen) {
		citizenID = requestcontext.UserID(ctx)
	}
	certs, err := s.certs.List(ctx, citizenID, 0)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	if err := s.attachCitizens(ctx, certs); err != nil {
		return nil, err
	}
	if certs == nil {
		certs = []Certificate{}
	}
	return certs, nil
}

// Get enforces row-level ownership: citizens may only read their own rows.
func (s *Service) Get(ctx context.Context, id string) (Certificate, error) {
	cert, err := s.certs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Certificate{}, dErrors.New(dErrors.CodeNotFound, "Certificate not found")
		}
		return Certificate{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}
	if requestcontext.UserRole(ctx) == string(identity.RoleCitizen) && cert.CitizenID != requestcontext.UserID(ctx) {
		return Certificate{}, dErrors.New(dErrors.CodeForbidden, "Access denied")
	}
	certs := []Certificate{cert}
	if err := s.attachCitizens(ctx, certs); err != nil {
		return Certificate{}, err
	}
	return certs[0], nil
}

// ListByCitizen returns a citizen's newest applications for staff views.
func (s *Service) ListByCitizen(ctx context.Context, citizenID string, limit int) ([]Certificate, error) {
	certs, err := s.certs.List(ctx, citizenID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	if certs == nil {
		certs = []Certificate{}
	}
	return certs, nil
}

type UpdateInput struct {
	Status         string `json:"status"`
	Remarks        string `json:"remarks"`
	CertificateURL string `json:"certificate_url"`
}

// Update applies a staff transition. Any status other than pending stamps the
// processor reference and timestamp. Last write wins; there is no versioning.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Certificate, error) {
	cert, err := s.certs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Certificate{}, dErrors.New(dErrors.CodeNotFound, "Certificate not found")
		}
		return Certificate{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}

	statusChanged := false
	if input.Status != "" {
		if !ValidStatus(input.Status) {
			return Certificate{}, dErrors.New(dErrors.CodeBadRequest, "invalid status")
		}
		statusChanged = input.Status != cert.Status
		cert.Status = input.Status
		if input.Status != StatusPending {
			now := requestcontext.Now(ctx)
			cert.ProcessedAt = &now
			cert.ProcessedByID = requestcontext.UserID(ctx)
		}
	}
	if input.Remarks != "" {
		cert.Remarks = input.Remarks
	}
	if input.CertificateURL != "" {
		cert.CertificateURL = input.CertificateURL
	}

	if err := s.certs.Update(ctx, cert); err != nil {
		return Certificate{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update certificate")
	}

	if statusChanged && s.notifier != nil {
		s.notifier.Notify(ctx, cert.CitizenID,
			"Certificate application "+cert.Status,
			fmt.Sprintf("Your application %s is now %s.", cert.ApplicationNumber, cert.Status),
			statusKind(cert.Status))
	}
	return cert, nil
}

func statusKind(status string) string {
	switch status {
	case StatusApproved:
		return "success"
	case StatusRejected:
		return "error"
	default:
		return "info"
	}
}

func (s *Service) attachCitizens(ctx context.Context, certs []Certificate) error {
	ids := make([]string, 0, len(certs))
	seen := make(map[string]struct{}, len(certs))
	for _, cert := range certs {
		if _, ok := seen[cert.CitizenID]; !ok {
			seen[cert.CitizenID] = struct{}{}
			ids = append(ids, cert.CitizenID)
		}
	}
	refs, err := s.users.Refs(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve citizens")
	}
	for i := range certs {
		if ref, ok := refs[certs[i].CitizenID]; ok {
			r := ref
			certs[i].Citizen = &r
		}
	}
	return nil
}
