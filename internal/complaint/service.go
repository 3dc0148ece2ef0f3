package complaint

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

type Notifier interface {
	Notify(ctx context.Context, userID, title, message, kind string)
}

// Service runs the grievance workflow: citizen submissions, staff triage and
// assignment, and resolution tracking.
type Service struct {
	complaints Store
	users      identity.Store
	numbers    sequence.Allocator
	notifier   Notifier
	metrics    *metrics.Metrics
}

func NewService(complaints Store, users identity.Store, numbers sequence.Allocator, notifier Notifier, m *metrics.Metrics) *Service {
	return &Service{complaints: complaints, users: users, numbers: numbers, notifier: notifier, metrics: m}
}

type CreateInput struct {
	ComplaintType string `json:"complaint_type"`
	Subject       string `json:"subject"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Priority      string `json:"priority"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Complaint, error) {
	if input.ComplaintType == "" || input.Subject == "" || input.Description == "" {
		return Complaint{}, dErrors.New(dErrors.CodeBadRequest, "complaint_type, subject, description are required")
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return Complaint{}, dErrors.New(dErrors.CodeBadRequest, "invalid priority")
	}

	now := requestcontext.Now(ctx)
	n, err := s.numbers.Next(ctx, NumberPrefix, now.Year())
	if err != nil {
		return Complaint{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate complaint number")
	}

	c := Complaint{
		ID:              uuid.NewString(),
		ComplaintNumber: sequence.Format(NumberPrefix, now.Year(), n),
		CitizenID:       requestcontext.UserID(ctx),
		ComplaintType:   input.ComplaintType,
		Subject:         input.Subject,
		Description:     input.Description,
		Location:        input.Location,
		Priority:        priority,
		Status:          StatusOpen,
		SubmittedAt:     now,
	}
	if err := s.complaints.Create(ctx, c); err != nil {
		return Complaint{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create complaint")
	}
	if s.metrics != nil {
		s.metrics.ComplaintsCreated.Inc()
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]Complaint, error) {
	citizenID := ""
	if requestcontext.UserRole(ctx) == string(identity.RoleCitizen) {
		citizenID = requestcontext.UserID(ctx)
	}
	complaints, err := s.complaints.List(ctx, citizenID, 0)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	if err := s.attachRefs(ctx, complaints); err != nil {
		return nil, err
	}
	if complaints == nil {
		complaints = []Complaint{}
	}
	return complaints, nil
}

func (s *Service) Get(ctx context.Context, id string) (Complaint, error) {
	c, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Complaint{}, dErrors.New(dErrors.CodeNotFound, "Complaint not found")
		}
		return Complaint{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaint")
	}
	if requestcontext.UserRole(ctx) == string(identity.RoleCitizen) && c.CitizenID != requestcontext.UserID(ctx) {
		return Complaint{}, dErrors.New(dErrors.CodeForbidden, "Access denied")
	}
	complaints := []Complaint{c}
	if err := s.attachRefs(ctx, complaints); err != nil {
		return Complaint{}, err
	}
	return complaints[0], nil
}

// ListByCitizen returns a citizen's newest complaints for staff views.
func (s *Service) ListByCitizen(ctx context.Context, citizenID string, limit int) ([]Complaint, error) {
	complaints, err := s.complaints.List(ctx, citizenID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	if complaints == nil {
		complaints = []Complaint{}
	}
	return complaints, nil
}

type UpdateInput struct {
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	AssignedToID string `json:"assigned_to_id"`
	Resolution   string `json:"resolution"`
}

// Update applies a staff patch. ResolvedAt is stamped every time the status
// is set to resolved and is never cleared afterwards.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Complaint, error) {
	c, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Complaint{}, dErrors.New(dErrors.CodeNotFound, "Complaint not found")
		}
		return Complaint{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaint")
	}

	statusChanged := false
	if input.Status != "" {
		if !ValidStatus(input.Status) {
			return Complaint{}, dErrors.New(dErrors.CodeBadRequest, "invalid status")
		}
		statusChanged = input.Status != c.Status
		c.Status = input.Status
		if input.Status == StatusResolved {
			now := requestcontext.Now(ctx)
			c.ResolvedAt = &now
		}
	}
	if input.Priority != "" {
		if !ValidPriority(input.Priority) {
			return Complaint{}, dErrors.New(dErrors.CodeBadRequest, "invalid priority")
		}
		c.Priority = input.Priority
	}
	if input.AssignedToID != "" {
		c.AssignedToID = input.AssignedToID
	}
	if input.Resolution != "" {
		c.Resolution = input.Resolution
	}

	if err := s.complaints.Update(ctx, c); err != nil {
		return Complaint{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update complaint")
	}

	if statusChanged && s.notifier != nil {
		s.notifier.Notify(ctx, c.CitizenID,
			"Complaint "+c.Status,
			fmt.Sprintf("Your complaint %s is now %s.", c.ComplaintNumber, c.Status),
			statusKind(c.Status))
	}
	return c, nil
}

func statusKind(status string) string {
	switch status {
	case StatusResolved:
		return "success"
	case StatusClosed:
		return "warning"
	default:
		return "info"
	}
}

func (s *Service) attachRefs(ctx context.Context, complaints []Complaint) error {
	ids := make([]string, 0, len(complaints)*2)
	seen := make(map[string]struct{}, len(complaints))
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, c := range complaints {
		add(c.CitizenID)
		add(c.AssignedToID)
	}
	refs, err := s.users.Refs(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve users")
	}
	for i := range complaints {
		if ref, ok := refs[complaints[i].CitizenID]; ok {
			r := ref
			complaints[i].Citizen = &r
		}
		if ref, ok := refs[complaints[i].AssignedToID]; ok {
			r := ref
			complaints[i].Assignee = &r
		}
	}
	return nil
}
