package notice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"panchayat/internal/identity"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/requestcontext"
)

// Service manages the notice board. Citizens see only published notices;
// staff see everything including drafts.
type Service struct {
	notices Store
	users   identity.Store
}

func NewService(notices Store, users identity.Store) *Service {
	return &Service{notices: notices, users: users}
}

func (s *Service) List(ctx context.Context) ([]Notice, error) {
	publishedOnly := requestcontext.UserRole(ctx) == string(identity.RoleCitizen)
	notices, err := s.notices.List(ctx, publishedOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notices")
	}
	if err := s.attachCreators(ctx, notices); err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []Notice{}
	}
	return notices, nil
}

type CreateInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	NoticeType  string `json:"notice_type"`
	Priority    string `json:"priority"`
	IsPublished bool   `json:"is_published"`
	IsGlobal    bool   `json:"is_global"`
	ExpiryDate  string `json:"expiry_date"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Notice, error) {
	if input.Title == "" || input.Content == "" || input.NoticeType == "" {
		return Notice{}, dErrors.New(dErrors.CodeBadRequest, "title, content, and notice_type are required")
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	n := Notice{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Content:     input.Content,
		NoticeType:  input.NoticeType,
		Priority:    priority,
		IsPublished: input.IsPublished,
		IsGlobal:    input.IsGlobal,
		ExpiryDate:  parseExpiry(input.ExpiryDate),
		CreatedByID: requestcontext.UserID(ctx),
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return Notice{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create notice")
	}
	return n, nil
}

type BroadcastInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	ExpiryDate  string `json:"expiryDate"`
}

// Broadcast publishes a global notice immediately.
func (s *Service) Broadcast(ctx context.Context, input BroadcastInput) (Notice, error) {
	if input.Title == "" || input.Description == "" {
		return Notice{}, dErrors.New(dErrors.CodeBadRequest, "title and description are required")
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityHigh
	}
	n := Notice{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Content:     input.Description,
		NoticeType:  TypeGlobal,
		Priority:    priority,
		IsPublished: true,
		IsGlobal:    true,
		ExpiryDate:  parseExpiry(input.ExpiryDate),
		CreatedByID: requestcontext.UserID(ctx),
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return Notice{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create notice")
	}
	notices := []Notice{n}
	if err := s.attachCreators(ctx, notices); err != nil {
		return Notice{}, err
	}
	return notices[0], nil
}

type UpdateInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	NoticeType  string `json:"notice_type"`
	Priority    string `json:"priority"`
	IsPublished *bool  `json:"is_published"`
	IsGlobal    *bool  `json:"is_global"`
	ExpiryDate  string `json:"expiry_date"`
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Notice, error) {
	n, err := s.notices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Notice{}, dErrors.New(dErrors.CodeNotFound, "Notice not found")
		}
		return Notice{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notice")
	}
	if input.Title != "" {
		n.Title = input.Title
	}
	if input.Content != "" {
		n.Content = input.Content
	}
	if input.NoticeType != "" {
		n.NoticeType = input.NoticeType
	}
	if input.Priority != "" {
		n.Priority = input.Priority
	}
	if input.IsPublished != nil {
		n.IsPublished = *input.IsPublished
	}
	if input.IsGlobal != nil {
		n.IsGlobal = *input.IsGlobal
	}
	if expiry := parseExpiry(input.ExpiryDate); expiry != nil {
		n.ExpiryDate = expiry
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return Notice{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update notice")
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.notices.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Notice not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete notice")
	}
	return nil
}

func parseExpiry(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func (s *Service) attachCreators(ctx context.Context, notices []Notice) error {
	ids := make([]string, 0, len(notices))
	seen := make(map[string]struct{}, len(notices))
	for _, n := range notices {
		if n.CreatedByID == "" {
			continue
		}
		if _, ok := seen[n.CreatedByID]; !ok {
			seen[n.CreatedByID] = struct{}{}
			ids = append(ids, n.CreatedByID)
		}
	}
	refs, err := s.users.Refs(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve creators")
	}
	for i := range notices {
		if ref, ok := refs[notices[i].CreatedByID]; ok {
			r := ref
			notices[i].Creator = &r
		}
	}
	return nil
}
