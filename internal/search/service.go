package search

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/identity"
	"panchayat/internal/notice"
	"panchayat/internal/scheme"
	dErrors "panchayat/pkg/domain-errors"
)

const (
	// MinQueryLength is the shortest accepted search term after trimming.
	MinQueryLength = 2
	defaultLimit   = 10
	maxLimit       = 50
)

type CitizenSource interface {
	SearchCitizens(ctx context.Context, term string, limit int) ([]identity.User, error)
	Refs(ctx context.Context, ids []string) (map[string]identity.Ref, error)
}

type SchemeSource interface {
	Search(ctx context.Context, term string, limit int) ([]scheme.Scheme, error)
}

type ComplaintSource interface {
	Search(ctx context.Context, term string, citizenIDs []string, limit int) ([]complaint.Complaint, error)
}

type CertificateSource interface {
	Search(ctx context.Context, term string, citizenIDs []string, limit int) ([]certificate.Certificate, error)
}

type NoticeSource interface {
	Search(ctx context.Context, term string, limit int) ([]notice.Notice, error)
}

// Service fans a single query out across every searchable entity.
type Service struct {
	citizens     CitizenSource
	schemes      SchemeSource
	complaints   ComplaintSource
	certificates CertificateSource
	notices      NoticeSource
}

func NewService(citizens CitizenSource, schemes SchemeSource, complaints ComplaintSource, certificates CertificateSource, notices NoticeSource) *Service {
	return &Service{
		citizens:     citizens,
		schemes:      schemes,
		complaints:   complaints,
		certificates: certificates,
		notices:      notices,
	}
}

type CitizenHit struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Type      string    `json:"_type"`
}

type SchemeHit struct {
	ID                string `json:"id"`
	SchemeName        string `json:"scheme_name"`
	Description       string `json:"description"`
	IsActive          bool   `json:"is_active"`
	TotalApplications int    `json:"total_applications"`
	Type              string `json:"_type"`
}

type ComplaintHit struct {
	complaint.Complaint
	Type string `json:"_type"`
}

type CertificateHit struct {
	certificate.Certificate
	Type string `json:"_type"`
}

type NoticeHit struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	NoticeType  string    `json:"notice_type"`
	Priority    string    `json:"priority"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Type        string    `json:"_type"`
}

type Results struct {
	Citizens     []CitizenHit     `json:"citizens"`
	Schemes      []SchemeHit      `json:"schemes"`
	Complaints   []ComplaintHit   `json:"complaints"`
	Certificates []CertificateHit `json:"certificates"`
	Notices      []NoticeHit      `json:"notices"`
}

type Response struct {
	Query      string  `json:"query"`
	Results    Results `json:"results"`
	TotalCount int     `json:"totalCount"`
}

// Search runs the global lookup. Every category is always present in the
// response, even when empty.
func (s *Service) Search(ctx context.Context, query string, limit int) (Response, error) {
	term := strings.TrimSpace(query)
	if len(term) < MinQueryLength {
		return Response{}, dErrors.New(dErrors.CodeBadRequest, "Search query must be at least 2 characters")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	// Citizens matched by name feed the complaint and certificate lookups so
	// owner-name hits surface there too. Email/mobile matches list the
	// citizen only, not their rows.
	citizens, err := s.citizens.SearchCitizens(ctx, term, limit)
	if err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInternal, "search failed")
	}
	citizenIDs := make([]string, 0, len(citizens))
	for _, c := range citizens {
		if strings.Contains(strings.ToLower(c.FullName), strings.ToLower(term)) {
			citizenIDs = append(citizenIDs, c.ID)
		}
	}

	var (
		schemes    []scheme.Scheme
		complaints []complaint.Complaint
		certs      []certificate.Certificate
		notices    []notice.Notice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { schemes, err = s.schemes.Search(gctx, term, limit); return })
	g.Go(func() (err error) { complaints, err = s.complaints.Search(gctx, term, citizenIDs, limit); return })
	g.Go(func() (err error) { certs, err = s.certificates.Search(gctx, term, citizenIDs, limit); return })
	g.Go(func() (err error) { notices, err = s.notices.Search(gctx, term, limit); return })
	if err := g.Wait(); err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInternal, "search failed")
	}

	if err := s.attachOwners(ctx, complaints, certs); err != nil {
		return Response{}, err
	}

	results := Results{
		Citizens:     make([]CitizenHit, 0, len(citizens)),
		Schemes:      make([]SchemeHit, 0, len(schemes)),
		Complaints:   make([]ComplaintHit, 0, len(complaints)),
		Certificates: make([]CertificateHit, 0, len(certs)),
		Notices:      make([]NoticeHit, 0, len(notices)),
	}
	for _, c := range citizens {
		results.Citizens = append(results.Citizens, CitizenHit{
			ID:        c.ID,
			FullName:  c.FullName,
			Email:     c.Email,
			Mobile:    c.Mobile,
			Role:      string(c.Role),
			CreatedAt: c.CreatedAt,
			Type:      "citizen",
		})
	}
	for _, sc := range schemes {
		results.Schemes = append(results.Schemes, SchemeHit{
			ID:                sc.ID,
			SchemeName:        sc.SchemeName,
			Description:       sc.Description,
			IsActive:          sc.IsActive,
			TotalApplications: sc.TotalApplications,
			Type:              "scheme",
		})
	}
	for _, c := range complaints {
		results.Complaints = append(results.Complaints, ComplaintHit{Complaint: c, Type: "complaint"})
	}
	for _, c := range certs {
		results.Certificates = append(results.Certificates, CertificateHit{Certificate: c, Type: "certificate"})
	}
	for _, n := range notices {
		results.Notices = append(results.Notices, NoticeHit{
			ID:          n.ID,
			Title:       n.Title,
			NoticeType:  n.NoticeType,
			Priority:    n.Priority,
			IsPublished: n.IsPublished,
			CreatedAt:   n.CreatedAt,
			Type:        "notice",
		})
	}

	return Response{
		Query:      term,
		Results:    results,
		TotalCount: len(citizens) + len(schemes) + len(complaints) + len(certs) + len(notices),
	}, nil
}

func (s *Service) attachOwners(ctx context.Context, complaints []complaint.Complaint, certs []certificate.Certificate) error {
	ids := make([]string, 0, len(complaints)+len(certs))
	seen := make(map[string]struct{})
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
	}
	for _, c := range certs {
		add(c.CitizenID)
	}
	refs, err := s.citizens.Refs(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "search failed")
	}
	for i := range complaints {
		if ref, ok := refs[complaints[i].CitizenID]; ok {
			r := ref
			complaints[i].Citizen = &r
		}
	}
	for i := range certs {
		if ref, ok := refs[certs[i].CitizenID]; ok {
			r := ref
			certs[i].Citizen = &r
		}
	}
	return nil
}
