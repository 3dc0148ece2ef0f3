package dashboard

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/identity"
	"panchayat/internal/notice"
	"panchayat/internal/revenue"
	"panchayat/internal/scheme"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/requestcontext"
)

type complaintLister interface {
	List(ctx context.Context, citizenID string, limit int) ([]complaint.Complaint, error)
}

type certificateLister interface {
	List(ctx context.Context, citizenID string, limit int) ([]certificate.Certificate, error)
}

type schemeLister interface {
	List(ctx context.Context) ([]scheme.Scheme, error)
}

type revenueLister interface {
	List(ctx context.Context, limit int) ([]revenue.Record, error)
}

type noticeCounter interface {
	List(ctx context.Context, publishedOnly bool) ([]notice.Notice, error)
}

// exportCap bounds each dataset in the analytics export.
const exportCap = 500

// Export is the full analytics download: every dataset plus the filename the
// handler should suggest.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type exportData struct {
	Citizens     []identity.User           `json:"citizens"`
	Complaints   []complaint.Complaint     `json:"complaints"`
	Certificates []certificate.Certificate `json:"certificates"`
	Schemes      []scheme.Scheme           `json:"schemes"`
	Revenue      []revenue.Record          `json:"revenue"`
	ExportedAt   time.Time                 `json:"exportedAt"`
}

// ExportAnalytics gathers every dataset and renders it as CSV or JSON.
// Unknown formats fall back to JSON.
func (s *Service) ExportAnalytics(ctx context.Context, format string) (Export, error) {
	now := requestcontext.Now(ctx)
	data := exportData{ExportedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { data.Citizens, err = s.citizens.ListByRole(gctx, identity.RoleCitizen); return })
	g.Go(func() (err error) { data.Complaints, err = s.exportComplaints.List(gctx, "", exportCap); return })
	g.Go(func() (err error) { data.Certificates, err = s.exportCertificates.List(gctx, "", exportCap); return })
	g.Go(func() (err error) { data.Schemes, err = s.exportSchemes.List(gctx); return })
	g.Go(func() (err error) { data.Revenue, err = s.exportRevenues.List(gctx, exportCap); return })
	if err := g.Wait(); err != nil {
		return Export{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather export data")
	}

	names, err := s.citizenNames(ctx, data.Complaints, data.Certificates)
	if err != nil {
		return Export{}, err
	}

	stamp := now.Format("2006-01-02")
	if format == "csv" {
		return Export{
			Filename:    "panchayat-analytics-" + stamp + ".csv",
			ContentType: "text/csv",
			Body:        renderCSV(data, names),
		}, nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return Export{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode export")
	}
	return Export{
		Filename:    "panchayat-analytics-" + stamp + ".json",
		ContentType: "application/json",
		Body:        body,
	}, nil
}

func (s *Service) citizenNames(ctx context.Context, complaints []complaint.Complaint, certs []certificate.Certificate) (map[string]identity.Ref, error) {
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
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve citizen names")
	}
	return refs, nil
}

func renderCSV(data exportData, names map[string]identity.Ref) []byte {
	var b strings.Builder

	b.WriteString("=== CITIZENS ===\n")
	b.WriteString("Name,Email,Mobile,Joined,Active\n")
	for _, c := range data.Citizens {
		writeRow(&b, c.FullName, c.Email, c.Mobile, c.CreatedAt.UTC().Format(time.RFC3339), strconv.FormatBool(c.IsActive))
	}

	b.WriteString("\n=== COMPLAINTS ===\n")
	b.WriteString("Number,Citizen,Type,Subject,Status,Priority,Submitted\n")
	for _, c := range data.Complaints {
		writeRow(&b, c.ComplaintNumber, names[c.CitizenID].FullName, c.ComplaintType, c.Subject,
			c.Status, c.Priority, c.SubmittedAt.UTC().Format(time.RFC3339))
	}

	b.WriteString("\n=== CERTIFICATES ===\n")
	b.WriteString("App Number,Citizen,Type,Status,Submitted,Processed\n")
	for _, c := range data.Certificates {
		processed := ""
		if c.ProcessedAt != nil {
			processed = c.ProcessedAt.UTC().Format(time.RFC3339)
		}
		writeRow(&b, c.ApplicationNumber, names[c.CitizenID].FullName, c.CertificateType, c.Status,
			c.SubmittedAt.UTC().Format(time.RFC3339), processed)
	}

	b.WriteString("\n=== SCHEMES ===\n")
	b.WriteString("Name,Active,Total Applications,Approved,Allocated Funds,Utilized Funds\n")
	for _, sc := range data.Schemes {
		writeRow(&b, sc.SchemeName, strconv.FormatBool(sc.IsActive), strconv.Itoa(sc.TotalApplications),
			strconv.Itoa(sc.ApprovedApplications), formatAmount(sc.AllocatedFunds), formatAmount(sc.UtilizedFunds))
	}

	b.WriteString("\n=== REVENUE ===\n")
	b.WriteString("Amount,Category,Description,Collected At\n")
	for _, r := range data.Revenue {
		writeRow(&b, formatAmount(r.Amount), r.Category, r.Description, r.CollectedAt.UTC().Format(time.RFC3339))
	}

	return []byte(b.String())
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
