package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"panchayat/internal/identity"
	"panchayat/internal/notice"
	dErrors "panchayat/pkg/domain-errors"
)

type UserCounts struct {
	Total                int `json:"total"`
	Admins               int `json:"admins"`
	Clerks               int `json:"clerks"`
	Citizens             int `json:"citizens"`
	PendingRegistrations int `json:"pendingRegistrations"`
}

type ComplaintCounts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}

type CertificateCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type SchemeCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type NoticeCounts struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Draft     int `json:"draft"`
}

type RevenueTotal struct {
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
}

type Report struct {
	Users        UserCounts        `json:"users"`
	Complaints   ComplaintCounts   `json:"complaints"`
	Certificates CertificateCounts `json:"certificates"`
	Schemes      SchemeCounts      `json:"schemes"`
	Notices      NoticeCounts      `json:"notices"`
	Revenue      RevenueTotal      `json:"revenue"`
}

// Report aggregates counts across every entity for the admin reports page.
func (s *Service) Report(ctx context.Context) (Report, error) {
	var (
		byRole               map[identity.Role]int
		complaintsByStatus   map[string]int
		certsByStatus        map[string]int
		totalSchemes         int
		activeSchemes        int
		notices              []notice.Notice
		totalRevenue         float64
		pendingRegistrations int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { byRole, err = s.citizens.CountByRole(gctx); return })
	g.Go(func() (err error) { complaintsByStatus, err = s.complaints.CountByStatus(gctx); return })
	g.Go(func() (err error) { certsByStatus, err = s.certificates.CountByStatus(gctx); return })
	g.Go(func() error {
		list, err := s.exportSchemes.List(gctx)
		if err != nil {
			return err
		}
		totalSchemes = len(list)
		for _, sc := range list {
			if sc.IsActive {
				activeSchemes++
			}
		}
		return nil
	})
	g.Go(func() (err error) { notices, err = s.exportNotices.List(gctx, false); return })
	g.Go(func() (err error) { totalRevenue, err = s.revenues.SumAll(gctx); return })
	g.Go(func() (err error) { pendingRegistrations, err = s.registrations.CountByStatus(gctx, "pending"); return })
	if err := g.Wait(); err != nil {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute report summary")
	}

	totalUsers := 0
	for _, n := range byRole {
		totalUsers += n
	}
	totalComplaints := 0
	for _, n := range complaintsByStatus {
		totalComplaints += n
	}
	totalCerts := 0
	for _, n := range certsByStatus {
		totalCerts += n
	}
	publishedNotices := 0
	for _, n := range notices {
		if n.IsPublished {
			publishedNotices++
		}
	}

	return Report{
		Users: UserCounts{
			Total:                totalUsers,
			Admins:               byRole[identity.RoleAdmin],
			Clerks:               byRole[identity.RoleClerk],
			Citizens:             byRole[identity.RoleCitizen],
			PendingRegistrations: pendingRegistrations,
		},
		Complaints: ComplaintCounts{
			Total:      totalComplaints,
			Open:       complaintsByStatus["open"],
			InProgress: complaintsByStatus["in_progress"],
			Resolved:   complaintsByStatus["resolved"],
			Closed:     complaintsByStatus["closed"],
		},
		Certificates: CertificateCounts{
			Total:    totalCerts,
			Pending:  certsByStatus["pending"],
			Approved: certsByStatus["approved"],
			Rejected: certsByStatus["rejected"],
		},
		Schemes: SchemeCounts{
			Total:    totalSchemes,
			Active:   activeSchemes,
			Inactive: totalSchemes - activeSchemes,
		},
		Notices: NoticeCounts{
			Total:     len(notices),
			Published: publishedNotices,
			Draft:     len(notices) - publishedNotices,
		},
		Revenue: RevenueTotal{
			Total:     totalRevenue,
			Formatted: FormatRevenue(totalRevenue),
		},
	}, nil
}
