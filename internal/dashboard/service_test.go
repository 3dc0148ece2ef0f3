package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/identity"
	"panchayat/internal/notice"
	"panchayat/internal/registration"
	"panchayat/internal/revenue"
	"panchayat/internal/scheme"
	"panchayat/pkg/requestcontext"
)

type DashboardServiceSuite struct {
	suite.Suite
	users         *identity.MemoryStore
	certificates  *certificate.MemoryStore
	complaints    *complaint.MemoryStore
	schemes       *scheme.MemoryStore
	registrations *registration.MemoryStore
	revenues      *revenue.MemoryStore
	notices       *notice.MemoryStore
	service       *Service
	now           time.Time
	ctx           context.Context
}

func TestDashboardServiceSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceSuite))
}

func (s *DashboardServiceSuite) SetupTest() {
	s.users = identity.NewMemoryStore()
	s.certificates = certificate.NewMemoryStore()
	s.complaints = complaint.NewMemoryStore()
	s.schemes = scheme.NewMemoryStore()
	s.registrations = registration.NewMemoryStore()
	s.revenues = revenue.NewMemoryStore()
	s.notices = notice.NewMemoryStore()
	s.service = NewService(
		s.users, s.certificates, s.complaints, s.schemes, s.registrations, s.revenues,
		s.complaints, s.certificates, s.schemes, s.revenues, s.notices,
	)
	s.now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *DashboardServiceSuite) addCitizen(createdAt time.Time) identity.User {
	user := identity.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@gram.in",
		Role:      identity.RoleCitizen,
		FullName:  "Citizen",
		IsActive:  true,
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *DashboardServiceSuite) addRevenue(amount float64, month, year int) {
	s.Require().NoError(s.revenues.Create(s.ctx, revenue.Record{
		ID:          uuid.NewString(),
		Amount:      amount,
		Category:    "tax",
		Month:       month,
		Year:        year,
		CollectedAt: time.Date(year, time.Month(month), 10, 0, 0, 0, 0, time.UTC),
	}))
}

func (s *DashboardServiceSuite) addCertificate(citizenID, status string, processedAt *time.Time) {
	s.Require().NoError(s.certificates.Create(s.ctx, certificate.Certificate{
		ID:          uuid.NewString(),
		CitizenID:   citizenID,
		Status:      status,
		SubmittedAt: s.now.AddDate(0, -3, 0),
		ProcessedAt: processedAt,
	}))
}

func (s *DashboardServiceSuite) addComplaint(status string, submittedAt time.Time, resolvedAt *time.Time) {
	s.Require().NoError(s.complaints.Create(s.ctx, complaint.Complaint{
		ID:          uuid.NewString(),
		CitizenID:   "citizen-1",
		Status:      status,
		Priority:    complaint.PriorityMedium,
		SubmittedAt: submittedAt,
		ResolvedAt:  resolvedAt,
	}))
}

func (s *DashboardServiceSuite) addApplication(status string, appliedAt time.Time, reviewedAt *time.Time) {
	s.Require().NoError(s.schemes.CreateApplication(s.ctx, scheme.Application{
		ID:         uuid.NewString(),
		SchemeID:   "scheme-1",
		CitizenID:  "citizen-1",
		Status:     status,
		AppliedAt:  appliedAt,
		ReviewedAt: reviewedAt,
	}))
}

func (s *DashboardServiceSuite) TestSummary() {
	feb := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	// Revenue: 10K in January, 40K in February, 50K in March.
	s.addRevenue(10000, 1, 2026)
	s.addRevenue(40000, 2, 2026)
	s.addRevenue(50000, 3, 2026)

	// Citizens: two joined in January, three in February.
	s.addCitizen(jan)
	s.addCitizen(jan)
	s.addCitizen(feb)
	s.addCitizen(feb)
	s.addCitizen(feb)

	// Approvals: two certificates (one processed in February) plus one
	// scheme application reviewed in February.
	s.addCertificate("citizen-1", certificate.StatusApproved, &feb)
	s.addCertificate("citizen-2", certificate.StatusApproved, &jan)
	s.addCertificate("citizen-1", certificate.StatusPending, nil)
	s.addApplication(scheme.ApplicationApproved, jan, &feb)

	// Alerts: two open complaints (one submitted in February) and one
	// pending registration.
	s.addComplaint(complaint.StatusOpen, feb, nil)
	s.addComplaint(complaint.StatusOpen, s.now.AddDate(0, 0, -2), nil)
	s.addComplaint(complaint.StatusResolved, jan, &feb)
	s.Require().NoError(s.registrations.Create(s.ctx, registration.Request{
		ID:          uuid.NewString(),
		Email:       "pending@gram.in",
		Status:      registration.StatusPending,
		SubmittedAt: s.now,
	}))

	summary, err := s.service.Summary(s.ctx)
	s.Require().NoError(err)

	s.Equal(float64(100000), summary.TotalRevenue)
	s.Equal("₹1.0L", summary.TotalRevenueFormatted)
	s.Equal(5, summary.TotalCitizens)
	s.Equal(3, summary.TotalApprovals)
	s.Equal(3, summary.TotalAlerts)

	s.InDelta(25.0, summary.PercentageChanges.Revenue, 0.001)
	s.InDelta(50.0, summary.PercentageChanges.Citizens, 0.001)
	s.InDelta(50.0, summary.PercentageChanges.Approvals, 0.001)
	s.InDelta(200.0, summary.PercentageChanges.Alerts, 0.001)
}

func (s *DashboardServiceSuite) TestSummaryWithNoPriorActivity() {
	// A first month of operation: no February revenue, so the denominator
	// floors to 1, and every other comparison stays at zero.
	s.addRevenue(500, 3, 2026)

	summary, err := s.service.Summary(s.ctx)
	s.Require().NoError(err)

	s.Equal(float64(500), summary.TotalRevenue)
	s.InDelta(49900.0, summary.PercentageChanges.Revenue, 0.001)
	s.Zero(summary.PercentageChanges.Citizens)
	s.Zero(summary.PercentageChanges.Approvals)
	s.Zero(summary.PercentageChanges.Alerts)
}

func (s *DashboardServiceSuite) TestPerformance() {
	feb := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	s.addComplaint(complaint.StatusOpen, mar, nil)
	s.addComplaint(complaint.StatusResolved, mar, &mar)
	s.addApplication(scheme.ApplicationApproved, feb, &mar)
	s.addApplication(scheme.ApplicationPending, feb, nil)
	s.addCertificate("citizen-1", certificate.StatusApproved, &feb)
	s.addRevenue(12000, 1, 2026)

	perf, err := s.service.Performance(s.ctx)
	s.Require().NoError(err)

	s.Equal(2026, perf.Year)
	s.Equal([]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}, perf.Labels)
	s.Require().Len(perf.ComplaintsTrend, 12)

	s.Equal(2, perf.ComplaintsTrend[2].Total)
	s.Equal(1, perf.ComplaintsTrend[2].Resolved)
	s.Zero(perf.ComplaintsTrend[1].Total)

	s.Equal(2, perf.SchemeApplicationsTrend[1].Total)
	s.Equal(1, perf.SchemeApplicationsTrend[1].Approved)

	// February holds the certificate approval, March the application review.
	s.Equal(1, perf.ApprovalsTrend[1].Total)
	s.Equal(1, perf.ApprovalsTrend[2].Total)

	s.Equal(float64(12000), perf.RevenueTrend[0].Total)
	s.Zero(perf.RevenueTrend[3].Total)
}

func (s *DashboardServiceSuite) TestSystemIntegrity() {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	s.addComplaint(complaint.StatusOpen, jan, nil)
	s.addComplaint(complaint.StatusResolved, jan, &jan)
	s.addComplaint(complaint.StatusClosed, jan, &jan)
	s.addComplaint(complaint.StatusInProgress, jan, nil)

	s.Require().NoError(s.schemes.Create(s.ctx, scheme.Scheme{
		ID:             uuid.NewString(),
		SchemeName:     "PM Awas Yojana",
		AllocatedFunds: 100000,
		UtilizedFunds:  25000,
		CreatedAt:      jan,
	}))

	citizen := s.addCitizen(jan)
	s.addCitizen(jan)
	s.addCertificate(citizen.ID, certificate.StatusApproved, nil)
	s.addCertificate(citizen.ID, certificate.StatusPending, nil)

	integrity, err := s.service.SystemIntegrity(s.ctx)
	s.Require().NoError(err)

	s.Equal(50, integrity.ComplaintResolvingRate)
	s.Equal(25, integrity.SchemeUtilizationRate)
	s.Equal(50, integrity.DigitizationRate)
	s.Equal(50, integrity.MonthlyGoalProgress)

	s.Equal(4, integrity.Details.TotalComplaints)
	s.Equal(2, integrity.Details.ResolvedComplaints)
	s.Equal(float64(100000), integrity.Details.AllocatedFunds)
	s.Equal(float64(25000), integrity.Details.UtilizedFunds)
	s.Equal(1, integrity.Details.PendingCerts)
	s.Equal(1, integrity.Details.PendingComplaints)
}

func (s *DashboardServiceSuite) TestSystemIntegrityGoalIsCapped() {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	citizen := s.addCitizen(jan)

	// More distinct applicants than registered citizens can happen after
	// account deactivation cleanup; the goal gauge still tops out at 100.
	s.addCertificate(citizen.ID, certificate.StatusPending, nil)
	s.addCertificate("departed-citizen", certificate.StatusPending, nil)

	integrity, err := s.service.SystemIntegrity(s.ctx)
	s.Require().NoError(err)
	s.Equal(200, integrity.DigitizationRate)
	s.Equal(100, integrity.MonthlyGoalProgress)
}

func (s *DashboardServiceSuite) TestReport() {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	s.addCitizen(jan)
	s.addCitizen(jan)
	s.Require().NoError(s.users.Create(s.ctx, identity.User{
		ID: "admin-1", Email: "admin@gram.in", Role: identity.RoleAdmin,
		FullName: "Sunita Patel", IsActive: true, CreatedAt: jan,
	}))

	s.addComplaint(complaint.StatusOpen, jan, nil)
	s.addComplaint(complaint.StatusResolved, jan, &jan)
	s.addCertificate("citizen-1", certificate.StatusApproved, nil)
	s.addCertificate("citizen-1", certificate.StatusPending, nil)
	s.addRevenue(45000, 1, 2026)

	s.Require().NoError(s.schemes.Create(s.ctx, scheme.Scheme{
		ID: "scheme-1", SchemeName: "MGNREGA", IsActive: true, CreatedAt: jan,
	}))
	s.Require().NoError(s.schemes.Create(s.ctx, scheme.Scheme{
		ID: "scheme-2", SchemeName: "Old Drive", IsActive: false, CreatedAt: jan,
	}))
	s.Require().NoError(s.notices.Create(s.ctx, notice.Notice{
		ID: "notice-1", Title: "Published", IsPublished: true, CreatedAt: jan,
	}))
	s.Require().NoError(s.notices.Create(s.ctx, notice.Notice{
		ID: "notice-2", Title: "Draft", CreatedAt: jan,
	}))
	s.Require().NoError(s.registrations.Create(s.ctx, registration.Request{
		ID: "req-1", Email: "pending@gram.in", Status: registration.StatusPending, SubmittedAt: jan,
	}))

	report, err := s.service.Report(s.ctx)
	s.Require().NoError(err)

	s.Equal(3, report.Users.Total)
	s.Equal(1, report.Users.Admins)
	s.Equal(2, report.Users.Citizens)
	s.Equal(1, report.Users.PendingRegistrations)

	s.Equal(2, report.Complaints.Total)
	s.Equal(1, report.Complaints.Open)
	s.Equal(1, report.Complaints.Resolved)

	s.Equal(2, report.Certificates.Total)
	s.Equal(1, report.Certificates.Approved)
	s.Equal(1, report.Certificates.Pending)

	s.Equal(2, report.Schemes.Total)
	s.Equal(1, report.Schemes.Active)
	s.Equal(1, report.Schemes.Inactive)

	s.Equal(1, report.Notices.Published)
	s.Equal(1, report.Notices.Draft)

	s.Equal(float64(45000), report.Revenue.Total)
	s.Equal("₹45.0K", report.Revenue.Formatted)
}

func TestFormatRevenue(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{150000, "₹1.5L"},
		{100000, "₹1.0L"},
		{45000, "₹45.0K"},
		{1234.5, "₹1.2K"},
		{500, "₹500"},
		{0, "₹0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatRevenue(tc.amount), "amount %v", tc.amount)
	}
}
