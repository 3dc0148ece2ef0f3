package dashboard

import (
	"context"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"panchayat/internal/identity"
	"panchayat/internal/scheme"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/requestcontext"
)

// The dashboard reads aggregates from every feature store. Each source
// interface carries only the methods this package consumes.

type CitizenSource interface {
	CountCitizens(ctx context.Context, activeOnly bool) (int, error)
	CountCitizensCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountByRole(ctx context.Context) (map[identity.Role]int, error)
	ListByRole(ctx context.Context, role identity.Role) ([]identity.User, error)
	Refs(ctx context.Context, ids []string) (map[string]identity.Ref, error)
}

type CertificateSource interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountApprovedProcessedBetween(ctx context.Context, from, to time.Time) (int, error)
	DistinctCitizens(ctx context.Context) (int, error)
}

type ComplaintSource interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountSubmittedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountResolvedSubmittedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountOpenSubmittedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type SchemeSource interface {
	FundTotals(ctx context.Context) (scheme.FundTotals, error)
	CountApplicationsByStatus(ctx context.Context) (map[string]int, error)
	CountApprovedReviewedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountApplicationsAppliedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountApprovedAppliedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type RegistrationSource interface {
	CountByStatus(ctx context.Context, status string) (int, error)
}

type RevenueSource interface {
	SumAll(ctx context.Context) (float64, error)
	SumForMonth(ctx context.Context, month, year int) (float64, error)
}

type Service struct {
	citizens      CitizenSource
	certificates  CertificateSource
	complaints    ComplaintSource
	schemes       SchemeSource
	registrations RegistrationSource
	revenues      RevenueSource

	exportComplaints   complaintLister
	exportCertificates certificateLister
	exportSchemes      schemeLister
	exportRevenues     revenueLister
	exportNotices      noticeCounter
}

func NewService(
	citizens CitizenSource,
	certificates CertificateSource,
	complaints ComplaintSource,
	schemes SchemeSource,
	registrations RegistrationSource,
	revenues RevenueSource,
	exportComplaints complaintLister,
	exportCertificates certificateLister,
	exportSchemes schemeLister,
	exportRevenues revenueLister,
	exportNotices noticeCounter,
) *Service {
	return &Service{
		citizens:           citizens,
		certificates:       certificates,
		complaints:         complaints,
		schemes:            schemes,
		registrations:      registrations,
		revenues:           revenues,
		exportComplaints:   exportComplaints,
		exportCertificates: exportCertificates,
		exportSchemes:      exportSchemes,
		exportRevenues:     exportRevenues,
		exportNotices:      exportNotices,
	}
}

type Changes struct {
	Revenue   float64 `json:"revenue"`
	Citizens  float64 `json:"citizens"`
	Approvals float64 `json:"approvals"`
	Alerts    float64 `json:"alerts"`
}

type Summary struct {
	TotalRevenue          float64 `json:"totalRevenue"`
	TotalRevenueFormatted string  `json:"totalRevenueFormatted"`
	TotalCitizens         int     `json:"totalCitizens"`
	TotalApprovals        int     `json:"totalApprovals"`
	TotalAlerts           int     `json:"totalAlerts"`
	PercentageChanges     Changes `json:"percentageChanges"`
}

// Summary computes the headline cards. The month-over-month comparisons use
// calendar month windows; the previous revenue total is floored to 1 so the
// percentage is always defined.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	now := requestcontext.Now(ctx)
	currentMonth := int(now.Month())
	currentYear := now.Year()
	lastMonth := currentMonth - 1
	lastMonthYear := currentYear
	if currentMonth == 1 {
		lastMonth = 12
		lastMonthYear = currentYear - 1
	}

	lastMonthStart := monthStart(lastMonthYear, lastMonth, now.Location())
	currentMonthStart := monthStart(currentYear, currentMonth, now.Location())
	monthBeforeLastStart := monthStart(lastMonthYear, lastMonth-1, now.Location())

	var (
		totalRevenue, lastMonthRevenue, currMonthRevenue     float64
		totalCitizens, lastMonthCitizens, prevMonthCitizens  int
		certsByStatus, appsByStatus                          map[string]int
		prevApprovedCerts, prevApprovedApps                  int
		complaintsByStatus                                   map[string]int
		pendingRegistrations, prevOpenComplaints             int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { totalRevenue, err = s.revenues.SumAll(gctx); return })
	g.Go(func() (err error) { lastMonthRevenue, err = s.revenues.SumForMonth(gctx, lastMonth, lastMonthYear); return })
	g.Go(func() (err error) { currMonthRevenue, err = s.revenues.SumForMonth(gctx, currentMonth, currentYear); return })
	g.Go(func() (err error) { totalCitizens, err = s.citizens.CountCitizens(gctx, true); return })
	g.Go(func() (err error) {
		lastMonthCitizens, err = s.citizens.CountCitizensCreatedBetween(gctx, lastMonthStart, currentMonthStart)
		return
	})
	g.Go(func() (err error) {
		prevMonthCitizens, err = s.citizens.CountCitizensCreatedBetween(gctx, monthBeforeLastStart, lastMonthStart)
		return
	})
	g.Go(func() (err error) { certsByStatus, err = s.certificates.CountByStatus(gctx); return })
	g.Go(func() (err error) { appsByStatus, err = s.schemes.CountApplicationsByStatus(gctx); return })
	g.Go(func() (err error) {
		prevApprovedCerts, err = s.certificates.CountApprovedProcessedBetween(gctx, lastMonthStart, currentMonthStart)
		return
	})
	g.Go(func() (err error) {
		prevApprovedApps, err = s.schemes.CountApprovedReviewedBetween(gctx, lastMonthStart, currentMonthStart)
		return
	})
	g.Go(func() (err error) { complaintsByStatus, err = s.complaints.CountByStatus(gctx); return })
	g.Go(func() (err error) { pendingRegistrations, err = s.registrations.CountByStatus(gctx, "pending"); return })
	g.Go(func() (err error) {
		prevOpenComplaints, err = s.complaints.CountOpenSubmittedBetween(gctx, lastMonthStart, currentMonthStart)
		return
	})
	if err := g.Wait(); err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute dashboard summary")
	}

	revenuePrev := lastMonthRevenue
	if revenuePrev == 0 {
		revenuePrev = 1
	}
	revenueChange := round1((currMonthRevenue - revenuePrev) / revenuePrev * 100)

	var citizenChange float64
	if prevMonthCitizens > 0 {
		citizenChange = round1(float64(lastMonthCitizens-prevMonthCitizens) / float64(prevMonthCitizens) * 100)
	}

	totalApprovals := certsByStatus["approved"] + appsByStatus["approved"]
	prevApprovals := prevApprovedCerts + prevApprovedApps
	var approvalsChange float64
	if prevApprovals > 0 {
		approvalsChange = round1(float64(totalApprovals-prevApprovals) / float64(prevApprovals) * 100)
	}

	totalAlerts := complaintsByStatus["open"] + pendingRegistrations
	var alertsChange float64
	if prevOpenComplaints > 0 {
		alertsChange = round1(float64(totalAlerts-prevOpenComplaints) / float64(prevOpenComplaints) * 100)
	}

	return Summary{
		TotalRevenue:          totalRevenue,
		TotalRevenueFormatted: FormatRevenue(totalRevenue),
		TotalCitizens:         totalCitizens,
		TotalApprovals:        totalApprovals,
		TotalAlerts:           totalAlerts,
		PercentageChanges: Changes{
			Revenue:   revenueChange,
			Citizens:  citizenChange,
			Approvals: approvalsChange,
			Alerts:    alertsChange,
		},
	}, nil
}

type ComplaintTrend struct {
	Month    int `json:"month"`
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
}

type ApplicationTrend struct {
	Month    int `json:"month"`
	Total    int `json:"total"`
	Approved int `json:"approved"`
}

type MonthTotal struct {
	Month int `json:"month"`
	Total int `json:"total"`
}

type RevenueTrend struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

type Performance struct {
	Year                    int                `json:"year"`
	Labels                  []string           `json:"labels"`
	ComplaintsTrend         []ComplaintTrend   `json:"complaintsTrend"`
	SchemeApplicationsTrend []ApplicationTrend `json:"schemeApplicationsTrend"`
	ApprovalsTrend          []MonthTotal       `json:"approvalsTrend"`
	RevenueTrend            []RevenueTrend     `json:"revenueTrend"`
}

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Performance returns current-year monthly trends for the admin charts.
func (s *Service) Performance(ctx context.Context) (Performance, error) {
	now := requestcontext.Now(ctx)
	year := now.Year()

	perf := Performance{
		Year:                    year,
		Labels:                  monthLabels,
		ComplaintsTrend:         make([]ComplaintTrend, 12),
		SchemeApplicationsTrend: make([]ApplicationTrend, 12),
		ApprovalsTrend:          make([]MonthTotal, 12),
		RevenueTrend:            make([]RevenueTrend, 12),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 12; i++ {
		month := i + 1
		start := monthStart(year, month, now.Location())
		end := monthStart(year, month+1, now.Location())

		perf.ComplaintsTrend[i].Month = month
		perf.SchemeApplicationsTrend[i].Month = month
		perf.ApprovalsTrend[i].Month = month
		perf.RevenueTrend[i].Month = month

		complaints := &perf.ComplaintsTrend[i]
		g.Go(func() (err error) { complaints.Total, err = s.complaints.CountSubmittedBetween(gctx, start, end); return })
		g.Go(func() (err error) {
			complaints.Resolved, err = s.complaints.CountResolvedSubmittedBetween(gctx, start, end)
			return
		})

		apps := &perf.SchemeApplicationsTrend[i]
		g.Go(func() (err error) { apps.Total, err = s.schemes.CountApplicationsAppliedBetween(gctx, start, end); return })
		g.Go(func() (err error) { apps.Approved, err = s.schemes.CountApprovedAppliedBetween(gctx, start, end); return })

		approvals := &perf.ApprovalsTrend[i]
		g.Go(func() error {
			certs, err := s.certificates.CountApprovedProcessedBetween(gctx, start, end)
			if err != nil {
				return err
			}
			reviewed, err := s.schemes.CountApprovedReviewedBetween(gctx, start, end)
			if err != nil {
				return err
			}
			approvals.Total = certs + reviewed
			return nil
		})

		rev := &perf.RevenueTrend[i]
		g.Go(func() (err error) { rev.Total, err = s.revenues.SumForMonth(gctx, month, year); return })
	}
	if err := g.Wait(); err != nil {
		return Performance{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute performance trends")
	}
	return perf, nil
}

type IntegrityDetails struct {
	TotalComplaints    int     `json:"totalComplaints"`
	ResolvedComplaints int     `json:"resolvedComplaints"`
	AllocatedFunds     float64 `json:"allocatedFunds"`
	UtilizedFunds      float64 `json:"utilizedFunds"`
	PendingCerts       int     `json:"pendingCerts"`
	PendingComplaints  int     `json:"pendingComplaints"`
}

type SystemIntegrity struct {
	ComplaintResolvingRate int              `json:"complaintResolvingRate"`
	SchemeUtilizationRate  int              `json:"schemeUtilizationRate"`
	DigitizationRate       int              `json:"digitizationRate"`
	MonthlyGoalProgress    int              `json:"monthlyGoalProgress"`
	Details                IntegrityDetails `json:"details"`
}

// SystemIntegrity computes the health gauges. All rates are whole percents;
// empty denominators yield 0.
func (s *Service) SystemIntegrity(ctx context.Context) (SystemIntegrity, error) {
	var (
		complaintsByStatus map[string]int
		certsByStatus      map[string]int
		funds              scheme.FundTotals
		totalCitizens      int
		citizensWithCerts  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { complaintsByStatus, err = s.complaints.CountByStatus(gctx); return })
	g.Go(func() (err error) { certsByStatus, err = s.certificates.CountByStatus(gctx); return })
	g.Go(func() (err error) { funds, err = s.schemes.FundTotals(gctx); return })
	g.Go(func() (err error) { totalCitizens, err = s.citizens.CountCitizens(gctx, false); return })
	g.Go(func() (err error) { citizensWithCerts, err = s.certificates.DistinctCitizens(gctx); return })
	if err := g.Wait(); err != nil {
		return SystemIntegrity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute system integrity")
	}

	totalComplaints := 0
	for _, n := range complaintsByStatus {
		totalComplaints += n
	}
	resolvedComplaints := complaintsByStatus["resolved"] + complaintsByStatus["closed"]

	resolvingRate := 0
	if totalComplaints > 0 {
		resolvingRate = roundPercent(float64(resolvedComplaints) / float64(totalComplaints))
	}
	utilizationRate := 0
	if funds.Allocated > 0 {
		utilizationRate = roundPercent(funds.Utilized / funds.Allocated)
	}
	digitizationRate := 0
	if totalCitizens > 0 {
		digitizationRate = roundPercent(float64(citizensWithCerts) / float64(totalCitizens))
	}
	goalProgress := digitizationRate
	if goalProgress > 100 {
		goalProgress = 100
	}

	return SystemIntegrity{
		ComplaintResolvingRate: resolvingRate,
		SchemeUtilizationRate:  utilizationRate,
		DigitizationRate:       digitizationRate,
		MonthlyGoalProgress:    goalProgress,
		Details: IntegrityDetails{
			TotalComplaints:    totalComplaints,
			ResolvedComplaints: resolvedComplaints,
			AllocatedFunds:     funds.Allocated,
			UtilizedFunds:      funds.Utilized,
			PendingCerts:       certsByStatus["pending"],
			PendingComplaints:  complaintsByStatus["open"],
		},
	}, nil
}

// FormatRevenue renders an amount as ₹ with lakh/thousand suffixes.
func FormatRevenue(amount float64) string {
	switch {
	case amount >= 100000:
		return "₹" + strconv.FormatFloat(math.Round(amount/100000*10)/10, 'f', 1, 64) + "L"
	case amount >= 1000:
		return "₹" + strconv.FormatFloat(math.Round(amount/1000*10)/10, 'f', 1, 64) + "K"
	default:
		return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
}

// monthStart handles out-of-range months by normalizing, so month 0 is
// December of the prior year and month 13 is January of the next.
func monthStart(year, month int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func roundPercent(ratio float64) int {
	return int(math.Round(ratio * 100))
}
