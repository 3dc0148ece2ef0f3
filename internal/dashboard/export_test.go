package dashboard

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/identity"
	"panchayat/internal/revenue"
	"panchayat/pkg/requestcontext"
)

func (s *DashboardServiceSuite) TestExportAnalyticsCSV() {
	joined := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	citizen := identity.User{
		ID:        "citizen-1",
		Email:     "ram@gram.in",
		Role:      identity.RoleCitizen,
		FullName:  `Ram "Bhaiya" Kumar`,
		Mobile:    "9876543210",
		IsActive:  true,
		CreatedAt: joined,
	}
	s.Require().NoError(s.users.Create(s.ctx, citizen))

	submitted := time.Date(2026, time.February, 1, 9, 30, 0, 0, time.UTC)
	s.Require().NoError(s.complaints.Create(s.ctx, complaint.Complaint{
		ID:              "comp-1",
		ComplaintNumber: "COMP-2026-1000",
		CitizenID:       citizen.ID,
		ComplaintType:   "water_supply",
		Subject:         "No water since Monday",
		Priority:        complaint.PriorityHigh,
		Status:          complaint.StatusOpen,
		SubmittedAt:     submitted,
	}))

	processed := time.Date(2026, time.February, 20, 14, 0, 0, 0, time.UTC)
	s.Require().NoError(s.certificates.Create(s.ctx, certificate.Certificate{
		ID:                "cert-1",
		ApplicationNumber: "CERT-2026-1000",
		CitizenID:         citizen.ID,
		CertificateType:   "income",
		Status:            certificate.StatusApproved,
		SubmittedAt:       submitted,
		ProcessedAt:       &processed,
	}))

	s.Require().NoError(s.revenues.Create(s.ctx, revenue.Record{
		ID:          "rev-1",
		Amount:      45000.5,
		Category:    "tax",
		Description: "Property tax",
		Month:       2,
		Year:        2026,
		CollectedAt: submitted,
	}))

	export, err := s.service.ExportAnalytics(s.ctx, "csv")
	s.Require().NoError(err)

	s.Equal("panchayat-analytics-2026-03-15.csv", export.Filename)
	s.Equal("text/csv", export.ContentType)

	body := string(export.Body)
	for _, section := range []string{"=== CITIZENS ===", "=== COMPLAINTS ===", "=== CERTIFICATES ===", "=== SCHEMES ===", "=== REVENUE ==="} {
		s.Contains(body, section)
	}

	// Embedded quotes are doubled, every field is quoted.
	s.Contains(body, `"Ram ""Bhaiya"" Kumar","ram@gram.in","9876543210","2026-01-05T08:00:00Z","true"`)
	s.Contains(body, `"COMP-2026-1000","Ram ""Bhaiya"" Kumar","water_supply","No water since Monday","open","high","2026-02-01T09:30:00Z"`)
	s.Contains(body, `"CERT-2026-1000","Ram ""Bhaiya"" Kumar","income","approved","2026-02-01T09:30:00Z","2026-02-20T14:00:00Z"`)
	s.Contains(body, `"45000.5","tax","Property tax","2026-02-01T09:30:00Z"`)

	// Sections appear in a fixed order.
	s.Less(strings.Index(body, "=== CITIZENS ==="), strings.Index(body, "=== COMPLAINTS ==="))
	s.Less(strings.Index(body, "=== SCHEMES ==="), strings.Index(body, "=== REVENUE ==="))
}

func (s *DashboardServiceSuite) TestExportAnalyticsJSON() {
	s.Require().NoError(s.users.Create(s.ctx, identity.User{
		ID:       "citizen-1",
		Email:    "ram@gram.in",
		Role:     identity.RoleCitizen,
		FullName: "Ram Kumar",
		IsActive: true,
	}))

	s.Run("json format", func() {
		export, err := s.service.ExportAnalytics(s.ctx, "json")
		s.Require().NoError(err)
		s.Equal("panchayat-analytics-2026-03-15.json", export.Filename)
		s.Equal("application/json", export.ContentType)

		var decoded map[string]json.RawMessage
		s.Require().NoError(json.Unmarshal(export.Body, &decoded))
		for _, key := range []string{"citizens", "complaints", "certificates", "schemes", "revenue", "exportedAt"} {
			s.Contains(decoded, key)
		}
	})

	s.Run("unknown format falls back to json", func() {
		export, err := s.service.ExportAnalytics(s.ctx, "xlsx")
		s.Require().NoError(err)
		s.Equal("application/json", export.ContentType)
		s.True(strings.HasSuffix(export.Filename, ".json"))
	})

	s.Run("filename tracks the request time", func() {
		ctx := requestcontext.WithTime(context.Background(), time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
		export, err := s.service.ExportAnalytics(ctx, "csv")
		s.Require().NoError(err)
		s.Equal("panchayat-analytics-2026-04-01.csv", export.Filename)
	})
}
