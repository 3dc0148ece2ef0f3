package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"panchayat/internal/certificate"
	"panchayat/internal/complaint"
	"panchayat/internal/identity"
	"panchayat/internal/notice"
	"panchayat/internal/platform/config"
	"panchayat/internal/platform/logger"
	"panchayat/internal/registration"
	"panchayat/internal/revenue"
	"panchayat/internal/scheme"
	"panchayat/internal/settings"
	"panchayat/pkg/platform/sentinel"
)

// seed loads a demo dataset into the database: staff and citizen accounts,
// pending registrations, schemes with applications, complaints, certificates,
// notices, a year of revenue rows and the system settings. Every section is
// idempotent; rerunning against a seeded database is a no-op.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required for seeding")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	s := &seeder{
		users:         identity.NewPostgres(db),
		registrations: registration.NewPostgres(db),
		schemes:       scheme.NewPostgres(db),
		complaints:    complaint.NewPostgres(db),
		certificates:  certificate.NewPostgres(db),
		notices:       notice.NewPostgres(db),
		revenues:      revenue.NewPostgres(db),
		settings:      settings.NewPostgres(db),
		log:           log,
	}

	if err := s.run(ctx); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	log.Info("seeding complete")
	log.Info("test credentials",
		"admin", "admin@panchayat.com / admin123",
		"clerk", "clerk1@gram.in / clerk123",
		"citizen", "citizen1@gram.in / citizen123")
}

type seeder struct {
	users         identity.Store
	registrations registration.Store
	schemes       scheme.Store
	complaints    complaint.Store
	certificates  certificate.Store
	notices       notice.Store
	revenues      revenue.Store
	settings      settings.Store
	log           *slog.Logger
}

func (s *seeder) run(ctx context.Context) error {
	byEmail, err := s.seedUsers(ctx)
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}
	if err := s.seedRegistrations(ctx); err != nil {
		return fmt.Errorf("registrations: %w", err)
	}
	admin := byEmail["admin@gram.in"]
	clerk1 := byEmail["clerk1@gram.in"]
	citizens := []identity.User{
		byEmail["citizen1@gram.in"],
		byEmail["citizen2@gram.in"],
		byEmail["citizen3@gram.in"],
		byEmail["citizen4@gram.in"],
		byEmail["citizen5@gram.in"],
	}
	if err := s.seedSchemes(ctx, admin, citizens); err != nil {
		return fmt.Errorf("schemes: %w", err)
	}
	if err := s.seedComplaints(ctx, clerk1, citizens); err != nil {
		return fmt.Errorf("complaints: %w", err)
	}
	if err := s.seedCertificates(ctx, admin, clerk1, citizens); err != nil {
		return fmt.Errorf("certificates: %w", err)
	}
	if err := s.seedNotices(ctx, admin); err != nil {
		return fmt.Errorf("notices: %w", err)
	}
	if err := s.seedRevenue(ctx, admin); err != nil {
		return fmt.Errorf("revenue: %w", err)
	}
	if err := s.seedSettings(ctx); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

type seedUser struct {
	email    string
	password string
	role     identity.Role
	fullName string
	mobile   string

	clerk   *identity.ClerkProfile
	aadhaar string
	dob     string
	gender  string
	address string
	village string
	pincode string
}

func (s *seeder) seedUsers(ctx context.Context) (map[string]identity.User, error) {
	data := []seedUser{
		{email: "admin@panchayat.com", password: "admin123", role: identity.RoleAdmin, fullName: "Ramesh Kumar", mobile: "9999999999"},
		{email: "admin@gram.in", password: "password123", role: identity.RoleAdmin, fullName: "Sunita Patel", mobile: "9000000001"},
		{email: "clerk1@gram.in", password: "clerk123", role: identity.RoleClerk, fullName: "Vijay Sharma", mobile: "9000000002",
			clerk: &identity.ClerkProfile{EmployeeID: "EMP-001", Department: "Revenue", Designation: "Senior Clerk"}},
		{email: "clerk2@gram.in", password: "clerk123", role: identity.RoleClerk, fullName: "Priya Gupta", mobile: "9000000003",
			clerk: &identity.ClerkProfile{EmployeeID: "EMP-002", Department: "Civil Works", Designation: "Junior Clerk"}},
		{email: "citizen1@gram.in", password: "citizen123", role: identity.RoleCitizen, fullName: "Mohanlal Verma", mobile: "9111111111",
			dob: "1985-06-15", aadhaar: "111122223333", gender: "male", address: "House No 5, Main Street", village: "Sarahi", pincode: "483880"},
		{email: "citizen2@gram.in", password: "citizen123", role: identity.RoleCitizen, fullName: "Savita Devi", mobile: "9222222222",
			dob: "1990-03-22", aadhaar: "444455556666", gender: "female", address: "Near Temple, Ward 2", village: "Sarahi", pincode: "483880"},
		{email: "citizen3@gram.in", password: "citizen123", role: identity.RoleCitizen, fullName: "Raju Singh", mobile: "9333333333",
			dob: "1978-11-08", aadhaar: "777788889999", gender: "male", address: "Farmers Colony, Lane 4", village: "Sarahi", pincode: "483880"},
		{email: "citizen4@gram.in", password: "citizen123", role: identity.RoleCitizen, fullName: "Anita Kumari", mobile: "9444444444",
			dob: "1995-07-19", aadhaar: "000011112222", gender: "female", address: "Block A, Government Housing", village: "Sarahi", pincode: "483880"},
		{email: "citizen5@gram.in", password: "citizen123", role: identity.RoleCitizen, fullName: "Dinesh Patel", mobile: "9555555555",
			dob: "1982-02-14", aadhaar: "333344445555", gender: "male", address: "Old Market Area, Shop No 22", village: "Sarahi", pincode: "483880"},
	}

	byEmail := make(map[string]identity.User, len(data))

	for _, u := range data {
		existing, err := s.users.FindByEmail(ctx, u.email)
		if err == nil {
			s.log.Info("user exists, skipped", "email", u.email)
			byEmail[u.email] = existing
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 10)
		if err != nil {
			return nil, err
		}

		user := identity.User{
			ID:           uuid.NewString(),
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
			FullName:     u.fullName,
			Mobile:       u.mobile,
			IsActive:     true,
			CreatedAt:    time.Now().UTC(),
		}
		if u.clerk != nil {
			profile := *u.clerk
			profile.UserID = user.ID
			user.ClerkProfile = &profile
		}
		if u.aadhaar != "" {
			dob, err := time.Parse("2006-01-02", u.dob)
			if err != nil {
				return nil, err
			}
			user.Profile = &identity.CitizenProfile{
				UserID:        user.ID,
				AadhaarNumber: u.aadhaar,
				DateOfBirth:   dob,
				Gender:        u.gender,
				Address:       u.address,
				Village:       u.village,
				Pincode:       u.pincode,
			}
		}

		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("user created", "email", u.email, "role", u.role)
		byEmail[u.email] = user
	}

	return byEmail, nil
}

func (s *seeder) seedRegistrations(ctx context.Context) error {
	existing, err := s.registrations.List(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	pending := []registration.Request{
		{FullName: "Suresh Yadav", Email: "suresh@example.com", Mobile: "9600000001", AadhaarNumber: "101010101010", DateOfBirth: mustDate("1988-04-10"), Gender: "male", Address: "Village Road, Sarahi", Pincode: "483880"},
		{FullName: "Kavita Singh", Email: "kavita@example.com", Mobile: "9600000002", AadhaarNumber: "202020202020", DateOfBirth: mustDate("1993-09-25"), Gender: "female", Address: "Block B, Sarahi", Pincode: "483880"},
		{FullName: "Rakesh Mishra", Email: "rakesh@example.com", Mobile: "9600000003", AadhaarNumber: "303030303030", DateOfBirth: mustDate("1980-12-01"), Gender: "male", Address: "Colony No 3, Sarahi", Pincode: "483880"},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("pass123"), 10)
	if err != nil {
		return err
	}

	for _, r := range pending {
		r.ID = uuid.NewString()
		r.Village = "Sarahi"
		r.PasswordHash = string(hash)
		r.Status = registration.StatusPending
		r.SubmittedAt = time.Now().UTC()
		if err := s.registrations.Create(ctx, r); err != nil {
			return err
		}
	}
	s.log.Info("registration requests created", "count", len(pending))
	return nil
}

func (s *seeder) seedSchemes(ctx context.Context, admin identity.User, citizens []identity.User) error {
	existing, err := s.schemes.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	data := []scheme.Scheme{
		{SchemeName: "PM Awas Yojana", Description: "Housing scheme for rural poor citizens providing financial assistance for house construction.", AllocatedFunds: 5000000, UtilizedFunds: 3100000, TotalApplications: 450, ApprovedApplications: 120},
		{SchemeName: "MGNREGA Employment", Description: "Guaranteed 100 days of wage employment to rural households under MGNREGA.", AllocatedFunds: 3000000, UtilizedFunds: 2790000, TotalApplications: 1200, ApprovedApplications: 1100},
		{SchemeName: "CM Health Mission", Description: "Free healthcare services and medicines for BPL families.", AllocatedFunds: 1500000, UtilizedFunds: 600000, TotalApplications: 85, ApprovedApplications: 40},
		{SchemeName: "Village Solar Project", Description: "Installing solar panels in rural homes for clean energy at subsidized rates.", AllocatedFunds: 2000000, UtilizedFunds: 400000, TotalApplications: 30, ApprovedApplications: 10},
		{SchemeName: "Jal Jeevan Mission", Description: "Providing safe drinking water to every rural household through tap water connections.", AllocatedFunds: 4000000, UtilizedFunds: 2400000, TotalApplications: 320, ApprovedApplications: 280},
	}

	created := make([]scheme.Scheme, 0, len(data))
	for _, sc := range data {
		sc.ID = uuid.NewString()
		sc.IsActive = true
		sc.CreatedByID = admin.ID
		sc.CreatedAt = time.Now().UTC()
		if err := s.schemes.Create(ctx, sc); err != nil {
			return err
		}
		created = append(created, sc)
	}
	s.log.Info("schemes created", "count", len(created))

	statuses := []string{scheme.ApplicationPending, scheme.ApplicationApproved, scheme.ApplicationRejected, scheme.ApplicationApproved, scheme.ApplicationPending}
	for i, c := range citizens {
		if c.ID == "" {
			continue
		}
		app := scheme.Application{
			ID:        uuid.NewString(),
			SchemeID:  created[i%len(created)].ID,
			CitizenID: c.ID,
			Status:    statuses[i%len(statuses)],
			Notes:     "Application submitted via Panchayat portal",
			AppliedAt: time.Now().UTC(),
		}
		if app.Status != scheme.ApplicationPending {
			now := time.Now().UTC()
			app.ReviewedAt = &now
		}
		if err := s.schemes.CreateApplication(ctx, app); err != nil {
			return err
		}
	}
	s.log.Info("scheme applications created")
	return nil
}

func (s *seeder) seedComplaints(ctx context.Context, clerk identity.User, citizens []identity.User) error {
	counts, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return err
	}
	if total(counts) > 0 {
		return nil
	}

	daysAgo := func(d int) *time.Time {
		t := time.Now().UTC().AddDate(0, 0, -d)
		return &t
	}

	data := []complaint.Complaint{
		{CitizenID: citizens[0].ID, ComplaintType: "Water Supply", Subject: "No water supply for 3 days", Description: "Water supply has been disrupted for 3 consecutive days in our area. Request immediate action.", Location: "Ward 2, Main Street", Priority: complaint.PriorityHigh, Status: complaint.StatusOpen},
		{CitizenID: citizens[1].ID, ComplaintType: "Sanitation", Subject: "Drainage blocked near school", Description: "The main drainage near the government school is completely blocked causing unhygienic conditions.", Location: "Near Government School", Priority: complaint.PriorityHigh, Status: complaint.StatusInProgress, AssignedToID: clerk.ID},
		{CitizenID: citizens[2].ID, ComplaintType: "Road", Subject: "Road damaged after rain", Description: "The road connecting Ward 3 to main market has severe potholes after recent rains.", Location: "Ward 3 to Market Road", Priority: complaint.PriorityMedium, Status: complaint.StatusResolved, ResolvedAt: daysAgo(5)},
		{CitizenID: citizens[3].ID, ComplaintType: "Street Light", Subject: "Street lights not working", Description: "5 street lights in our colony have not been working for 2 weeks. Area is very dark at night.", Location: "Colony Block A", Priority: complaint.PriorityMedium, Status: complaint.StatusOpen},
		{CitizenID: citizens[4].ID, ComplaintType: "Garbage", Subject: "Garbage not collected", Description: "Garbage has not been collected for over a week in our area causing health concerns.", Location: "Old Market Area", Priority: complaint.PriorityLow, Status: complaint.StatusResolved, ResolvedAt: daysAgo(2)},
		{CitizenID: citizens[0].ID, ComplaintType: "Water Supply", Subject: "Water quality issue", Description: "The tap water supplied has a foul smell and yellow color. Not fit for drinking.", Location: "Ward 2", Priority: complaint.PriorityHigh, Status: complaint.StatusInProgress, AssignedToID: clerk.ID},
		{CitizenID: citizens[1].ID, ComplaintType: "Road", Subject: "Speed breaker needed", Description: "There is no speed breaker near the school zone causing accidents. Need urgent installation.", Location: "School Road", Priority: complaint.PriorityMedium, Status: complaint.StatusOpen},
	}

	year := time.Now().Year()
	num := 1001
	for _, c := range data {
		if c.CitizenID == "" {
			continue
		}
		c.ID = uuid.NewString()
		c.ComplaintNumber = fmt.Sprintf("%s-%d-%d", complaint.NumberPrefix, year, num)
		num++
		c.SubmittedAt = time.Now().UTC().Add(-time.Duration(rand.Intn(30*24)) * time.Hour)
		if err := s.complaints.Create(ctx, c); err != nil {
			return err
		}
	}
	s.log.Info("complaints created", "count", len(data))
	return nil
}

func (s *seeder) seedCertificates(ctx context.Context, admin, clerk identity.User, citizens []identity.User) error {
	counts, err := s.certificates.CountByStatus(ctx)
	if err != nil {
		return err
	}
	if total(counts) > 0 {
		return nil
	}

	data := []certificate.Certificate{
		{CitizenID: citizens[0].ID, CertificateType: "Residence Certificate", Purpose: "Bank Account Opening", Status: certificate.StatusApproved, ProcessedByID: admin.ID},
		{CitizenID: citizens[1].ID, CertificateType: "Income Certificate", Purpose: "Government Job Application", Status: certificate.StatusPending},
		{CitizenID: citizens[2].ID, CertificateType: "Caste Certificate", Purpose: "College Admission", Status: certificate.StatusApproved, ProcessedByID: admin.ID},
		{CitizenID: citizens[3].ID, CertificateType: "Residence Certificate", Purpose: "Passport Application", Status: certificate.StatusRejected, ProcessedByID: clerk.ID},
		{CitizenID: citizens[4].ID, CertificateType: "Income Certificate", Purpose: "Scholarship Application", Status: certificate.StatusPending},
	}

	year := time.Now().Year()
	num := 3001
	for _, c := range data {
		if c.CitizenID == "" {
			continue
		}
		c.ID = uuid.NewString()
		c.ApplicationNumber = fmt.Sprintf("%s-%d-%d", certificate.NumberPrefix, year, num)
		num++
		c.Data = map[string]any{"notes": "Submitted via portal"}
		c.SubmittedAt = time.Now().UTC().Add(-time.Duration(rand.Intn(30*24)) * time.Hour)
		if c.Status != certificate.StatusPending {
			now := time.Now().UTC()
			c.ProcessedAt = &now
		}
		if err := s.certificates.Create(ctx, c); err != nil {
			return err
		}
	}
	s.log.Info("certificates created", "count", len(data))
	return nil
}

func (s *seeder) seedNotices(ctx context.Context, admin identity.User) error {
	existing, err := s.notices.List(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	data := []notice.Notice{
		{Title: "Gram Sabha Meeting - March 2026", Content: "Monthly Gram Sabha meeting will be held on 15th March 2026 at Panchayat Bhawan at 10 AM. All villagers are requested to attend.", NoticeType: "meeting", Priority: notice.PriorityHigh, IsPublished: true},
		{Title: "Water Supply Interruption Notice", Content: "Water supply will be interrupted on 5th March 2026 between 8 AM to 2 PM for pipeline maintenance work.", NoticeType: "infrastructure", Priority: notice.PriorityNormal, IsPublished: true},
		{Title: "Property Tax Payment Deadline", Content: "Last date for property tax payment is 31st March 2026. Citizens are requested to pay before the deadline to avoid penalties.", NoticeType: "financial", Priority: "urgent", IsPublished: true},
		{Title: "New Scheme: PM Kisan Enrollment", Content: "Enrollment for PM Kisan Samman Nidhi is now open. Eligible farmers can apply at Panchayat office with required documents.", NoticeType: "scheme", Priority: notice.PriorityHigh, IsPublished: true, IsGlobal: true},
		{Title: "Health Camp - Free Checkup", Content: "Free health camp organized by District Health Department on 20th March 2026. All villagers can avail free medical checkup.", NoticeType: "health", Priority: notice.PriorityNormal, IsPublished: false},
	}

	expiry := time.Now().UTC().AddDate(0, 0, 60)
	for _, n := range data {
		n.ID = uuid.NewString()
		n.CreatedByID = admin.ID
		n.CreatedAt = time.Now().UTC()
		n.ExpiryDate = &expiry
		if err := s.notices.Create(ctx, n); err != nil {
			return err
		}
	}
	s.log.Info("notices created", "count", len(data))
	return nil
}

func (s *seeder) seedRevenue(ctx context.Context, admin identity.User) error {
	existing, err := s.revenues.List(ctx, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	count := 0
	for m := 1; m <= 12; m++ {
		year := now.Year()
		if int(now.Month()) < m {
			year--
		}
		entries := []revenue.Record{
			{Amount: float64(45000 + rand.Intn(20000)), Category: "tax", Description: "Property Tax Collection"},
			{Amount: float64(15000 + rand.Intn(10000)), Category: "fee", Description: "Certificate Fee Collection"},
			{Amount: float64(25000 + rand.Intn(15000)), Category: "scheme_fund", Description: "Government Scheme Funds Received"},
		}
		for _, r := range entries {
			r.ID = uuid.NewString()
			r.Month = m
			r.Year = year
			r.CollectedByID = admin.ID
			r.CollectedAt = time.Date(year, time.Month(m), rand.Intn(28)+1, 0, 0, 0, 0, time.UTC)
			if err := s.revenues.Create(ctx, r); err != nil {
				return err
			}
			count++
		}
	}
	s.log.Info("revenue records created", "count", count)
	return nil
}

func (s *seeder) seedSettings(ctx context.Context) error {
	existing, err := s.settings.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for key, value := range settings.Defaults {
		if err := s.settings.Set(ctx, key, value); err != nil {
			return err
		}
	}
	s.log.Info("system settings created")
	return nil
}

func total(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
