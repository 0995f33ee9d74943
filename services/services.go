package services

import (
	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/repositories"
)

// Options tune the service layer
type Options struct {
	Gate            *access.Gate
	ReasonMinLength int
}

// Services holds all service instances
type Services struct {
	Settings SettingService
	Reports  ReportService
	Reviews  ReviewService
	Jobs     JobService
	Audit    AuditService
	Seed     SeedService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, opts Options) *Services {
	gate := opts.Gate
	if gate == nil {
		gate = access.NewGate(access.DefaultPolicy())
	}

	audit := NewAuditService(repos.Audit, gate)
	return &Services{
		Settings: NewSettingService(gate, repos.Documents, audit, opts.ReasonMinLength),
		Reports:  NewReportService(gate, repos.Documents, audit, opts.ReasonMinLength),
		Reviews:  NewReviewService(gate, repos.Documents, audit, opts.ReasonMinLength),
		Jobs:     NewJobService(gate, repos.Documents, audit, opts.ReasonMinLength),
		Audit:    audit,
		Seed:     NewSeedService(repos.Documents),
	}
}
