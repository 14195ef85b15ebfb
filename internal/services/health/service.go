package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Report is the health payload.
type Report struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Language string `json:"language,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	db       Pinger
	language string
	timeout  time.Duration
}

// NewService constructs a new health service. db may be nil when the
// in-memory store is in use.
func NewService(db Pinger, language string) *Service {
	return &Service{db: db, language: language, timeout: 2 * time.Second}
}

// Status reports whether the service's dependencies are reachable.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Database: "memory", Language: s.language}
	if s.db == nil {
		return report
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		report.OK = false
		report.Database = "unreachable"
		return report
	}
	report.Database = "ok"
	return report
}
