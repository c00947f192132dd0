package health

import (
	"context"
	"sync"
	"time"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// Report is the readiness payload.
type Report struct {
	OK         bool              `json:"ok"`
	Components map[string]string `json:"components"`
}

// Service encapsulates health-related checks.
type Service struct {
	timeout time.Duration
	names   []string
	checks  map[string]Check
}

// NewService constructs a new health service. Each check gets timeout.
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{timeout: timeout, checks: map[string]Check{}}
}

// Register adds a named check. Registering a name twice replaces the check.
func (s *Service) Register(name string, check Check) {
	if _, exists := s.checks[name]; !exists {
		s.names = append(s.names, name)
	}
	s.checks[name] = check
}

// Status returns a simple liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Ready runs every check concurrently.
func (s *Service) Ready(ctx context.Context) Report {
	report := Report{OK: true, Components: make(map[string]string, len(s.names))}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range s.names {
		name, check := name, s.checks[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			status := "ok"
			if err := check(cctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			report.Components[name] = status
			if status != "ok" {
				report.OK = false
			}
		}()
	}
	wg.Wait()
	return report
}
