package supervisor

import (
	"context"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/metrics"
)

// SessionCleaner is the slice of the session store the janitor needs.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionJanitorService periodically removes expired sessions from the
// session store. Runs under the maintenance layer of the supervisor tree.
type SessionJanitorService struct {
	sessions SessionCleaner
	interval time.Duration
}

// NewSessionJanitorService creates the janitor. A non-positive interval
// defaults to one hour.
func NewSessionJanitorService(sessions SessionCleaner, interval time.Duration) *SessionJanitorService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionJanitorService{
		sessions: sessions,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (j *SessionJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := j.sessions.CleanupExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("Session cleanup sweep failed")
				continue
			}
			if removed > 0 {
				metrics.RecordSessionCleanup(removed)
				logging.Debug().Int("removed", removed).Msg("Expired sessions removed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor log messages.
func (j *SessionJanitorService) String() string {
	return "session-janitor"
}
