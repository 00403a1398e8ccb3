package authz

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
)

// AuditEvent captures one access-check decision for security monitoring.
// Observed denials (failed checks that passed because enforcement was
// inactive) are the events that matter most during rollout.
type AuditEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// ActorID and Role identify the caller.
	ActorID string `json:"actor_id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`

	// Kind and Keys name what was tested.
	Kind Kind     `json:"kind"`
	Keys []string `json:"keys"`

	// Decision is allow, deny, or observe.
	Decision string `json:"decision"`

	// Method and Path locate the request.
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
}

// AuditConfig configures the audit logger.
type AuditConfig struct {
	// Enabled controls whether events are recorded at all.
	Enabled bool

	// LogAllowed controls whether allowed decisions are recorded.
	// Denials and observed denials are always recorded when enabled.
	LogAllowed bool

	// BufferSize is the async buffer size. Events are dropped, with a
	// warning, when the buffer is full.
	BufferSize int
}

// DefaultAuditConfig returns production defaults: denials only.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:    true,
		LogAllowed: false,
		BufferSize: 1000,
	}
}

// AuditLogger writes access-check decisions asynchronously so the check
// path never blocks on logging.
type AuditLogger struct {
	config   AuditConfig
	events   chan *AuditEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAuditLogger creates an audit logger and starts its writer goroutine.
func NewAuditLogger(config AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}

	al := &AuditLogger{
		config:   config,
		events:   make(chan *AuditEvent, config.BufferSize),
		stopChan: make(chan struct{}),
	}

	if config.Enabled {
		al.wg.Add(1)
		go al.processEvents()
	}

	return al
}

// Log records a decision. Non-blocking: the event is dropped if the
// buffer is full.
func (al *AuditLogger) Log(event *AuditEvent) {
	if al == nil || !al.config.Enabled {
		return
	}
	if event.Decision == DecisionAllow && !al.config.LogAllowed {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case al.events <- event:
	default:
		logging.Warn().
			Str("actor_id", event.ActorID).
			Strs("keys", event.Keys).
			Msg("Audit buffer full, event dropped")
	}
}

func (al *AuditLogger) processEvents() {
	defer al.wg.Done()

	for {
		select {
		case <-al.stopChan:
			al.drainEvents()
			return
		case event := <-al.events:
			writeAuditEvent(event)
		}
	}
}

func (al *AuditLogger) drainEvents() {
	for {
		select {
		case event := <-al.events:
			writeAuditEvent(event)
		default:
			return
		}
	}
}

func writeAuditEvent(event *AuditEvent) {
	logEvent := logging.Info()
	if event.Decision != DecisionAllow {
		logEvent = logging.Warn()
	}

	logEvent.
		Str("event_type", "authz_decision").
		Str("audit_id", event.ID).
		Time("audit_timestamp", event.Timestamp).
		Str("actor_id", event.ActorID).
		Str("email", event.Email).
		Str("role", event.Role).
		Str("kind", string(event.Kind)).
		Strs("keys", event.Keys).
		Str("decision", event.Decision).
		Str("method", event.Method).
		Str("path", event.Path).
		Msg("Access check")
}

// Close stops the logger and flushes buffered events.
// Safe to call multiple times.
func (al *AuditLogger) Close() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.stopChan)
	})
	al.wg.Wait()
}
