package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Logger is the minimal printf-style narration sink.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "compute", "readiness")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceFailed indicates resource creation failed.
	EventResourceFailed EventType = "resource.failed"

	// EventStateTransition indicates the readiness gate moved to a new state.
	EventStateTransition EventType = "state.transition"

	// EventWarning indicates a tolerated failure.
	EventWarning EventType = "warning"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// ConsoleObserver implements Observer using standard log package.
type ConsoleObserver struct {
	logger        *log.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer writing to the standard logger.
func NewConsoleObserver() *ConsoleObserver {
	return NewConsoleObserverWithLogger(log.Default())
}

// NewConsoleObserverWithLogger creates a console observer writing to logger.
func NewConsoleObserverWithLogger(logger *log.Logger) *ConsoleObserver {
	return &ConsoleObserver{
		logger:        logger,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	o.logger.Printf(format, v...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	o.logger.Print(formatEvent(event))
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	if total == 0 {
		o.logger.Printf("[%s] Progress: %d/%d", phase, current, total)
		return
	}
	percentage := (current * 100) / total
	o.logger.Printf("[%s] Progress: %d/%d (%d%%)", phase, current, total, percentage)
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &ConsoleObserver{
		logger:        o.logger,
		contextFields: newFields,
	}
}

// formatEvent formats an event for console output. Fields are sorted by key.
func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}

	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceExists logs when a resource already exists.
func LogResourceExists(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s already exists", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceFailed logs a failed resource creation.
func LogResourceFailed(observer Observer, phase, resourceType, resourceName string, err error) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s failed: %v", resourceType, err),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogStateTransition logs a readiness state change.
func LogStateTransition(observer Observer, phase, from, to string) {
	observer.Event(Event{
		Type:    EventStateTransition,
		Phase:   phase,
		Message: fmt.Sprintf("%s -> %s", from, to),
	})
}

// LogWarning logs a failure the run tolerates.
func LogWarning(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventWarning,
		Phase:   phase,
		Message: err.Error(),
	})
}
