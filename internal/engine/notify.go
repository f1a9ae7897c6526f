package engine

// Severity classifies log lines sent over the notifier.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the conventional upper-case tag.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Notifier is the one-way channel from the crafter to whoever is watching it.
// Implementations must be safe to call from the worker goroutine.
type Notifier interface {
	// StateChanged reports every transition of the crafter's state machine.
	StateChanged(state State)
	// Progress reports completed/quantity in [0, 1].
	Progress(fraction float64)
	// Log carries a free-text line with a severity.
	Log(sev Severity, format string, args ...any)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) StateChanged(State)           {}
func (NopNotifier) Progress(float64)             {}
func (NopNotifier) Log(Severity, string, ...any) {}
