package paramshare

import "time"

// ResolveLogEvent describes a resolution attempt for logging.
type ResolveLogEvent struct {
	Candidate string
	Canonical string
	Hops      int
	Duration  time.Duration
	Err       error
}

// ResolveLogger records resolution events.
type ResolveLogger interface {
	LogResolution(ResolveLogEvent)
}

// ResolveLoggerFunc adapts a function to ResolveLogger.
type ResolveLoggerFunc func(ResolveLogEvent)

// LogResolution implements ResolveLogger.
func (f ResolveLoggerFunc) LogResolution(event ResolveLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolveLogger struct{}

func (noopResolveLogger) LogResolution(ResolveLogEvent) {}
