package events

const (
	// KindCallConnecting identifies the start of session establishment.
	KindCallConnecting Kind = "call.connecting"
	// KindCallStarted identifies a confirmed open realtime stream.
	KindCallStarted Kind = "call.started"
	// KindCallEnded identifies a session that finished normally.
	KindCallEnded Kind = "call.ended"
	// KindCallFailed identifies a session that ended with a fatal error.
	KindCallFailed Kind = "call.failed"
)

// CallConnecting marks the session leaving Idle.
type CallConnecting struct{ Base }

// NewCallConnecting creates a call connecting event.
func NewCallConnecting() CallConnecting {
	return CallConnecting{Base: NewBase(KindCallConnecting)}
}

// CallStarted marks the realtime stream opening.
type CallStarted struct{ Base }

// NewCallStarted creates a call started event.
func NewCallStarted() CallStarted {
	return CallStarted{Base: NewBase(KindCallStarted)}
}

// CallEnded marks a session reaching Finished.
type CallEnded struct {
	Base
	// Reason is a short machine-readable cause: "user", "inactivity",
	// "completed", or "remote".
	Reason string
}

// NewCallEnded creates a call ended event.
func NewCallEnded(reason string) CallEnded {
	return CallEnded{Base: NewBase(KindCallEnded), Reason: reason}
}

// CallFailed marks a session reaching Error.
type CallFailed struct {
	Base
	Err error
}

// NewCallFailed creates a call failed event.
func NewCallFailed(err error) CallFailed {
	return CallFailed{Base: NewBase(KindCallFailed), Err: err}
}
