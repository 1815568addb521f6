package agent

import "errors"

var (
	// ErrSessionAlreadyStarted is returned when Start is called on a session
	// that already left the idle state.
	ErrSessionAlreadyStarted = errors.New("session already started")

	// ErrSessionFinished is returned for operations on a session whose call
	// is over.
	ErrSessionFinished = errors.New("session finished")

	// ErrNoInterview is returned when an interview-mode session is started
	// without an interview to conduct.
	ErrNoInterview = errors.New("no interview configured")
)
