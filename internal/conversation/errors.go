package conversation

import "errors"

var (
	// ErrGenerationRejected marks authentication or validation failures from
	// the generation service. They end the current turn and are not retried.
	ErrGenerationRejected = errors.New("conversation: generation request rejected")
	// ErrGenerationUnavailable is returned when every attempt failed transiently.
	ErrGenerationUnavailable = errors.New("conversation: generation service unavailable")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("conversation: session not found")
	// ErrEmptyMessage is returned when a client message has no text.
	ErrEmptyMessage = errors.New("conversation: message text is empty")
	// ErrInvalidRecord is returned when a session row does not parse.
	ErrInvalidRecord = errors.New("conversation: row does not contain a client record")
)
