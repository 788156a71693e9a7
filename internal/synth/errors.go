package synth

import "fmt"

// Kind classifies a synthesis failure.
type Kind int

const (
	// KindProvider means the provider answered but reported an error or
	// returned no usable choice.
	KindProvider Kind = iota + 1
	// KindTransport means the request never produced a decodable answer.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is returned by Synthesize instead of a sentinel string.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error renders the text shown to users when generation fails.
func (e *Error) Error() string {
	if e.Kind == KindProvider {
		return fmt.Sprintf("Error: %s", e.Message)
	}
	return fmt.Sprintf("Error generating itinerary: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func providerError(msg string) *Error {
	if msg == "" {
		msg = "Unknown error"
	}
	return &Error{Kind: KindProvider, Message: msg}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}
