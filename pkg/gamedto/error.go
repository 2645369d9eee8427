package gamedto

// DomainError is the caller-facing error shape. Code is one of "not_found",
// "state_error", "conflict", or "internal"; Retryable hints whether the same
// request may succeed if repeated.
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "game service error"
}
