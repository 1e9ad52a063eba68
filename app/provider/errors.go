package provider

// APIError is a normalized upstream failure. StatusCode is the upstream HTTP
// status and is surfaced to clients unchanged.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}
