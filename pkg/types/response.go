package types

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries pagination metadata next to list payloads.
type Meta struct {
	NextCursor string `json:"next_cursor,omitempty"`
	Count      int    `json:"count"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
