package types

import "time"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform response shape every endpoint returns.
type Envelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail augments error envelopes with a machine-readable code.
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
