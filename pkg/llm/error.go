// Package llm provides the envelopes exchanged between the chat widget and the
// gateway, plus the upstream generative-AI wire shapes the gateway speaks.
package llm

// ErrorResponse is the body the gateway returns on any failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// UpstreamErrorBody is the error shape returned by the upstream provider.
type UpstreamErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
		Code    any    `json:"code,omitempty"`
	} `json:"error"`
}
