package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MessageResponse is the payload for endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}
