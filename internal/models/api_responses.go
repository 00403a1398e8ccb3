package models

// APIResponse is the standardized response envelope used by all HTTP
// endpoints. Denied and failed requests carry Success=false and a generic
// Message; specific capability or route names are never echoed back to the
// caller, only logged server-side.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable error code alongside the message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
