package response

// StandardApiResponse is the envelope every endpoint returns, tool calls and
// health checks alike, so the conversational front-end parses one shape.
type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Data       interface{} `json:"data,omitempty"`   // Operation result for success
	Errors     interface{} `json:"errors,omitempty"` // Rejection or validation details
}
