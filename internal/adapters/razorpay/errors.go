package razorpay

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type GatewayError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error: %s %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

// IsRetryable reports whether the request may succeed if sent again.
func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func newGatewayError(status int, body []byte) *GatewayError {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Code != "" {
		return &GatewayError{Code: er.Error.Code, Message: er.Error.Description, StatusCode: status}
	}
	return &GatewayError{Code: http.StatusText(status), Message: string(body), StatusCode: status}
}
