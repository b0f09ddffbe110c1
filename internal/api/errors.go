package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTokenExpired is returned without issuing a request when the configured
// access token is a JWT whose exp claim has passed.
var ErrTokenExpired = errors.New("access token expired")

// APIError 非 2xx 响应
// APIError is a non-2xx backend response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed: status=%d", e.Status)
}

// StatusCode returns the HTTP status of err when it is an *APIError, else 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// parseErrorMessage 从 FastAPI 风格的错误体中提取可读信息
// parseErrorMessage extracts a readable message from a FastAPI-style error body
func parseErrorMessage(data []byte) string {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if len(body.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(body.Detail, &detail); err == nil {
			return strings.TrimSpace(detail)
		}
		var details []validationDetail
		if err := json.Unmarshal(body.Detail, &details); err == nil {
			msgs := make([]string, 0, len(details))
			for _, d := range details {
				if m := strings.TrimSpace(d.Msg); m != "" {
					msgs = append(msgs, m)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(body.Message)
}
