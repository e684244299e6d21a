package httperr

import "net/http"

// Response is the JSON error envelope attached to gin errors by the
// error-handling middleware.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func New(status int, msg string) Response {
	resp := Response{Status: status}
	resp.Error.Message = msg
	return resp
}

func Internal() Response {
	return New(http.StatusInternalServerError, "Internal server error")
}
