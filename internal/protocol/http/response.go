package http

import (
	"fmt"
	"io"
	"strconv"
)

// statusText maps the status codes this server produces to reason phrases.
var statusText = map[int]string{
	200: "OK",
	201: "Created",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

// StatusText returns the reason phrase for code, or "Unknown".
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Unknown"
}

// Header is a single response header. Headers are kept as a slice so they
// serialize in insertion order.
type Header struct {
	Key   string
	Value string
}

// Response is an HTTP/1.0 response. The connection is always closed after
// writing one; there is no keep-alive.
type Response struct {
	Status  int
	Headers []Header
	Body    []byte
}

// NewResponse builds a response with a plaintext body and a matching
// Content-Length header.
func NewResponse(status int, body string) *Response {
	resp := &Response{Status: status, Body: []byte(body)}
	if len(resp.Body) > 0 {
		resp.AddHeader("Content-Length", strconv.Itoa(len(resp.Body)))
	}
	return resp
}

// AddHeader appends a header, preserving insertion order.
func (r *Response) AddHeader(key, value string) {
	r.Headers = append(r.Headers, Header{Key: key, Value: value})
}

// Write serializes the status line, headers and body onto w with CRLF line
// endings and a blank line before the body.
func (r *Response) Write(w io.Writer) error {
	head := fmt.Sprintf("HTTP/1.0 %d %s\r\n", r.Status, StatusText(r.Status))
	for _, h := range r.Headers {
		head += fmt.Sprintf("%s: %s\r\n", h.Key, h.Value)
	}
	head += "\r\n"

	if _, err := io.WriteString(w, head); err != nil {
		return fmt.Errorf("write response head: %w", err)
	}
	if len(r.Body) > 0 {
		if _, err := w.Write(r.Body); err != nil {
			return fmt.Errorf("write response body: %w", err)
		}
	}
	return nil
}
