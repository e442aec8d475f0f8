// Package http implements the wire side of the server's HTTP/1.0 protocol:
// reading a single request from a raw byte stream and serializing a response
// back onto it. Framing is deliberately hand-rolled; nothing outside this
// package touches raw connection bytes.
package http

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

const (
	// headerSeparator terminates the header block of a request.
	headerSeparator = "\r\n\r\n"

	// readChunkSize is the size of each read from the connection.
	readChunkSize = 4096

	// maxHeaderBytes bounds how much we buffer while looking for the
	// header separator on a single connection.
	maxHeaderBytes = 64 * 1024
)

// Request is a parsed HTTP/1.0 request.
//
// Path is URL-decoded and kept relative; header keys are lower-cased with
// last-write-wins on duplicates. Body holds exactly Content-Length bytes when
// the header is present.
type Request struct {
	Method  string
	Path    string
	Version string
	Headers map[string]string
	Body    []byte
}

// ContentLength returns the declared body length and whether the header was
// present. A present but unparsable value is reported as not ok.
func (r *Request) ContentLength() (int, bool) {
	v, ok := r.Headers["content-length"]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ReadRequest reads one request from conn.
//
// It consumes bytes until the header separator is seen, parses the request
// line and headers, then reads the declared body. A connection that closes
// before producing any bytes yields ErrEmptyRequest; the caller drops it
// without a response. Every other failure maps to a 400.
func ReadRequest(conn io.Reader) (*Request, error) {
	raw, body, err := readHeaderBlock(conn)
	if err != nil {
		return nil, err
	}

	req, err := parseHeaderBlock(raw)
	if err != nil {
		return nil, err
	}

	if err := readBody(conn, req, &body); err != nil {
		return nil, err
	}
	req.Body = body

	return req, nil
}

// readHeaderBlock accumulates reads until the header separator is found.
// Returns the header block (separator excluded) and any body bytes that
// arrived in the same reads.
func readHeaderBlock(conn io.Reader) ([]byte, []byte, error) {
	var data []byte
	buf := make([]byte, readChunkSize)

	for {
		if idx := bytes.Index(data, []byte(headerSeparator)); idx >= 0 {
			return data[:idx], data[idx+len(headerSeparator):], nil
		}
		if len(data) > maxHeaderBytes {
			return nil, nil, ErrHeaderTooLarge
		}

		n, err := conn.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			continue
		}
		if err != nil {
			if len(data) == 0 {
				return nil, nil, ErrEmptyRequest
			}
			// Connection closed mid-headers; let the parser decide
			// whether what arrived forms a usable request line.
			return data, nil, nil
		}
	}
}

// parseHeaderBlock parses the request line and header lines.
func parseHeaderBlock(raw []byte) (*Request, error) {
	lines := strings.Split(string(raw), "\r\n")

	tokens := strings.Fields(lines[0])
	if len(tokens) != 3 {
		return nil, fmt.Errorf("%w: request line %q", ErrMalformedRequest, lines[0])
	}

	path, err := url.PathUnescape(tokens[1])
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable path %q", ErrMalformedRequest, tokens[1])
	}

	req := &Request{
		Method:  tokens[0],
		Path:    path,
		Version: tokens[2],
		Headers: make(map[string]string, len(lines)-1),
	}

	for _, line := range lines[1:] {
		key, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		req.Headers[strings.ToLower(key)] = value
	}

	return req, nil
}

// readBody completes the body according to Content-Length. Bytes already
// consumed while scanning for the separator count toward the total; anything
// past the declared length is discarded.
func readBody(conn io.Reader, req *Request, body *[]byte) error {
	length, ok := req.ContentLength()
	if !ok {
		if _, present := req.Headers["content-length"]; present {
			return fmt.Errorf("%w: unparsable content-length", ErrMalformedRequest)
		}
		// No declared length. POST bodies must be framed explicitly;
		// anything else keeps only the bytes that already arrived.
		if req.Method == "POST" {
			return ErrLengthRequired
		}
		return nil
	}

	for len(*body) < length {
		buf := make([]byte, readChunkSize)
		n, err := conn.Read(buf)
		if n > 0 {
			*body = append(*body, buf[:n]...)
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: body shorter than content-length", ErrMalformedRequest)
		}
	}

	if len(*body) > length {
		*body = (*body)[:length]
	}
	return nil
}
