// Package files is the serving-side front of the content store: it resolves
// request paths safely under the configured root, picks content types for
// downloads and destination names for uploads, and applies the artificial
// processing delay that represents real upload work.
package files

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arianaariaei/PyThreadServe/pkg/store/content"
)

var (
	// ErrPathOutsideRoot means the request path normalizes to a location
	// outside the served root. Reported to clients as 404 so the response
	// reveals nothing about what exists beyond the root.
	ErrPathOutsideRoot = errors.New("path escapes served root")

	// ErrEmptyBody means an upload body was empty or whitespace-only.
	ErrEmptyBody = errors.New("empty request body")
)

// contentTypes maps file extensions to the Content-Type the server emits.
// Anything unlisted is served as text/plain.
var contentTypes = map[string]string{
	".html": "text/html",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Service performs file fetches and saves against a content store.
type Service struct {
	store       content.Store
	uploadDelay time.Duration
}

// NewService creates a Service. uploadDelay is slept during every save while
// the caller's admission slot is held.
func NewService(store content.Store, uploadDelay time.Duration) *Service {
	return &Service{store: store, uploadDelay: uploadDelay}
}

// Resolve cleans a URL-decoded request path into a root-relative key.
// The empty string is returned (without error) for the root itself. Paths
// whose normal form climbs out of the root are rejected.
func Resolve(requestPath string) (string, error) {
	trimmed := strings.TrimLeft(requestPath, "/")
	cleaned := path.Clean(trimmed)

	if cleaned == "." {
		return "", nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %q: %w", requestPath, ErrPathOutsideRoot)
	}
	return cleaned, nil
}

// ContentTypeFor returns the content type inferred from the file extension.
func ContentTypeFor(p string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(p))]; ok {
		return ct
	}
	return "text/plain"
}

// GenerateName builds a destination filename for an upload that did not name
// one: a timestamp plus a short random identifier.
func GenerateName(now time.Time) string {
	id := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s.txt", now.Format("20060102_150405"), id)
}

// Fetch reads the file a GET names and infers its content type.
func (s *Service) Fetch(ctx context.Context, requestPath string) ([]byte, string, error) {
	key, err := Resolve(requestPath)
	if err != nil {
		return nil, "", err
	}
	if key == "" {
		return nil, "", fmt.Errorf("content %q: %w", requestPath, content.ErrNotFound)
	}

	data, err := s.store.Read(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return data, ContentTypeFor(key), nil
}

// Save validates and stores an upload, returning the destination filename.
// The artificial processing delay runs before the write, so the whole save
// takes at least uploadDelay.
func (s *Service) Save(ctx context.Context, requestPath string, body []byte) (string, error) {
	if strings.TrimSpace(string(body)) == "" {
		return "", ErrEmptyBody
	}

	key, err := Resolve(requestPath)
	if err != nil {
		return "", err
	}
	if key == "" {
		key = GenerateName(time.Now())
	}

	if s.uploadDelay > 0 {
		time.Sleep(s.uploadDelay)
	}

	if err := s.store.Write(ctx, key, body); err != nil {
		return "", err
	}
	return key, nil
}
