package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch reads the raw results document from a file path or an http(s) URL.
// There is no retry; a failed load is reported once.
func Fetch(ctx context.Context, c HTTPClient, location string) ([]byte, error) {
	if isURL(location) {
		b, _, err := getBytes(ctx, c, location)
		return b, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: location, Err: err}
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, &FetchError{Source: location, Err: err}
	}
	defer f.Close()
	b, err := readLimited(f)
	if err != nil {
		return nil, &FetchError{Source: location, Err: err}
	}
	return b, nil
}

// Source fetches and validates the results document from one location.
type Source struct {
	c        HTTPClient
	location string
}

func NewSource(c HTTPClient, location string) *Source {
	return &Source{c: c, location: location}
}

func (s *Source) Location() string { return s.location }

func (s *Source) Load(ctx context.Context) (*models.Dataset, error) {
	raw, err := Fetch(ctx, s.c, s.location)
	if err != nil {
		return nil, err
	}
	ds, err := store.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.location, err)
	}
	return ds, nil
}
