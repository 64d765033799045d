package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// FetchError is a failure to obtain the raw document: missing file, network
// error or non-2xx answer. Status is 0 when no HTTP response was received.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrTooLarge is wrapped in a FetchError when the document exceeds maxBody.
var ErrTooLarge = errors.New("results document too large")

var maxBody int64 = 64 << 20

// readLimited reads r whole, failing instead of truncating past maxBody.
func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxBody {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, maxBody)
	}
	return b, nil
}

func getBytes(ctx context.Context, c HTTPClient, url string) ([]byte, int, error) {
	if url == "" {
		return nil, 0, &FetchError{Source: url, Err: errors.New("empty url")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &FetchError{Source: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return nil, 0, &FetchError{Source: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &FetchError{Source: url, Status: resp.StatusCode, Err: fmt.Errorf("non-2xx body=%s", string(b))}
	}
	b, err := readLimited(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &FetchError{Source: url, Status: resp.StatusCode, Err: err}
	}
	return b, resp.StatusCode, nil
}
