package ingest

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

const sampleResults = `{"latest_week":2,"campaign_history":[
{"week":1,"state_snapshot":{"campaigns":[{"campaign_id":1,"campaign_name":"Brand","roas":2.1}]},"recommendations":{}},
{"week":2,"state_snapshot":{"campaigns":[{"campaign_id":1,"campaign_name":"Brand","roas":2.4}]},"recommendations":{"explanation":"hold"}}]}`

func TestFetchHandles500(t *testing.T) {
	// servidor fake que devuelve 500
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(2*time.Second), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", fe.Status)
	}
}

func TestFetchHandles404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), NewHTTPClient(2*time.Second), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Fatalf("expected 404 FetchError, got %v", err)
	}
}

func TestFetchDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), NewHTTPClient(2*time.Second), srv.URL); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}
}

func TestFetchHandlesTimeout(t *testing.T) {
	// servidor fake que se tarda más del timeout
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()
	defer close(done)

	_, err := Fetch(context.Background(), NewHTTPClient(200*time.Millisecond), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Status != 0 {
		t.Fatalf("timeout should carry no status, got %d", fe.Status)
	}
}

func TestFetchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	if err := os.WriteFile(path, []byte(sampleResults), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := Fetch(context.Background(), NewHTTPClient(time.Second), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != sampleResults {
		t.Fatalf("file content mismatch")
	}

	_, err = Fetch(context.Background(), NewHTTPClient(time.Second), filepath.Join(dir, "missing.json"))
	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist FetchError, got %v", err)
	}
}

func TestFetchRejectsOversizedDocument(t *testing.T) {
	old := maxBody
	maxBody = int64(len(sampleResults)) - 1
	t.Cleanup(func() { maxBody = old })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResults))
	}))
	defer srv.Close()

	_, err := NewSource(NewHTTPClient(time.Second), srv.URL).Load(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge FetchError, got %v", err)
	}
	if fe.Status != http.StatusOK {
		t.Fatalf("expected status 200 on the error, got %d", fe.Status)
	}
	if errors.Is(err, store.ErrMalformed) {
		t.Fatal("oversized document must not be reported as malformed")
	}

	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(sampleResults), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Fetch(context.Background(), NewHTTPClient(time.Second), path); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("file: expected ErrTooLarge, got %v", err)
	}

	maxBody = int64(len(sampleResults))
	if _, err := Fetch(context.Background(), NewHTTPClient(time.Second), srv.URL); err != nil {
		t.Fatalf("document at the limit must load, got %v", err)
	}
}

func TestSourceLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResults))
	}))
	defer srv.Close()

	ds, err := NewSource(NewHTTPClient(time.Second), srv.URL).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.CampaignHistory) != 2 || ds.CampaignHistory[1].Recommendations.Explanation != "hold" {
		t.Fatalf("unexpected dataset: %+v", ds)
	}
}

func TestSourceLoadMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"campaign_history":[]}`))
	}))
	defer srv.Close()

	_, err := NewSource(NewHTTPClient(time.Second), srv.URL).Load(context.Background())
	if !errors.Is(err, store.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		t.Fatalf("malformed data must not be a fetch error")
	}
}

func TestTriggerAgentRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.Write([]byte("ok then"))
			return
		}
		w.Write([]byte(`{"status":"started","week":13}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(time.Second)
	body, err := TriggerAgentRun(context.Background(), c, srv.URL+"/run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"status":"started","week":13}` {
		t.Fatalf("body must be passed through verbatim, got %s", body)
	}

	_, err = TriggerAgentRun(context.Background(), c, srv.URL+"/bad")
	if !errors.Is(err, ErrInvalidAgentResponse) {
		t.Fatalf("expected ErrInvalidAgentResponse, got %v", err)
	}
}
