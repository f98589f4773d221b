// Package providers implements the C3 data-source providers: a typed
// capability interface with Primary (remote catalog) and Fallback
// (local JSON fixtures) variants, per spec.md §4.3. Grounded on the
// Design Note's "typed capability interface" rewrite of the teacher's
// duck-typed service-factory providers (e.g.
// services/solver-svc/factory.go's interface-returning constructors);
// FetchError kinds are grounded on pkg/apperror's code/severity shape.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"transit/pkg/domain"
)

// FetchErrorKind classifies why a Provider's Load failed.
type FetchErrorKind string

const (
	FetchErrorConnection FetchErrorKind = "connection"
	FetchErrorTimeout    FetchErrorKind = "timeout"
	FetchErrorInvalid    FetchErrorKind = "invalid"
)

// FetchError is returned by Provider.Load on failure.
type FetchError struct {
	Kind   FetchErrorKind
	Source string
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s fetch failed: %v", e.Source, e.Kind, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s fetch failed", e.Source, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Provider is the capability every data source implements: a name, an
// availability probe, and a blocking load of the full raw dataset.
type Provider interface {
	Name() string
	Available(ctx context.Context) bool
	Load(ctx context.Context) (domain.RawDataset, error)
}

// PrimaryProvider probes a remote transit-data catalog over HTTP.
// Available() returns true only if a lightweight handshake succeeds.
type PrimaryProvider struct {
	baseURL string
	client  *http.Client
}

// NewPrimaryProvider creates a PrimaryProvider pointed at baseURL.
func NewPrimaryProvider(baseURL string, client *http.Client) *PrimaryProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PrimaryProvider{baseURL: baseURL, client: client}
}

func (p *PrimaryProvider) Name() string { return "primary" }

// Available performs a handshake GET against the catalog's health
// endpoint, returning false on any error or non-2xx response.
func (p *PrimaryProvider) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Load retrieves stops, routes and flights from the remote catalog and
// maps them into a RawDataset with source="primary".
func (p *PrimaryProvider) Load(ctx context.Context) (domain.RawDataset, error) {
	var raw domain.RawDataset
	raw.SourceName = "primary"
	raw.FetchedAt = time.Now().UTC()

	if err := p.fetchJSON(ctx, "/stops", &raw.Stops); err != nil {
		return domain.RawDataset{}, err
	}
	if err := p.fetchJSON(ctx, "/routes", &raw.Routes); err != nil {
		return domain.RawDataset{}, err
	}
	if err := p.fetchJSON(ctx, "/flights", &raw.Flights); err != nil {
		return domain.RawDataset{}, err
	}

	return raw, nil
}

func (p *PrimaryProvider) fetchJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return &FetchError{Kind: FetchErrorInvalid, Source: "primary", Cause: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &FetchError{Kind: FetchErrorTimeout, Source: "primary", Cause: ctxErr}
		}
		return &FetchError{Kind: FetchErrorConnection, Source: "primary", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{Kind: FetchErrorConnection, Source: "primary", Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Kind: FetchErrorInvalid, Source: "primary", Cause: err}
	}
	return nil
}

// FallbackProvider reads three JSON fixtures from a local directory.
// It never fails as long as the files exist: a missing collection
// yields an empty slice rather than an error, matching spec.md §4.3's
// "never fails if files exist" contract.
type FallbackProvider struct {
	dir string
}

// NewFallbackProvider creates a FallbackProvider reading from dir.
func NewFallbackProvider(dir string) *FallbackProvider {
	return &FallbackProvider{dir: dir}
}

func (p *FallbackProvider) Name() string { return "fallback" }

// Available reports whether the fixture directory exists.
func (p *FallbackProvider) Available(ctx context.Context) bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// Load reads stops.json, routes.json and flights.json from the fixture
// directory and maps them into a RawDataset with source="fallback".
func (p *FallbackProvider) Load(ctx context.Context) (domain.RawDataset, error) {
	raw := domain.RawDataset{SourceName: "fallback", FetchedAt: time.Now().UTC()}

	if err := readFixture(filepath.Join(p.dir, "stops.json"), &raw.Stops); err != nil {
		return domain.RawDataset{}, err
	}
	if err := readFixture(filepath.Join(p.dir, "routes.json"), &raw.Routes); err != nil {
		return domain.RawDataset{}, err
	}
	if err := readFixture(filepath.Join(p.dir, "flights.json"), &raw.Flights); err != nil {
		return domain.RawDataset{}, err
	}

	return raw, nil
}

func readFixture(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &FetchError{Kind: FetchErrorConnection, Source: "fallback", Cause: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{Kind: FetchErrorInvalid, Source: "fallback", Cause: err}
	}
	return nil
}
