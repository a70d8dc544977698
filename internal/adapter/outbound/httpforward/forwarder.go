// Package httpforward implements the usecase.Forwarder interface over
// standard net/http against a configured internal base URL.
package httpforward

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
)

// Forwarder sends translated requests to the internal router.
type Forwarder struct {
	base   *url.URL
	client *http.Client
	logger *slog.Logger
}

// New creates a Forwarder targeting base, e.g. "http://localhost:3000".
func New(base string, client *http.Client, logger *slog.Logger) (*Forwarder, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid internal base URL %s: %w", base, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{
		base:   u,
		client: client,
		logger: logger.With("component", "http_forwarder"),
	}, nil
}

// Forward resolves req against the base URL and executes it. The response
// and any transport error propagate unchanged; no retries.
func (f *Forwarder) Forward(ctx context.Context, req *http.Request) (*http.Response, error) {
	out := req.Clone(ctx)
	out.URL.Scheme = f.base.Scheme
	out.URL.Host = f.base.Host
	out.URL.Path = path.Join(f.base.Path, out.URL.Path)
	out.RequestURI = ""
	out.Host = ""

	log := f.logger.With(
		slog.String("method", out.Method),
		slog.String("url", out.URL.String()))
	log.Debug("Forwarding request.")

	resp, err := f.client.Do(out)
	if err != nil {
		log.Error("Forwarded request failed.", slog.Any("error", err))
		return nil, fmt.Errorf("forward %s %s: %w", out.Method, out.URL, err)
	}
	log.Debug("Received response.", slog.Int("status_code", resp.StatusCode))
	return resp, nil
}
