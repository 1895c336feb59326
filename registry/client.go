// Package registry replicates snapshots to and from OCI registries.
//
// A snapshot is pushed as one OCI artifact: every reachable object (trees
// and content blobs) becomes a layer, and the manifest's annotations record
// which layer is the root tree. Any OCI 1.1 registry can host snapshots.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	orasregistry "oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

// Client provides snapshot push and pull against OCI registries.
//
// A single auth client with a token cache is shared across requests, so
// repeated operations against the same registry reuse tokens.
type Client struct {
	plainHTTP  bool
	userAgent  string
	credHost   string
	username   string
	password   string
	authClient *auth.Client
	logger     *slog.Logger
}

// New creates a new registry client with the given options.
//
// Without WithCredentials, anonymous access is used.
func New(opts ...Option) *Client {
	c := &Client{
		userAgent: "castree/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}

	c.authClient = &auth.Client{
		Client:     retry.DefaultClient,
		Cache:      auth.NewCache(),
		Credential: c.credential,
		Header: http.Header{
			"User-Agent": []string{c.userAgent},
		},
	}

	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// credential resolves credentials for a registry host.
func (c *Client) credential(_ context.Context, hostport string) (auth.Credential, error) {
	if c.username != "" && (c.credHost == "" || c.credHost == hostport) {
		return auth.Credential{Username: c.username, Password: c.password}, nil
	}
	return auth.EmptyCredential, nil
}

// repository creates a Repository for the given parsed reference.
// Uses the shared auth client to reuse tokens across requests.
func (c *Client) repository(ref orasregistry.Reference) (*remote.Repository, error) {
	repo, err := remote.NewRepository(ref.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	repo.PlainHTTP = c.plainHTTP
	repo.Client = c.authClient

	return repo, nil
}

// parseRef parses a full reference, requiring a tag.
func parseRef(ref string) (orasregistry.Reference, error) {
	r, err := orasregistry.ParseReference(ref)
	if err != nil {
		return orasregistry.Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if err := r.ValidateReferenceAsTag(); err != nil {
		return orasregistry.Reference{}, fmt.Errorf("%w: reference must include a tag", ErrInvalidReference)
	}
	return r, nil
}
