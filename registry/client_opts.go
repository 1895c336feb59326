package registry

import "log/slog"

// Option configures a Client.
type Option func(*Client)

// WithPlainHTTP enables HTTP (instead of HTTPS) for registry connections.
// Intended for local registries and tests.
func WithPlainHTTP(enabled bool) Option {
	return func(c *Client) {
		c.plainHTTP = enabled
	}
}

// WithUserAgent sets the User-Agent header for registry requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCredentials sets static username/password credentials.
//
// If host is non-empty, the credentials apply only to that registry host;
// otherwise they are sent to every registry the client talks to.
func WithCredentials(host, username, password string) Option {
	return func(c *Client) {
		c.credHost = host
		c.username = username
		c.password = password
	}
}

// WithLogger sets the logger for registry operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
