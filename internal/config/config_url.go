// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package config

import (
	"fmt"
	"net/url"
)

// validateSchemeURL parses rawURL and checks its scheme and host.
func validateSchemeURL(rawURL string, schemes ...string) (*url.URL, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	valid := false
	for _, s := range schemes {
		if parsedURL.Scheme == s {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("scheme must be one of %v, got: %s", schemes, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	return parsedURL, nil
}

// validateDatabaseURL validates a PostgreSQL connection URL.
func validateDatabaseURL(rawURL string) error {
	parsedURL, err := validateSchemeURL(rawURL, "postgres", "postgresql")
	if err != nil {
		return err
	}
	if parsedURL.Path == "" || parsedURL.Path == "/" {
		return fmt.Errorf("database name is required")
	}
	return nil
}

// validateRedisURL validates a Redis URL as accepted by redis.ParseURL.
func validateRedisURL(rawURL string) error {
	_, err := validateSchemeURL(rawURL, "redis", "rediss")
	return err
}

// validateNATSURL validates that the NATS URL is properly formatted
// Supports: nats://, tls://, and ws:// schemes with IP addresses/hostnames and optional ports
func validateNATSURL(rawURL string) error {
	_, err := validateSchemeURL(rawURL, "nats", "tls", "ws", "wss")
	return err
}
