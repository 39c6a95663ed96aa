// Package validation checks user-supplied input before it reaches the
// importer or the library.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateFeedURL checks that raw is a usable http(s) feed address.
func ValidateFeedURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("feed URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("feed URL is missing a host")
	}

	return nil
}

// ValidateName checks a voizy's display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > 200 {
		return fmt.Errorf("name too long (%d characters, max 200)", len(name))
	}
	return nil
}
