// mongodb/validate.go
package mongodb

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURI does a lightweight shape check of a Mongo connection string.
// It accepts mongodb:// and mongodb+srv:// schemes, requires a non-empty host,
// and rejects CR/LF characters.
func ValidateURI(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty")
	}
	if strings.ContainsAny(raw, "\r\n") {
		return fmt.Errorf("contains CR/LF")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
	default:
		return fmt.Errorf(`scheme must be "mongodb" or "mongodb+srv" (got %q)`, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("missing host")
	}

	return nil
}

// ValidateDatabaseName rejects names the server would refuse.
func ValidateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("empty")
	}
	if len(name) >= 64 {
		return fmt.Errorf("must be shorter than 64 bytes")
	}
	if strings.ContainsAny(name, `/\. "$*<>:|?`+"\x00") {
		return fmt.Errorf("contains a character not allowed in database names")
	}
	return nil
}

// RedactURI returns the URI with any password replaced, for logging.
// Unparseable input is redacted entirely.
func RedactURI(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}
