package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/tally/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored for the entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrEmptySecret is returned when trying to store an empty secret
	ErrEmptySecret = errors.New("secret cannot be empty")
)

// Entry addresses a single secret in the OS keyring.
type Entry struct {
	Service string
	User    string
}

// ConnectionEntry is where the PostgreSQL connection string lives.
var ConnectionEntry = Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}

// Get returns the stored secret, or ErrNotFound.
func (e Entry) Get() (string, error) {
	secret, err := keyring.Get(e.Service, e.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores the secret, replacing any previous value.
func (e Entry) Set(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrEmptySecret
	}
	if err := keyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret. Returns ErrNotFound if nothing was stored.
func (e Entry) Delete() error {
	if err := keyring.Delete(e.Service, e.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string from the OS keyring.
func GetConnectionString() (string, error) {
	return ConnectionEntry.Get()
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	return ConnectionEntry.Set(connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return ConnectionEntry.Delete()
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Mask hides everything but the scheme and host of a connection string
// so it can be echoed back to the user.
func Mask(connStr string) string {
	if i := strings.Index(connStr, "://"); i >= 0 {
		rest := connStr[i+3:]
		if at := strings.LastIndex(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		if slash := strings.IndexAny(rest, "/?"); slash >= 0 {
			rest = rest[:slash]
		}
		return connStr[:i+3] + "***@" + rest + "/***"
	}
	if len(connStr) <= 4 {
		return "****"
	}
	return connStr[:4] + strings.Repeat("*", 8)
}
