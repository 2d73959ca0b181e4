package secret

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which mailshot stores SMTP
// passwords in the OS keyring. The keyring account is the SMTP username.
const KeyringService = "mailshot"

var (
	// ErrNoCredential is returned when none of the configured sources yields a
	// password.
	ErrNoCredential = errors.New("no SMTP credential found")
	// ErrEmptyPassword is returned by Store for a blank password.
	ErrEmptyPassword = errors.New("password must not be empty")
)

// Source describes where the credential may be found. Sources are consulted in
// the order Env, File, Keyring; the first non-empty value wins.
type Source struct {
	Env     string
	File    string
	Keyring bool
	Account string
}

// Resolve returns the credential described by src.
func Resolve(src Source) (string, error) {
	var tried []string

	if src.Env != "" {
		if value := os.Getenv(src.Env); strings.TrimSpace(value) != "" {
			return value, nil
		}
		tried = append(tried, fmt.Sprintf("env %s unset", src.Env))
	}

	if src.File != "" {
		content, err := os.ReadFile(src.File)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Only the line ending is dropped; spaces may be part of the password.
		if value := strings.TrimRight(string(content), "\r\n"); strings.TrimSpace(value) != "" {
			return value, nil
		}
		tried = append(tried, fmt.Sprintf("file %s empty", src.File))
	}

	if src.Keyring {
		if src.Account == "" {
			return "", errors.New("keyring lookup requires an account")
		}
		value, err := keyring.Get(KeyringService, src.Account)
		switch {
		case err == nil && value != "":
			return value, nil
		case err == nil, errors.Is(err, keyring.ErrNotFound):
			tried = append(tried, fmt.Sprintf("keyring %s/%s not found", KeyringService, src.Account))
		default:
			return "", fmt.Errorf("failed to read keyring: %w", err)
		}
	}

	if len(tried) == 0 {
		return "", fmt.Errorf("%w: no source configured", ErrNoCredential)
	}
	return "", fmt.Errorf("%w (%s)", ErrNoCredential, strings.Join(tried, "; "))
}

// Store saves password for account in the OS keyring.
func Store(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("account is required")
	}
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if err := keyring.Set(KeyringService, account, password); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

// Delete removes the keyring entry for account. A missing entry is not an
// error.
func Delete(account string) error {
	if err := keyring.Delete(KeyringService, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring entry: %w", err)
	}
	return nil
}
