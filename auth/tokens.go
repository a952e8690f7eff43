/*
tokens.go - Manager token generation and persistence

PURPOSE:
  Tokens are generated once at first boot and stored in the settings
  table so manager links stay stable across restarts. An operator may
  supply an explicit value per department; an override always wins and
  is persisted in place of any stored one.

TOKEN SHAPE:
  32 characters from [a-zA-Z0-9], drawn from crypto/rand.
*/
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/eigida/vacations/vacation"
)

const (
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength   = 32
)

// SettingsStore is the slice of vacation.Store the token bootstrap needs.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

func settingKey(d vacation.Department) string {
	return "manager_token_" + string(d)
}

// GenerateToken returns a new random manager secret. Bytes outside the
// largest multiple of the alphabet size are rejected so every character
// is equally likely.
func GenerateToken() (string, error) {
	const limit = byte(256 - 256%len(tokenAlphabet))

	out := make([]byte, 0, tokenLength)
	buf := make([]byte, tokenLength)
	for len(out) < tokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == tokenLength {
				break
			}
		}
	}
	return string(out), nil
}

// EnsureTokens returns the manager token for every department, creating
// and persisting missing ones. Precedence per department: explicit
// override > stored setting > freshly generated.
func EnsureTokens(ctx context.Context, settings SettingsStore, overrides map[vacation.Department]string) (TokenSet, error) {
	tokens := make(TokenSet, len(vacation.AllDepartments))

	for _, dept := range vacation.AllDepartments {
		token, err := ensureToken(ctx, settings, dept, strings.TrimSpace(overrides[dept]))
		if err != nil {
			return nil, err
		}
		tokens[dept] = token
	}

	return tokens, nil
}

func ensureToken(ctx context.Context, settings SettingsStore, dept vacation.Department, override string) (string, error) {
	key := settingKey(dept)

	if override != "" {
		if err := settings.SetSetting(ctx, key, override); err != nil {
			return "", err
		}
		return override, nil
	}

	existing, err := settings.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	created, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := settings.SetSetting(ctx, key, created); err != nil {
		return "", err
	}
	return created, nil
}
