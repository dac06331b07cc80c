package auth

import (
	"fmt"
	"os"
	"strings"
)

// AuthModeMemory is the only supported mode: a single-process deployment
// keeps accounts and sessions in the Manager's in-memory tables. Bot
// credentials don't need to survive a process restart across the table's
// lifetime, so there is no persistent-storage mode to pick between.
const AuthModeMemory = "memory"

func authModeFromEnv() string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if raw == "" {
		return AuthModeMemory
	}
	return raw
}

func NewServiceFromEnv() (Service, string, error) {
	mode := authModeFromEnv()

	switch mode {
	case AuthModeMemory, "mem":
		return NewManager(), AuthModeMemory, nil
	default:
		return nil, mode, fmt.Errorf("invalid AUTH_MODE %q (supported: %s)", mode, AuthModeMemory)
	}
}
