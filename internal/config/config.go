// Package config loads the three environment inputs the core requires.
// Everything else is argument-level, per spec §9 Design Notes.
package config

import (
	"os"

	"github.com/hx-helix/memplane/internal/herrors"
)

// Config holds the credentials needed to reach the backing store.
type Config struct {
	SupabaseURL     string
	ServiceRoleKey  string
	DatabaseURL     string
}

// Load reads SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY, and SUPABASE_DB_URL
// from the environment. Absence of any of them is fatal: the caller
// should log the error and exit rather than try to continue degraded.
func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DatabaseURL:    os.Getenv("SUPABASE_DB_URL"),
	}

	switch {
	case cfg.SupabaseURL == "":
		return nil, herrors.Fatalf("SUPABASE_URL not set")
	case cfg.ServiceRoleKey == "":
		return nil, herrors.Fatalf("SUPABASE_SERVICE_ROLE_KEY not set")
	case cfg.DatabaseURL == "":
		return nil, herrors.Fatalf("SUPABASE_DB_URL not set")
	}

	return cfg, nil
}
