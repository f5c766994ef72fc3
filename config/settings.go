package config

import (
	"fmt"
	"slices"
	"time"
)

type Backend string

const (
	BackendREST     Backend = "rest"
	BackendSupabase Backend = "supabase"
	BackendMemory   Backend = "memory"
)

// Page sizes offered by the list page. The first one is the default.
var PageSizes = []int{10, 20, 50, 100}

const (
	DefaultAddr           = ":8080"
	DefaultAPIURL         = "http://localhost:8000"
	DefaultRequestTimeout = 15 * time.Second
	SessionCookieName     = "taskboard_session"
)

type Settings struct {
	Backend        Backend
	Addr           string
	APIURL         string
	SupabaseURL    string
	SupabaseKey    string
	JWTSecret      string
	PageSize       int
	RequestTimeout time.Duration
}

// Load builds Settings from the environment. Call LoadEnv first if a .env
// file should be honoured.
func Load() (Settings, error) {
	s := Settings{
		Backend:        Backend(envString("TASKBOARD_BACKEND", string(BackendREST))),
		Addr:           envString("TASKBOARD_ADDR", DefaultAddr),
		APIURL:         envString("TASKBOARD_API_URL", DefaultAPIURL),
		SupabaseURL:    envString("SUPABASE_URL", ""),
		SupabaseKey:    envString("SUPABASE_KEY", ""),
		JWTSecret:      envString("SUPABASE_JWT_SECRET", ""),
		PageSize:       envInt("TASKBOARD_PAGE_SIZE", PageSizes[0]),
		RequestTimeout: envDuration("TASKBOARD_REQUEST_TIMEOUT", DefaultRequestTimeout),
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	switch s.Backend {
	case BackendREST:
		if s.APIURL == "" {
			return fmt.Errorf("TASKBOARD_API_URL is required for the rest backend")
		}
	case BackendSupabase:
		if s.SupabaseURL == "" || s.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (supported: %s, %s, %s)", s.Backend, BackendREST, BackendSupabase, BackendMemory)
	}

	if !slices.Contains(PageSizes, s.PageSize) {
		return fmt.Errorf("page size %d is not one of %v", s.PageSize, PageSizes)
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", s.RequestTimeout)
	}
	return nil
}
