package supabase

import (
	"fmt"
	"strings"

	"clementus360/taskboard/config"

	"github.com/supabase-community/supabase-go"
)

// NewClient creates a client with the project's anon key.
func NewClient(settings config.Settings) (*supabase.Client, error) {
	if settings.SupabaseURL == "" || settings.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
	}

	client, err := supabase.NewClient(settings.SupabaseURL, settings.SupabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return client, nil
}

// ClientForToken creates a client that acts as the owner of accessToken, so
// row level security scopes every query to that user.
func ClientForToken(settings config.Settings, accessToken string) (*supabase.Client, Claims, error) {
	accessToken = strings.TrimSpace(strings.TrimPrefix(accessToken, "Bearer "))
	claims, err := ParseClaims(accessToken, settings.JWTSecret)
	if err != nil {
		return nil, Claims{}, err
	}

	client, err := supabase.NewClient(settings.SupabaseURL, settings.SupabaseKey, &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	})
	if err != nil {
		return nil, Claims{}, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return client, claims, nil
}
