package toolkit

import "time"

// Config holds settings for the Identity Toolkit REST client
type Config struct {
	// BaseURL is the service root, without the /v1 suffix
	BaseURL string
	// APIKey is sent as the key query parameter on every call
	APIKey string
	// Timeout bounds each HTTP call
	Timeout time.Duration
}

// DefaultConfig returns defaults pointing at the hosted Identity Toolkit API
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://identitytoolkit.googleapis.com",
		Timeout: 30 * time.Second,
	}
}
