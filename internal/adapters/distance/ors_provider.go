package distance

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	DefaultORSProfile = "driving-car"
)

// ErrORSUnavailable is returned while the circuit breaker is open.
var ErrORSUnavailable = errors.New("ORS unavailable: circuit breaker is open")

// ORSConfig holds the connection settings for OpenRouteService.
type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile string
	Timeout time.Duration
	// Country restricts geocoding results (ISO alpha-2). Empty means worldwide.
	Country string
}

// ORSProvider fills travel matrices and geocodes addresses using
// OpenRouteService.
//
// It coordinates:
//   - One batched matrix request per populate
//   - Address normalization for geocoding
//   - External API calls with retry/backoff behind a circuit breaker
//
// Caching lives in CachedMatrixProvider and CachedGeocoder.
// The provider is safe for concurrent use.
type ORSProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	country string
	breaker *gobreaker.CircuitBreaker
	backoff time.Duration
}

func NewORSProvider(cfg ORSConfig) (*ORSProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultORSBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultORSProfile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	provider := &ORSProvider{
		session: &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: cfg.Profile,
		country: cfg.Country,
		backoff: 200 * time.Millisecond,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "ors",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}

	return provider, nil
}
