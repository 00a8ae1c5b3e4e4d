package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: invalid int key=%s value=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func GetInt64(key string, fallback int64) int64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("config: invalid int key=%s value=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func GetFloat(key string, fallback float64) float64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: invalid float key=%s value=%q, using %g", key, raw, fallback)
		return fallback
	}
	return v
}

// GetDuration parses Go duration strings such as "30s" or "5m".
func GetDuration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: invalid duration key=%s value=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

func GetBool(key string, fallback bool) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: invalid bool key=%s value=%q, using %t", key, raw, fallback)
		return fallback
	}
	return v
}
