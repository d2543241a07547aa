package config

import "github.com/rs/zerolog/log"

// GetRedisURL returns the optional Redis address used to mirror Q&A
// history between sessions. Empty means the in-memory store.
func GetRedisURL() string {
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		log.Debug().Msg("Redis URL not set - history mirror will use in-memory storage")
	}
	return value
}

func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
