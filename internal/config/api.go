package config

// GetAPIBaseURL returns the base URL of the remote service.
func GetAPIBaseURL() string {
	return GetEnvOrDefault("LECTERN_API_URL", "http://localhost:8000")
}

// GetChatProvider returns the provider label recorded on Q&A history
// entries.
func GetChatProvider() string {
	return GetEnvOrDefault("LECTERN_PROVIDER", "qwen")
}
