package config

import "os"

// CredentialProvider resolves the categorization service API key.
type CredentialProvider interface {
	CategorizationAPIKey() string
}

// StaticCredentials returns the key captured in the loaded configuration,
// falling back to GEMINI_API_KEY at call time. Disabling AI yields "".
type StaticCredentials struct {
	cfg *Config
}

// NewCredentialProvider builds a provider over cfg.
func NewCredentialProvider(cfg *Config) *StaticCredentials {
	return &StaticCredentials{cfg: cfg}
}

func (s *StaticCredentials) CategorizationAPIKey() string {
	if s.cfg != nil {
		if !s.cfg.AI.Enabled {
			return ""
		}
		if s.cfg.AI.APIKey != "" {
			return s.cfg.AI.APIKey
		}
	}
	return os.Getenv("GEMINI_API_KEY")
}
