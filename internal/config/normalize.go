package config

import (
	"os"
	"strings"
)

// normalize expands paths, applies environment fallbacks for provider
// credentials, and canonicalizes enum-style fields.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StorageDir, err = expandPath(c.Paths.StorageDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	if c.Providers.OpenAI.APIKey == "" {
		c.Providers.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Providers.Gemini.APIKey == "" {
		c.Providers.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if len(c.Subtitles.LanguagePriority) == 0 {
		c.Subtitles.LanguagePriority = Default().Subtitles.LanguagePriority
	}

	return nil
}
