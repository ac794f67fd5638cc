package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (IMGDEX_*). It respects flags that have been explicitly set (changed
// map). Returns an error if a variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("dir", os.Getenv("IMGDEX_DIR"), &cfg.Dir)
	s.setString("metadata-file", os.Getenv("IMGDEX_METADATA_FILE"), &cfg.MetadataFile)
	s.setString("listen", os.Getenv("IMGDEX_LISTEN_ADDR"), &cfg.ListenAddr)

	if err := s.setDuration("poll", os.Getenv("IMGDEX_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("IMGDEX_DEBOUNCE_DELAY"), &cfg.DebounceDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("IMGDEX_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setStringsFromString("extensions", os.Getenv("IMGDEX_EXTENSIONS"), &cfg.Extensions)
	s.setBoolFromString("verbose", os.Getenv("IMGDEX_VERBOSE"), &cfg.Verbose)

	return nil
}
