package logging

import (
	"io"
	"os"
)

// Config holds the logger configuration as loaded from the environment.
type Config struct {
	// Level is the minimum level to emit (DEBUG, INFO, WARN, ERROR, FATAL)
	Level string
	// Format is the output format; only json is currently produced
	Format string
	// Output is the destination (stdout, stderr, or a file path)
	Output string
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// NewLogger creates a logger from the configuration.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	return New(ParseLevel(cfg.Level), output), nil
}

// openOutput resolves the configured destination to a writer. Anything that
// is not a well-known stream name is treated as a file path and appended to.
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	default:
		return os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	}
}
