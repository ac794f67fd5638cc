// Package imgdex keeps a gallery directory sequentially named and indexed.
//
// Example usage:
//
//	plan, err := imgdex.BuildPlan("/path/to/gallery")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := plan.Apply(); err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := imgdex.DefaultConfig()
//	cfg.Dir = "/path/to/gallery"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := imgdex.Serve(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package imgdex

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/duckworks/imgdex/internal/cliconfig"
	"github.com/duckworks/imgdex/internal/metadata"
	"github.com/duckworks/imgdex/internal/rename"
	"github.com/duckworks/imgdex/internal/server"
)

// Config holds the configuration for serving and indexing a gallery.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Plan is a validated rename plan for one directory snapshot.
type Plan = rename.Plan

// Result reports what a rename run changed.
type Result = rename.Result

// ImageInfo is one entry of the metadata index.
type ImageInfo = metadata.Info

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set Dir before calling Serve or GenerateMetadata.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// BuildPlan snapshots dir and computes a validated rename plan without
// touching the filesystem. Call Apply on the plan to execute it.
func BuildPlan(dir string) (*Plan, error) {
	return rename.BuildPlan(dir)
}

// GenerateMetadata scans cfg.Dir and rewrites the metadata index once,
// returning the entries written. cfg must be validated.
func GenerateMetadata(cfg Config) ([]ImageInfo, error) {
	gen := metadata.New(cfg.Dir, cfg.MetadataFile, cfg.Extensions, Logger(cfg.Verbose))
	return gen.Generate()
}

// Serve runs the gallery HTTP server with its change watcher until ctx
// is cancelled. cfg must be validated.
func Serve(ctx context.Context, cfg Config) error {
	log := Logger(cfg.Verbose)
	gen := metadata.New(cfg.Dir, cfg.MetadataFile, cfg.Extensions, log)
	srv := server.New(server.Options{
		ListenAddr:    cfg.ListenAddr,
		PollInterval:  cfg.PollInterval,
		DebounceDelay: cfg.DebounceDelay,
		HTTPTimeout:   cfg.HTTPTimeout,
	}, gen, log)
	return srv.Run(ctx)
}

// Logger returns the zerolog logger used by imgdex components.
func Logger(verbose bool) zerolog.Logger {
	return cliconfig.Logger(verbose)
}
