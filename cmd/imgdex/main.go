package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/duckworks/imgdex/internal/cliconfig"
	"github.com/duckworks/imgdex/internal/metadata"
	"github.com/duckworks/imgdex/internal/rename"
	"github.com/duckworks/imgdex/internal/server"
)

const longHelp = `imgdex keeps a gallery folder tidy: new images get stable, zero-padded
sequential names (ordered by the timestamp embedded in exported
filenames, alphabetically otherwise), already-numbered files are left
alone, and a small HTTP server publishes the folder together with a
metadata.json dimension index for the gallery frontend.`

var exampleUsage = strings.TrimSpace(`
  imgdex rename ~/Pictures/gallery --dry-run
  imgdex serve --dir ~/Pictures/gallery --listen :8000
  imgdex index --dir ~/Pictures/gallery
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	root := &cobra.Command{
		Use:     "imgdex",
		Short:   "Sequential image renamer and gallery metadata server",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
	}

	root.AddCommand(newRenameCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newIndexCmd())

	if err := root.Execute(); err != nil {
		log := cliconfig.Logger(false)
		log.Error().Err(err).Msg("imgdex")
		os.Exit(1)
	}
}

func newRenameCmd() *cobra.Command {
	var dryRun bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "rename <folder>",
		Short: "Assign sequential zero-padded names to new images",
		Long: strings.TrimSpace(`
Renames unnamed .png/.jpg/.jpeg files in a folder to the next free
zero-padded sequential indices. Files already named as a number are
preserved. New files with an embedded export timestamp are ordered
chronologically; the rest follow alphabetically. Renames go through
temporary names so no intermediate state ever has two files sharing a
name.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := cliconfig.Logger(verbose)
			out := cmd.OutOrStdout()

			plan, err := rename.BuildPlan(args[0])
			if err != nil {
				return err
			}
			if plan.Total() == 0 {
				fmt.Fprintln(out, "No image files (.png/.jpg/.jpeg) found in folder.")
				return nil
			}

			if dryRun {
				printPlan(cmd, plan)
				return nil
			}

			res, err := plan.Apply()
			if err != nil {
				return err
			}
			log.Debug().Int("preserved", res.Preserved).Int("renamed", res.Renamed).Msg("rename complete")
			fmt.Fprintf(out, "Done. Preserved %d numbered files; renamed %d new image files. Total = %d\n",
				res.Preserved, res.Renamed, plan.Total())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show actions without performing renames")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func printPlan(cmd *cobra.Command, plan *rename.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Existing numbered files preserved: %d (next index %d)\n",
		len(plan.Keep), plan.NextIndex)
	for _, e := range plan.Keep {
		fmt.Fprintf(out, "KEEP: %s\n", e.Name)
	}
	for _, a := range plan.Actions {
		fmt.Fprintf(out, "RENAME: %s -> %s (temp %s)\n", a.Source.Name, a.Final, a.Temp)
	}
	fmt.Fprintln(out, "DRY RUN complete.")
}

// loadConfig resolves the serve/index configuration with the usual
// precedence: flags beat IMGDEX_* environment variables beat the config
// file beat defaults.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	// The index command spells the metadata path --out.
	if changed["out"] {
		changed["metadata-file"] = true
	}

	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func newServeCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery folder over HTTP with a live metadata index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			log := cliconfig.Logger(cfg.Verbose)
			log.Info().Interface("config", cfg).Msg("configuration")

			gen := metadata.New(cfg.Dir, cfg.MetadataFile, cfg.Extensions, log)
			srv := server.New(server.Options{
				ListenAddr:    cfg.ListenAddr,
				PollInterval:  cfg.PollInterval,
				DebounceDelay: cfg.DebounceDelay,
				HTTPTimeout:   cfg.HTTPTimeout,
			}, gen, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.imgdex/config.toml)")
	cmd.Flags().StringVar(&cfg.Dir, "dir", cfg.Dir, "gallery image directory")
	cmd.Flags().StringVar(&cfg.MetadataFile, "metadata-file", cfg.MetadataFile, "metadata index path (default: <dir>/metadata.json)")
	cmd.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "address to listen on")
	cmd.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "directory poll interval for change detection")
	cmd.Flags().DurationVar(&cfg.DebounceDelay, "debounce", cfg.DebounceDelay, "delay after a filesystem event before re-indexing")
	cmd.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP read header timeout")
	cmd.Flags().StringSliceVar(&cfg.Extensions, "extensions", cfg.Extensions, "image extensions indexed by the metadata generator")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")
	return cmd
}

func newIndexCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Generate the metadata index once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			log := cliconfig.Logger(cfg.Verbose)

			gen := metadata.New(cfg.Dir, cfg.MetadataFile, cfg.Extensions, log)
			infos, err := gen.Generate()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d images to %s\n", len(infos), cfg.MetadataFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.imgdex/config.toml)")
	cmd.Flags().StringVar(&cfg.Dir, "dir", cfg.Dir, "gallery image directory")
	cmd.Flags().StringVar(&cfg.MetadataFile, "out", cfg.MetadataFile, "metadata index path (default: <dir>/metadata.json)")
	cmd.Flags().StringSliceVar(&cfg.Extensions, "extensions", cfg.Extensions, "image extensions to index")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")
	return cmd
}
