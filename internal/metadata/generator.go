// Package metadata builds the JSON dimension index for a gallery
// directory. The index is a flat, pretty-printed array of
// {filename, width, height} objects in directory listing order; the
// gallery frontend fetches it to lay out images without loading them.
package metadata

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	// Register the decoders DecodeConfig relies on.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultExtensions are the extensions the generator recognizes.
// Formats without a registered decoder (.svg) are attempted and skipped
// with a warning like any other unreadable file.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"}

// Info is one entry in the index.
type Info struct {
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Generator scans one image directory and rewrites one output file.
// Safe to call repeatedly; each Generate overwrites the previous index.
type Generator struct {
	dir  string
	out  string
	exts map[string]bool
	log  zerolog.Logger
}

// New creates a generator for dir writing to out. exts may be nil to use
// DefaultExtensions.
func New(dir, out string, exts []string, log zerolog.Logger) *Generator {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[strings.ToLower(e)] = true
	}
	return &Generator{dir: dir, out: out, exts: m, log: log}
}

// Dir returns the scanned image directory.
func (g *Generator) Dir() string { return g.dir }

// OutputPath returns the path the index is written to.
func (g *Generator) OutputPath() string { return g.out }

// Generate scans the image directory and rewrites the index file,
// returning the entries written. A missing directory logs a warning and
// returns an empty slice without touching the output file. Files that
// cannot be decoded are skipped with a warning.
func (g *Generator) Generate() ([]Info, error) {
	des, err := os.ReadDir(g.dir)
	if err != nil {
		if os.IsNotExist(err) {
			g.log.Warn().Str("dir", g.dir).Msg("image directory missing, metadata not generated")
			return []Info{}, nil
		}
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	infos := make([]Info, 0, len(des))
	for _, d := range des {
		if d.IsDir() || !g.exts[strings.ToLower(filepath.Ext(d.Name()))] {
			continue
		}
		w, h, err := decodeSize(filepath.Join(g.dir, d.Name()))
		if err != nil {
			g.log.Warn().Err(err).Str("file", d.Name()).Msg("unreadable image skipped")
			continue
		}
		infos = append(infos, Info{Filename: d.Name(), Width: w, Height: h})
	}

	if err := g.write(infos); err != nil {
		return nil, err
	}
	g.log.Info().Int("images", len(infos)).Str("out", g.out).Msg("metadata updated")
	return infos, nil
}

func decodeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func (g *Generator) write(infos []Info) error {
	if dir := filepath.Dir(g.out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	b, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(g.out, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", g.out, err)
	}
	return nil
}
