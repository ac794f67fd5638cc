package rename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotADirectory is returned by Scan when the target path is missing or
// is not a directory. Checkable with errors.Is.
var ErrNotADirectory = errors.New("imgdex: not a directory")

// allowedExtensions are the image extensions the renamer operates on,
// lowercase with leading dot.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// numberedStemRE matches stems that are already a sequential index,
// optionally zero-padded (0001, 12, 00042).
var numberedStemRE = regexp.MustCompile(`^0*(\d+)$`)

// Entry is one scanned file. Immutable after Scan.
type Entry struct {
	Dir  string
	Name string
	Stem string // Name without extension
	Ext  string // lowercased, with leading dot
}

// Path returns the entry's full path.
func (e Entry) Path() string { return filepath.Join(e.Dir, e.Name) }

func newEntry(dir, name string) Entry {
	ext := filepath.Ext(name)
	return Entry{
		Dir:  dir,
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  strings.ToLower(ext),
	}
}

// Scan lists dir and returns entries for every regular file whose
// extension is an allowed image extension. The listing order is the
// directory order as returned by os.ReadDir (sorted by filename).
func Scan(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var entries []Entry
	for _, d := range des {
		if !d.Type().IsRegular() {
			continue
		}
		e := newEntry(dir, d.Name())
		if allowedExtensions[e.Ext] {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// parseIndex parses a stem as a sequential index. Stems longer than a
// plausible index (overflowing int) are treated as not numbered.
func parseIndex(stem string) (int, bool) {
	m := numberedStemRE.FindStringSubmatch(stem)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Classify partitions entries into numbered files (keyed by their parsed
// index) and files that still need a name. When two files resolve to the
// same index (0005.png and 5.jpg) the lexicographically smallest filename
// is the authoritative entry for that index; both files are preserved and
// neither is renamed.
func Classify(entries []Entry) (map[int]Entry, []Entry) {
	numbered := make(map[int]Entry)
	var unnumbered []Entry
	for _, e := range entries {
		n, ok := parseIndex(e.Stem)
		if !ok {
			unnumbered = append(unnumbered, e)
			continue
		}
		if prev, dup := numbered[n]; !dup || e.Name < prev.Name {
			numbered[n] = e
		}
	}
	return numbered, unnumbered
}
