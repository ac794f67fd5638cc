package rename

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// TempSuffix is appended to a final name to form the intermediate name
// used during the first rename phase.
const TempSuffix = ".imgdextmp"

// minPadWidth keeps small galleries comfortably padded.
const minPadWidth = 4

// Planning errors. Each is wrapped with the offending filename and is
// detected before any rename happens.
var (
	// ErrNameCollision means a planned final name would overwrite a
	// preserved numbered file.
	ErrNameCollision = errors.New("imgdex: rename target collides with existing numbered file")

	// ErrDuplicateTarget means two planned renames share a final name.
	// Unreachable while assigned indices are distinct, checked anyway.
	ErrDuplicateTarget = errors.New("imgdex: duplicate rename targets")

	// ErrTempExists means an intermediate name is already taken on disk.
	ErrTempExists = errors.New("imgdex: temp name already exists")
)

// Action is one planned rename: Source moves to Temp in phase one and
// Temp moves to Final in phase two. Temp and Final are basenames inside
// the plan's directory.
type Action struct {
	Source Entry
	Temp   string
	Final  string
}

// Plan is the complete, validated outcome of one directory snapshot.
type Plan struct {
	Dir       string
	Keep      []Entry // preserved numbered files, ascending by index
	NextIndex int
	Pad       int
	Actions   []Action
}

// Total is the number of image files after the plan runs.
func (p *Plan) Total() int { return len(p.Keep) + len(p.Actions) }

// Empty reports whether the plan performs no renames.
func (p *Plan) Empty() bool { return len(p.Actions) == 0 }

// padWidth returns the zero-pad width for the final total: enough digits
// for total, never fewer than minPadWidth.
func padWidth(total int) int {
	pad := len(fmt.Sprintf("%d", total))
	if pad < minPadWidth {
		pad = minPadWidth
	}
	return pad
}

// BuildPlan snapshots dir and computes the full rename plan. All
// validation happens here; Apply performs no further checks. The
// returned plan may be empty (nothing to rename) without error.
func BuildPlan(dir string) (*Plan, error) {
	entries, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	numbered, unnumbered := Classify(entries)
	return compose(dir, numbered, Order(unnumbered))
}

func compose(dir string, numbered map[int]Entry, ordered []Entry) (*Plan, error) {
	indices := make([]int, 0, len(numbered))
	for n := range numbered {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	next := 1
	if len(indices) > 0 {
		next = indices[len(indices)-1] + 1
	}
	pad := padWidth(len(indices) + len(ordered))

	plan := &Plan{
		Dir:       dir,
		Keep:      make([]Entry, 0, len(indices)),
		NextIndex: next,
		Pad:       pad,
		Actions:   make([]Action, 0, len(ordered)),
	}
	for _, n := range indices {
		plan.Keep = append(plan.Keep, numbered[n])
	}

	idx := next
	for _, src := range ordered {
		final := fmt.Sprintf("%0*d%s", pad, idx, src.Ext)
		plan.Actions = append(plan.Actions, Action{
			Source: src,
			Temp:   final + TempSuffix,
			Final:  final,
		})
		idx++
	}

	if err := plan.validate(numbered); err != nil {
		return nil, err
	}
	return plan, nil
}

// validate runs the planning checks: no planned final name may claim a
// preserved file's rendered name, no two planned finals may coincide,
// and no temporary name may already exist on disk. Any failure aborts
// the run before the executor touches anything.
func (p *Plan) validate(numbered map[int]Entry) error {
	finals := make(map[string]bool, len(p.Actions))
	dup := ""
	for _, a := range p.Actions {
		if finals[a.Final] && dup == "" {
			dup = a.Final
		}
		finals[a.Final] = true
	}

	for n, e := range numbered {
		rendered := fmt.Sprintf("%0*d%s", p.Pad, n, e.Ext)
		if finals[rendered] {
			return fmt.Errorf("%w: %s", ErrNameCollision, rendered)
		}
	}
	if dup != "" {
		return fmt.Errorf("%w: %s", ErrDuplicateTarget, dup)
	}
	for _, a := range p.Actions {
		_, err := os.Lstat(filepath.Join(p.Dir, a.Temp))
		if err == nil {
			return fmt.Errorf("%w: %s", ErrTempExists, a.Temp)
		}
		// Only a confirmed absence clears the temp name; a stat failure
		// could be hiding an existing file.
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check temp name %s: %w", a.Temp, err)
		}
	}
	return nil
}
