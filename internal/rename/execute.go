package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Result reports what Apply changed.
type Result struct {
	Preserved int
	Renamed   int
}

// ExecError describes a rename failure partway through Apply. The
// directory is left in a mixed state: Completed lists final names already
// in place, Stranded lists temp names still on disk. An operator can
// finish the run manually by stripping the temp suffix from each
// stranded name.
type ExecError struct {
	Phase     string // "stage" or "finalize"
	Name      string // the name the failed rename was moving
	Err       error
	Completed []string
	Stranded  []string
}

func (e *ExecError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "imgdex: %s %s: %v", e.Phase, e.Name, e.Err)
	if len(e.Completed) > 0 {
		fmt.Fprintf(&b, " (completed: %s)", strings.Join(e.Completed, ", "))
	}
	if len(e.Stranded) > 0 {
		fmt.Fprintf(&b, " (temp names left on disk: %s)", strings.Join(e.Stranded, ", "))
	}
	return b.String()
}

func (e *ExecError) Unwrap() error { return e.Err }

// Apply executes the plan's renames in two phases. Phase one moves every
// source to its temporary name; only then does phase two move the temps
// to their final names. Every source therefore vacates its original name
// before any final name is claimed, so a final name equal to another
// source's current name can never overwrite it.
//
// A failing rename aborts immediately with an *ExecError; nothing is
// rolled back.
func (p *Plan) Apply() (Result, error) {
	staged := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		if err := os.Rename(a.Source.Path(), filepath.Join(p.Dir, a.Temp)); err != nil {
			return Result{}, &ExecError{
				Phase:    "stage",
				Name:     a.Source.Name,
				Err:      err,
				Stranded: staged,
			}
		}
		staged = append(staged, a.Temp)
	}

	completed := make([]string, 0, len(p.Actions))
	for i, a := range p.Actions {
		temp := filepath.Join(p.Dir, a.Temp)
		final := filepath.Join(p.Dir, a.Final)
		if err := os.Rename(temp, final); err != nil {
			return Result{}, &ExecError{
				Phase:     "finalize",
				Name:      a.Temp,
				Err:       err,
				Completed: completed,
				Stranded:  staged[i:],
			}
		}
		completed = append(completed, a.Final)
	}

	return Result{Preserved: len(p.Keep), Renamed: len(p.Actions)}, nil
}
