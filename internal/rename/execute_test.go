package rename

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(des))
	for i, d := range des {
		names[i] = d.Name()
	}
	return names
}

func TestApplyScenario(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ChatGPT Image Aug 22, 2025, 12_45_12 PM.png")
	touch(t, dir, "ChatGPT Image Aug 20, 2025, 09_10_00 AM.png")
	touch(t, dir, "random.jpg")
	touch(t, dir, "0001.png")

	plan, err := BuildPlan(dir)
	require.NoError(t, err)

	res, err := plan.Apply()
	require.NoError(t, err)
	assert.Equal(t, Result{Preserved: 1, Renamed: 3}, res)

	assert.ElementsMatch(t,
		[]string{"0001.png", "0002.png", "0003.png", "0004.jpg"},
		dirNames(t, dir))

	// Content followed the file through the rename.
	b, err := os.ReadFile(filepath.Join(dir, "0004.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "random.jpg", string(b))
}

func TestApplyIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ChatGPT Image Aug 20, 2025, 09_10_00 AM.png")
	touch(t, dir, "0001.png")

	plan, err := BuildPlan(dir)
	require.NoError(t, err)
	_, err = plan.Apply()
	require.NoError(t, err)

	second, err := BuildPlan(dir)
	require.NoError(t, err)
	assert.True(t, second.Empty())

	res, err := second.Apply()
	require.NoError(t, err)
	assert.Equal(t, Result{Preserved: 2, Renamed: 0}, res)
	assert.ElementsMatch(t, []string{"0001.png", "0002.png"}, dirNames(t, dir))
}

// A final name that equals another source's current name must never
// overwrite it: phase one moves every source to a temp name before phase
// two claims any final name. A two-file swap is the hardest case.
func TestApplyTwoPhaseSwap(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png")
	touch(t, dir, "b.png")

	plan := &Plan{
		Dir: dir,
		Actions: []Action{
			{Source: newEntry(dir, "a.png"), Temp: "b.png" + TempSuffix, Final: "b.png"},
			{Source: newEntry(dir, "b.png"), Temp: "a.png" + TempSuffix, Final: "a.png"},
		},
	}

	res, err := plan.Apply()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Renamed)

	assert.ElementsMatch(t, []string{"a.png", "b.png"}, dirNames(t, dir))

	a, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "b.png"))
	require.NoError(t, err)
	assert.Equal(t, "b.png", string(a))
	assert.Equal(t, "a.png", string(b))
}

func TestApplyFinalizeFailureReportsCompletedAndStranded(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ChatGPT Image Aug 20, 2025, 09_10_00 AM.png")
	touch(t, dir, "random.jpg")

	plan, err := BuildPlan(dir)
	require.NoError(t, err)
	require.Len(t, plan.Actions, 2)

	// A directory squatting on the second final name makes phase two
	// fail after the first final is already in place.
	require.NoError(t, os.Mkdir(filepath.Join(dir, plan.Actions[1].Final), 0o755))

	_, err = plan.Apply()
	require.Error(t, err)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "finalize", execErr.Phase)
	assert.Equal(t, plan.Actions[1].Temp, execErr.Name)
	assert.Equal(t, []string{plan.Actions[0].Final}, execErr.Completed)
	assert.Equal(t, []string{plan.Actions[1].Temp}, execErr.Stranded)
	assert.Contains(t, err.Error(), plan.Actions[0].Final)
	assert.Contains(t, err.Error(), plan.Actions[1].Temp)

	// The first file finished its rename; the second is still at its
	// temp name.
	_, statErr := os.Stat(filepath.Join(dir, plan.Actions[0].Final))
	require.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dir, plan.Actions[1].Temp))
	require.NoError(t, statErr)
}

func TestApplyStageFailureReportsStranded(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ChatGPT Image Aug 20, 2025, 09_10_00 AM.png")
	touch(t, dir, "random.jpg")

	plan, err := BuildPlan(dir)
	require.NoError(t, err)
	require.Len(t, plan.Actions, 2)

	// The second source disappears between planning and execution.
	require.NoError(t, os.Remove(plan.Actions[1].Source.Path()))

	_, err = plan.Apply()
	require.Error(t, err)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "stage", execErr.Phase)
	assert.Equal(t, plan.Actions[1].Source.Name, execErr.Name)
	assert.Equal(t, []string{plan.Actions[0].Temp}, execErr.Stranded)
	assert.Contains(t, err.Error(), plan.Actions[0].Temp)
}
