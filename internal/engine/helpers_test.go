package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gate/internal/ignore"
	"github.com/roach88/gate/internal/testutil"
)

// quiet drops engine log output in tests.
var quiet = slog.New(slog.DiscardHandler)

// fixture bundles an engine over the standard clean tree.
type fixture struct {
	e     *Engine
	dir   string
	clock *testutil.SteppingClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return openFixture(t, testutil.NewCleanDir(t))
}

func openFixture(t *testing.T, dir string) *fixture {
	t.Helper()
	clock := testutil.NewSteppingClock()
	e, err := Open(context.Background(), dir, WithClock(clock), WithLogger(quiet))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return &fixture{e: e, dir: dir, clock: clock}
}

// write stores content at rel with an mtime after every recorded version.
func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	testutil.WriteFile(t, f.dir, rel, content, f.clock.Between())
}

func (f *fixture) commit(t *testing.T) CommitResult {
	t.Helper()
	res, err := f.e.Commit(context.Background())
	require.NoError(t, err)
	return res
}

func (f *fixture) changes(t *testing.T) []Change {
	t.Helper()
	changes, err := f.e.ChangedFiles()
	require.NoError(t, err)
	return changes
}

func (f *fixture) snapshot(t *testing.T) map[string]string {
	t.Helper()
	return testutil.Snapshot(t, f.dir, ignore.StateFile)
}
