package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gate/internal/ir"
	"github.com/roach88/gate/internal/testutil"
)

func TestMove_File(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ent := f.e.FindByPath("test_dir/test.txt")
	oldParent := f.e.FindByPath("test_dir")
	newParent := f.e.FindByPath("test_dir/sub_dir")
	before := f.e.Versions()

	require.NoError(t, f.e.Move(ctx, "test_dir/test.txt", "test_dir/sub_dir"))

	assert.Equal(t, "test_dir/sub_dir/test.txt", Resolve(ent).Path)
	assert.False(t, Resolve(oldParent).Children.Contains(ent.ID))
	assert.True(t, Resolve(newParent).Children.Contains(ent.ID))

	after := f.e.Versions()
	require.Len(t, after, len(before)+1)

	assert.False(t, testutil.Exists(t, f.dir, "test_dir/test.txt"))
	assert.Equal(t, "test1", testutil.ReadFile(t, f.dir, "test_dir/sub_dir/test.txt"))
	assert.Empty(t, f.changes(t), "the move is already recorded")
}

func TestMove_DirectoryUpdatesDescendants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	child := f.e.FindByPath("test_dir/sub_dir/test2.txt")

	require.NoError(t, f.e.Move(ctx, "test_dir/sub_dir", "test_dir/empty_dir"))

	assert.Same(t, child, f.e.FindByPath("test_dir/empty_dir/sub_dir/test2.txt"))
	assert.Nil(t, f.e.FindByPath("test_dir/sub_dir"))
	assert.Equal(t, "test2", testutil.ReadFile(t, f.dir, "test_dir/empty_dir/sub_dir/test2.txt"))
	assert.Empty(t, f.changes(t))

	// Every Mod of the move shares one version.
	v := f.e.Versions()
	require.Len(t, v, 1)
	require.Len(t, child.Mods, 1)
	assert.Equal(t, ir.FieldPath, child.Mods[0].Field)
	assert.Equal(t, v[0].ID, child.Mods[0].Version.ID)
}

func TestMove_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.write(t, "test_dir/sub_dir/test.txt", "occupant")
	f.commit(t)

	tests := []struct {
		name    string
		src     string
		dst     string
		wantErr error
	}{
		{"untracked source", "nope.txt", "test_dir", ErrNotTracked},
		{"untracked destination", "test_dir/test.txt", "nope", ErrNotTracked},
		{"destination is a file", "test_dir/sub_dir/test2.txt", "test_dir/test.txt", ErrInvalidMove},
		{"into itself", "test_dir", "test_dir/sub_dir", ErrInvalidMove},
		{"occupied destination", "test_dir/test.txt", "test_dir/sub_dir", ErrInvalidMove},
		{"root", ".", "test_dir", ErrInvalidMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(f.e.Versions())
			err := f.e.Move(ctx, tt.src, tt.dst)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.e.Versions(), before)
		})
	}
}

func TestMove_SameParentIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.e.Move(context.Background(), "test_dir/test.txt", "test_dir"))
	assert.Empty(t, f.e.Versions())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ent := f.e.FindByPath("test_dir/test.txt")

	require.NoError(t, f.e.Remove(ctx, "test_dir/test.txt"))

	assert.Nil(t, f.e.FindByPath("test_dir/test.txt"))
	assert.False(t, testutil.Exists(t, f.dir, "test_dir/test.txt"))
	assert.Len(t, f.e.Versions(), 1)
	assert.Same(t, ent, f.e.Index().Get(ent.ID))
	assert.Empty(t, f.changes(t))
}

func TestRemove_AlreadyGoneFromDisk(t *testing.T) {
	f := newFixture(t)
	testutil.RemovePath(t, f.dir, "test_dir/sub_dir")

	require.NoError(t, f.e.Remove(context.Background(), "test_dir/sub_dir"))
	assert.Empty(t, f.changes(t))
}

func TestRemove_Untracked(t *testing.T) {
	f := newFixture(t)
	err := f.e.Remove(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, ErrNotTracked)
	assert.True(t, IsNotTracked(err))
}

func TestMutations_RequirePresent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.write(t, "test_dir/test.txt", "change")
	f.commit(t)
	_, err := f.e.TimeTravel(ctx, f.e.InitTime())
	require.NoError(t, err)

	assert.ErrorIs(t, f.e.Remove(ctx, "test_dir/test.txt"), ErrNotAtPresent)
	assert.ErrorIs(t, f.e.Move(ctx, "test_dir/test.txt", "test_dir/sub_dir"), ErrNotAtPresent)
}
