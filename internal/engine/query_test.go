package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gate/internal/testutil"
)

func TestFindByName_PrefersShallowest(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"a/b/c/name.txt": "deep",
		"z/name.txt":     "shallow",
	})
	f := openFixture(t, dir)

	ent := f.e.FindByName("name.txt")
	require.NotNil(t, ent)
	assert.Equal(t, "z/name.txt", Resolve(ent).Path)
}

func TestFindByName_Missing(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.e.FindByName("nothing.txt"))
}

func TestFindByPath(t *testing.T) {
	f := newFixture(t)

	ent := f.e.FindByPath("test_dir/sub_dir/test2.txt")
	require.NotNil(t, ent)
	assert.Equal(t, "test2", string(ent.Data))

	assert.Same(t, f.e.Root(), f.e.FindByPath("."))
	assert.Same(t, ent, f.e.FindByPath("./test_dir/sub_dir/test2.txt/"))
	assert.Nil(t, f.e.FindByPath("test_dir/missing"))
}

func TestFindParent(t *testing.T) {
	f := newFixture(t)

	child := f.e.FindByPath("test_dir/sub_dir/test2.txt")
	parent := f.e.FindParent(child)
	require.NotNil(t, parent)
	assert.Equal(t, "test_dir/sub_dir", Resolve(parent).Path)

	assert.Nil(t, f.e.FindParent(f.e.Root()))
}

func TestVersions_NewestFirstWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	assert.Empty(t, f.e.Versions())

	f.write(t, "test_dir/test.txt", "change")
	first := f.commit(t)
	require.NoError(t, f.e.Move(ctx, "test_dir/sub_dir", "test_dir/empty_dir"))
	require.NoError(t, f.e.Remove(ctx, "test_dir/empty_dir/sub_dir"))

	versions := f.e.Versions()
	require.Len(t, versions, 3)
	assert.Equal(t, first.Version.ID, versions[2].ID)
	for i := 1; i < len(versions); i++ {
		assert.True(t, versions[i-1].Time.After(versions[i].Time))
	}
}

func TestListAt(t *testing.T) {
	f := newFixture(t)
	f.write(t, "later.txt", "later")
	res := f.commit(t)

	names := func(ls []Listing) []string {
		out := []string{}
		for _, l := range ls {
			out = append(out, l.Path)
		}
		return out
	}
	assert.NotContains(t, names(f.e.ListAt(f.e.InitTime())), "later.txt")
	assert.Contains(t, names(f.e.ListAt(res.Version.Time)), "later.txt")
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.write(t, "test_dir/test.txt", "change")
	first := f.commit(t)
	require.NoError(t, f.e.Move(ctx, "test_dir/test.txt", "test_dir/sub_dir"))

	revs, err := f.e.History("test_dir/sub_dir/test.txt")
	require.NoError(t, err)
	require.Len(t, revs, 3)

	assert.Nil(t, revs[0].Version)
	assert.Equal(t, "test_dir/test.txt", revs[0].Path)
	assert.Equal(t, "test1", string(revs[0].Data))

	require.NotNil(t, revs[1].Version)
	assert.Equal(t, first.Version.ID, revs[1].Version.ID)
	assert.Equal(t, "change", string(revs[1].Data))

	assert.Equal(t, "test_dir/sub_dir/test.txt", revs[2].Path)
	assert.Equal(t, "change", string(revs[2].Data))
}

func TestHistory_Untracked(t *testing.T) {
	f := newFixture(t)
	_, err := f.e.History("nope.txt")
	assert.ErrorIs(t, err, ErrNotTracked)
}
