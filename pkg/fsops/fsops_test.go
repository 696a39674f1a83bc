package fsops

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestMove(t *testing.T) {
	t.Parallel()

	t.Run("renames a file", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/a/src.txt", "hello")
		require.NoError(t, fsys.MkdirAll("/b", 0o755))

		require.NoError(t, Move(fsys, "/a/src.txt", "/b/dst.txt"))

		assert.Equal(t, "hello", readFile(t, fsys, "/b/dst.txt"))
		exists, _ := afero.Exists(fsys, "/a/src.txt")
		assert.False(t, exists)
	})

	t.Run("moves a directory tree", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/a/dir/one.txt", "1")
		writeFile(t, fsys, "/a/dir/sub/two.txt", "2")

		require.NoError(t, Move(fsys, "/a/dir", "/b/dir"))

		assert.Equal(t, "1", readFile(t, fsys, "/b/dir/one.txt"))
		assert.Equal(t, "2", readFile(t, fsys, "/b/dir/sub/two.txt"))
		exists, _ := afero.Exists(fsys, "/a/dir/one.txt")
		assert.False(t, exists)
	})

	t.Run("missing source fails", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		assert.Error(t, Move(fsys, "/nope", "/dst"))
	})
}

func TestCopyAll(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/one.txt", "1")
	writeFile(t, fsys, "/src/sub/two.txt", "2")

	require.NoError(t, CopyAll(fsys, "/src", "/dst"))

	assert.Equal(t, "1", readFile(t, fsys, "/dst/one.txt"))
	assert.Equal(t, "2", readFile(t, fsys, "/dst/sub/two.txt"))

	// Source is untouched.
	assert.Equal(t, "1", readFile(t, fsys, "/src/one.txt"))
}

func TestDirSize(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/d/a.txt", "12345")
	writeFile(t, fsys, "/d/sub/b.txt", "123")

	total, err := DirSize(fsys, "/d")
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	single, err := DirSize(fsys, "/d/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), single)
}

func TestAvailableName(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/dir", 0o755))

	t.Run("free name is unchanged", func(t *testing.T) {
		name, err := AvailableName(fsys, "/dir", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "a.txt", name)
	})

	t.Run("counter before the extension", func(t *testing.T) {
		writeFile(t, fsys, "/dir/a.txt", "x")
		name, err := AvailableName(fsys, "/dir", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "a (1).txt", name)

		writeFile(t, fsys, "/dir/a (1).txt", "x")
		name, err = AvailableName(fsys, "/dir", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "a (2).txt", name)
	})

	t.Run("no extension", func(t *testing.T) {
		writeFile(t, fsys, "/dir/notes", "x")
		name, err := AvailableName(fsys, "/dir", "notes")
		require.NoError(t, err)
		assert.Equal(t, "notes (1)", name)
	})

	t.Run("directories collide too", func(t *testing.T) {
		require.NoError(t, fsys.MkdirAll("/dir/proj", 0o755))
		name, err := AvailableName(fsys, "/dir", "proj")
		require.NoError(t, err)
		assert.Equal(t, "proj (1)", name)
	})
}
