package access

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulov/spacefs/pkg/models"
)

func testSpaces() SpacesConfig {
	return SpacesConfig{
		VolumeRoot:   "/srv/volume",
		PersonalRoot: "/srv/personal",
	}
}

func testFs(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(fsys, p, []byte("x"), 0o644))
	}
	return fsys
}

func TestResolver_ResolvePersonal(t *testing.T) {
	t.Parallel()

	fsys := testFs(t, "/srv/personal/alice/docs/notes.txt")
	r := NewResolver(fsys, testSpaces())

	resolved, err := r.ResolvePersonal("alice", "docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "/srv/personal/alice/docs/notes.txt", resolved.AbsolutePath)
	assert.Equal(t, "/srv/personal/alice", resolved.Root)
	assert.Equal(t, models.SpacePersonal, resolved.Space)
}

func TestResolver_ResolveVolume(t *testing.T) {
	t.Parallel()

	fsys := testFs(t, "/srv/volume/finance/q3.xlsx", "/mnt/projects/plan.md")
	r := NewResolver(fsys, testSpaces())

	t.Run("shared root", func(t *testing.T) {
		resolved, err := r.ResolveVolume(nil, "finance/q3.xlsx")
		require.NoError(t, err)
		assert.Equal(t, "/srv/volume/finance/q3.xlsx", resolved.AbsolutePath)
		assert.Equal(t, "/srv/volume", resolved.Root)
	})

	t.Run("user volume root", func(t *testing.T) {
		volume := &models.UserVolume{Label: "projects", RealRootPath: "/mnt/projects"}
		resolved, err := r.ResolveVolume(volume, "plan.md")
		require.NoError(t, err)
		assert.Equal(t, "/mnt/projects/plan.md", resolved.AbsolutePath)
		assert.Equal(t, "/mnt/projects", resolved.Root)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := r.ResolveVolume(nil, "finance/missing.xlsx")
		assert.ErrorIs(t, err, ErrPathNotFound)
	})
}

func TestResolver_ContainmentRevalidated(t *testing.T) {
	t.Parallel()

	fsys := testFs(t, "/srv/volume/finance/q3.xlsx", "/etc/passwd")
	r := NewResolver(fsys, testSpaces())

	// The resolver re-checks containment even if an upstream normalization bug
	// were to hand it a traversal path.
	_, err := r.ResolveVolume(nil, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathEscapesRoot)
}

func TestJoinWithinRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    string
		rel     string
		want    string
		escapes bool
	}{
		{name: "inside", root: "/srv/volume", rel: "a/b", want: "/srv/volume/a/b"},
		{name: "root itself", root: "/srv/volume", rel: "", want: "/srv/volume"},
		{name: "trailing slash root", root: "/srv/volume/", rel: "a", want: "/srv/volume/a"},
		{name: "escapes upward", root: "/srv/volume", rel: "../other", escapes: true},
		{name: "sneaky prefix sibling", root: "/srv/volume", rel: "../volume-backup/x", escapes: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := joinWithinRoot(tc.root, tc.rel)
			if tc.escapes {
				assert.ErrorIs(t, err, ErrPathEscapesRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolver_ResolveShare(t *testing.T) {
	t.Parallel()

	fsys := testFs(t,
		"/srv/volume/finance/report.pdf",
		"/srv/volume/finance/sub/detail.csv",
		"/srv/personal/bob/photo.jpg",
		"/mnt/bobdisk/docs/plan.md",
	)
	r := NewResolver(fsys, testSpaces())

	t.Run("directory share inner path", func(t *testing.T) {
		share := &models.Share{SourceSpace: models.SpaceVolume, SourcePath: "finance", IsDirectory: true}
		resolved, err := r.ResolveShare(share, nil, "sub/detail.csv")
		require.NoError(t, err)
		assert.Equal(t, "/srv/volume/finance/sub/detail.csv", resolved.AbsolutePath)
		assert.False(t, resolved.ShareFile)
	})

	t.Run("personal source", func(t *testing.T) {
		share := &models.Share{OwnerID: "bob", SourceSpace: models.SpacePersonal, SourcePath: "photo.jpg"}
		resolved, err := r.ResolveShare(share, nil, "")
		require.NoError(t, err)
		assert.Equal(t, "/srv/personal/bob/photo.jpg", resolved.AbsolutePath)
		assert.True(t, resolved.ShareFile)
	})

	t.Run("owner volume label stripped", func(t *testing.T) {
		share := &models.Share{OwnerID: "bob", SourceSpace: models.SpaceVolume, SourcePath: "bobdisk/docs", IsDirectory: true}
		ownerVolume := &models.UserVolume{Label: "bobdisk", RealRootPath: "/mnt/bobdisk"}
		resolved, err := r.ResolveShare(share, ownerVolume, "plan.md")
		require.NoError(t, err)
		assert.Equal(t, "/mnt/bobdisk/docs/plan.md", resolved.AbsolutePath)
		assert.Equal(t, "/mnt/bobdisk", resolved.Root)
	})

	t.Run("file share accepts its own name", func(t *testing.T) {
		share := &models.Share{SourceSpace: models.SpaceVolume, SourcePath: "finance/report.pdf"}
		resolved, err := r.ResolveShare(share, nil, "report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "/srv/volume/finance/report.pdf", resolved.AbsolutePath)
		assert.True(t, resolved.ShareFile)
	})

	t.Run("file share rejects other inner paths", func(t *testing.T) {
		share := &models.Share{SourceSpace: models.SpaceVolume, SourcePath: "finance/report.pdf"}
		_, err := r.ResolveShare(share, nil, "sibling.pdf")
		assert.ErrorIs(t, err, ErrPathNotFound)
	})
}

func TestResolver_ShareEntries(t *testing.T) {
	t.Parallel()

	fsys := testFs(t,
		"/srv/volume/finance/report.pdf",
		"/srv/volume/finance/sub/detail.csv",
	)
	r := NewResolver(fsys, testSpaces())

	t.Run("file share lists one synthetic entry", func(t *testing.T) {
		share := &models.Share{SourceSpace: models.SpaceVolume, SourcePath: "finance/report.pdf"}
		resolved, err := r.ResolveShare(share, nil, "")
		require.NoError(t, err)

		entries, err := r.ShareEntries(resolved)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "report.pdf", entries[0].Name())
	})

	t.Run("directory share lists the directory", func(t *testing.T) {
		share := &models.Share{SourceSpace: models.SpaceVolume, SourcePath: "finance", IsDirectory: true}
		resolved, err := r.ResolveShare(share, nil, "")
		require.NoError(t, err)

		entries, err := r.ShareEntries(resolved)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
