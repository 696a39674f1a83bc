package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulov/spacefs/pkg/models"
)

func TestParsePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want ParsedPath
	}{
		{
			name: "volume file",
			in:   "volume/finance/q3.xlsx",
			want: ParsedPath{Space: models.SpaceVolume, Rest: "finance/q3.xlsx"},
		},
		{
			name: "volume root",
			in:   "volume",
			want: ParsedPath{Space: models.SpaceVolume},
		},
		{
			name: "volume root trailing slash",
			in:   "volume/",
			want: ParsedPath{Space: models.SpaceVolume},
		},
		{
			name: "personal nested",
			in:   "personal/docs/notes.txt",
			want: ParsedPath{Space: models.SpacePersonal, Rest: "docs/notes.txt"},
		},
		{
			name: "share root",
			in:   "share/Abc42",
			want: ParsedPath{Space: models.SpaceShare, ShareToken: "Abc42"},
		},
		{
			name: "share inner path",
			in:   "share/Abc42/sub/dir/file.txt",
			want: ParsedPath{Space: models.SpaceShare, ShareToken: "Abc42", InnerPath: "sub/dir/file.txt"},
		},
		{
			name: "redundant separators collapse",
			in:   "volume//finance///q3.xlsx",
			want: ParsedPath{Space: models.SpaceVolume, Rest: "finance/q3.xlsx"},
		},
		{
			name: "dot segments collapse",
			in:   "volume/./finance/./q3.xlsx",
			want: ParsedPath{Space: models.SpaceVolume, Rest: "finance/q3.xlsx"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePath(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParsePath_UnknownSpace(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "bogus/file.txt", "Volume/x", "trash/x"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePath(in)
			assert.ErrorIs(t, err, ErrUnknownSpace)
		})
	}
}

func TestParsePath_UnsafeInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"parent traversal", "volume/../../../etc/passwd"},
		{"traversal inside", "volume/a/../../b"},
		{"leading slash", "/volume/finance"},
		{"bare slash", "/"},
		{"backslash separators", "volume\\finance\\q3.xlsx"},
		{"windows drive", "C:/Windows/system32"},
		{"bare dotdot", ".."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePath(tc.in)
			assert.ErrorIs(t, err, ErrUnsafePath)
		})
	}
}

func TestParsedPath_Logical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"volume path", "volume/finance/q3.xlsx", "volume/finance/q3.xlsx"},
		{"volume root", "volume/", "volume"},
		{"personal root", "personal", "personal"},
		{"share root", "share/Abc42", "share/Abc42"},
		{"share inner", "share/Abc42//docs/a.txt", "share/Abc42/docs/a.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParsePath(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, parsed.Logical())
		})
	}
}

func TestNormalizeRelPath(t *testing.T) {
	t.Parallel()

	t.Run("cleans separators", func(t *testing.T) {
		got, err := NormalizeRelPath("a//b/./c/")
		require.NoError(t, err)
		assert.Equal(t, "a/b/c", got)
	})

	t.Run("empty means root", func(t *testing.T) {
		got, err := NormalizeRelPath("")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := NormalizeRelPath("a/../../b")
		assert.ErrorIs(t, err, ErrUnsafePath)
	})

	t.Run("rejects absolute", func(t *testing.T) {
		_, err := NormalizeRelPath("/etc/passwd")
		assert.ErrorIs(t, err, ErrUnsafePath)
	})
}
