package safepath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/app.js", "app.js"},
		{"app.js", "app.js"},
		{"/assets/img/logo.png", "assets/img/logo.png"},
		{"/a//b.html", "a/b.html"},
		{"/about.html", "about.html"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Rel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRel_RejectsUnsafePaths(t *testing.T) {
	cases := []string{
		"",
		"/",
		"/\x00",
		"/foo\x00.js",
		"/foo\\bar",
		"/./secret",
		"/../secret",
		"/a/../b",
		"/a/..",
		"//etc/passwd",
		"../../etc/passwd",
	}

	for _, p := range cases {
		_, err := Rel(p)
		assert.ErrorIs(t, err, ErrUnsafe, "Rel(%q)", p)
	}
}

func TestJoin(t *testing.T) {
	root := t.TempDir()

	got, err := Join(root, "/css/site.css")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "css", "site.css"), got)

	rel, err := filepath.Rel(root, got)
	require.NoError(t, err)
	assert.NotContains(t, rel, "..")

	_, err = Join(root, "/../outside.html")
	assert.ErrorIs(t, err, ErrUnsafe)
}
