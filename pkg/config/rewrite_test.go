package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/new?x=1", "/new?x=1"},
		{"/user?id=$1", "/user?id=${1}"},
		{"/user?id=\\1", "/user?id=${1}"},
		{"/$1x", "/${1}x"},
		{"/$12", "/${12}"},
		{"/${1}/${name}", "/${1}/${name}"},
		{"/price$", "/price$$"},
		{"/$var", "/$$var"},
		{"/${open", "/$${open"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, expandTemplate(tt.in))
		})
	}
}

func TestRewrite_Apply(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		replacement string
		path        string
		want        string
		matched     bool
	}{
		{"literal", "^/old$", "/new?x=1", "/old", "/new?x=1", true},
		{"no match keeps path", "^/old$", "/new", "/older", "/older", false},
		{"dollar group", `^/users/(\d+)$`, "/user?id=$1", "/users/42", "/user?id=42", true},
		{"backslash group", `^/legacy/(.*)$`, `/\1`, "/legacy/reports", "/reports", true},
		{"group followed by text", `^/(\w+)$`, "/$1x", "/abc", "/abcx", true},
		{"literal dollar", "^/cost$", "/price?c=$", "/cost", "/price?c=$", true},
		{"replace all occurrences", "a", "b", "/aa", "/bb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rewrite{Pattern: tt.pattern, Replacement: tt.replacement}
			require.NoError(t, r.Compile())

			got, ok := r.Apply(tt.path)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewrite_ApplyUncompiled(t *testing.T) {
	r := Rewrite{Pattern: "^/a$", Replacement: "/b"}

	got, ok := r.Apply("/a")
	assert.False(t, ok)
	assert.Equal(t, "/a", got)
	assert.False(t, r.Compiled())
}
