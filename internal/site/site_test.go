package site

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEveryPage(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	want := map[string]string{
		"/":                 "<title>SageSet Fitness</title>",
		"/privacy":          "<title>Privacy Policy | SageSet Fitness</title>",
		"/terms":            "SageSet Fitness is not medical advice.",
		"/support":          "mailto:support@worksidesoftware.com",
		"/account-deletion": "<strong>30 days</strong>",
	}
	require.Len(t, s.Paths(), len(want))
	for _, path := range s.Paths() {
		var buf bytes.Buffer
		require.NoError(t, s.Render(&buf, path), path)
		assert.Contains(t, buf.String(), want[path], path)
		assert.Contains(t, buf.String(), `class="active"`, path)
	}
}

func TestRenderUnknownPage(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Render(&bytes.Buffer{}, "/admin"), ErrPageNotFound)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Support", title([]byte("intro\n# Support\n## Email"), "x"))
	assert.Equal(t, "Fallback", title([]byte("no heading"), "Fallback"))
}
