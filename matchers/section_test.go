package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSection_StripsPrefix(t *testing.T) {
	for _, in := range []string{"SaaS", " r/SaaS ", "/r/SaaS", "R/SaaS"} {
		got, err := NormalizeSection(in)
		require.NoError(t, err, in)
		assert.Equal(t, "SaaS", got, in)
	}
}

func TestNormalizeSection_Invalid(t *testing.T) {
	for _, in := range []string{"", "r/", "a", "has space", "way_too_long_for_a_subreddit", "semi;colon"} {
		_, err := NormalizeSection(in)
		assert.ErrorIs(t, err, ErrInvalidSection, in)
	}
}

func TestSameSection_CaseInsensitive(t *testing.T) {
	assert.True(t, SameSection("GoLang", "golang"))
	assert.False(t, SameSection("golang", "rust"))
}

func TestNormalizeSections(t *testing.T) {
	valid, invalid := NormalizeSections([]string{"r/technology", " technology", "", "/r/SaaS", "bad name", "x"})

	assert.Equal(t, []string{"technology", "SaaS"}, valid)
	assert.Equal(t, []string{"bad name", "x"}, invalid)
}
