package yamlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `yaml:"name"`
	Width *float64 `yaml:"width"`
}

func TestUnmarshalStrict(t *testing.T) {
	var s sample
	require.NoError(t, UnmarshalStrict([]byte("name: doc\nwidth: 12.5\n"), &s))
	assert.Equal(t, "doc", s.Name)
	require.NotNil(t, s.Width)
	assert.Equal(t, 12.5, *s.Width)
}

func TestUnmarshalStrictRejects(t *testing.T) {
	var s sample
	assert.ErrorIs(t, UnmarshalStrict(nil, &s), ErrEmptyInput)
	assert.ErrorIs(t, UnmarshalStrict([]byte("name: x"), nil), ErrNilDestination)
	assert.Error(t, UnmarshalStrict([]byte("name: x\nextra: 1\n"), &s))

	old := MaxInputSize
	MaxInputSize = 8
	defer func() { MaxInputSize = old }()
	assert.ErrorIs(t, UnmarshalStrict([]byte(strings.Repeat("a", 9)), &s), ErrInputTooLarge)
}

func TestMarshalRoundTrip(t *testing.T) {
	out, err := Marshal(sample{Name: "doc"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: doc")
}
