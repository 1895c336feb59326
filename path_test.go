package castree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "simple name", input: "main.rs", valid: true},
		{name: "dotfile", input: ".gitignore", valid: true},
		{name: "unicode", input: "héllo", valid: true},
		{name: "spaces", input: "my file", valid: true},
		{name: "empty", input: "", valid: false},
		{name: "dot", input: ".", valid: false},
		{name: "dotdot", input: "..", valid: false},
		{name: "separator", input: "a/b", valid: false},
		{name: "leading separator", input: "/etc", valid: false},
		{name: "nul byte", input: "a\x00b", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := NewPathComponent(tt.input)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidPathComponent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, p.String())
			assert.Equal(t, len(tt.input), p.Len())
		})
	}
}

func TestRawPathComponentSkipsValidation(t *testing.T) {
	t.Parallel()

	p := RawPathComponent([]byte("../escape"))
	assert.Equal(t, "../escape", p.String())
	assert.ErrorIs(t, p.Validate(), ErrInvalidPathComponent)
}

func TestPathComponentBytes(t *testing.T) {
	t.Parallel()

	p := mustComponent(t, "abc")
	b := p.Bytes()
	b[0] = 'z'
	assert.Equal(t, "abc", p.String(), "Bytes must return a copy")
}
