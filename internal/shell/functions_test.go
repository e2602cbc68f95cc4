package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionGenerator_GenerateFish(t *testing.T) {
	output := NewFunctionGenerator().GenerateFish()

	assert.Contains(t, output, "function pgo")
	assert.Contains(t, output, "pullgod list --fzf")
	assert.Contains(t, output, "pullgod checkout $output")
	assert.Contains(t, output, "command -q fzf")
	assert.Contains(t, output, "set -l output")
	assert.Contains(t, output, "$status")
}

func TestFunctionGenerator_BashZsh(t *testing.T) {
	gen := NewFunctionGenerator()

	for name, output := range map[string]string{"bash": gen.GenerateBash(), "zsh": gen.GenerateZsh()} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, output, "pgo()")
			assert.Contains(t, output, "pullgod list --fzf")
			assert.Contains(t, output, `pullgod checkout "$output"`)
			assert.Contains(t, output, "command -v fzf")
			assert.Contains(t, output, "local output")
			assert.Contains(t, output, "$?")
			assert.Contains(t, output, "fi")
		})
	}
}

func TestFunctionGenerator_Generate(t *testing.T) {
	gen := NewFunctionGenerator()

	for _, name := range Shells {
		t.Run(name, func(t *testing.T) {
			output, err := gen.Generate(name)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(output))
		})
	}

	_, err := gen.Generate("powershell")
	assert.EqualError(t, err, "unsupported shell: powershell (supported: fish, zsh, bash)")
}
