// Package shell holds the shell functions printed by `pullgod init`.
package shell

import (
	_ "embed"
	"fmt"
)

//go:embed scripts/pgo.fish
var fishScript string

//go:embed scripts/pgo.bash
var bashScript string

//go:embed scripts/pgo.zsh
var zshScript string

// Shells lists the supported shell names.
var Shells = []string{"fish", "zsh", "bash"}

// FunctionGenerator generates the pgo shell function, which checks out a pull request
// picked with fzf.
type FunctionGenerator struct{}

func NewFunctionGenerator() *FunctionGenerator {
	return &FunctionGenerator{}
}

// Generate returns the function for the named shell.
func (g *FunctionGenerator) Generate(shell string) (string, error) {
	switch shell {
	case "fish":
		return g.GenerateFish(), nil
	case "zsh":
		return g.GenerateZsh(), nil
	case "bash":
		return g.GenerateBash(), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: fish, zsh, bash)", shell)
	}
}

func (g *FunctionGenerator) GenerateFish() string {
	return fishScript
}

func (g *FunctionGenerator) GenerateZsh() string {
	return zshScript
}

func (g *FunctionGenerator) GenerateBash() string {
	return bashScript
}
