package main

import (
	"os"

	"github.com/jmcampanini/pullgod/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
