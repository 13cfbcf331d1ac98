// Package main is the entry point for the gosense CLI tool.
package main

import (
	"github.com/gosense/gosense/internal/cmd"
)

func main() {
	cmd.Execute()
}
