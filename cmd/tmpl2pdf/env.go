package main

import (
	"io"
	"os"

	"github.com/alnah/go-tmpl2pdf/internal/browser"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Launcher replaces the configured browser backend when set.
	Launcher browser.Launcher
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
