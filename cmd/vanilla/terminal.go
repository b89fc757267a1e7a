package main

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	// termenv output for consistent terminal styling
	output = termenv.NewOutput(os.Stdout)

	// Style helpers - initialized in initColors()
	thinkStyle   termenv.Style
	toolStyle    termenv.Style
	errorStyle   termenv.Style
	successStyle termenv.Style
	dimStyle     termenv.Style
	boldStyle    termenv.Style
)

// initColors initializes color styles based on terminal background
func initColors() {
	if termenv.HasDarkBackground() {
		thinkStyle = output.String().Foreground(output.Color("244")).Italic()
		toolStyle = output.String().Foreground(output.Color("179")).Bold() // Muted yellow
		errorStyle = output.String().Foreground(output.Color("124"))       // Muted red
		successStyle = output.String().Foreground(output.Color("65"))      // Muted green
		dimStyle = output.String().Faint()
	} else {
		thinkStyle = output.String().Foreground(output.Color("240")).Italic()
		toolStyle = output.String().Foreground(output.Color("136")).Bold() // Dark orange/brown
		errorStyle = output.String().Foreground(output.Color("160"))       // Dark red
		successStyle = output.String().Foreground(output.Color("28"))      // Dark green
		dimStyle = output.String().Foreground(output.Color("240"))
	}
	boldStyle = output.String().Bold()
}

// isTerminal checks if output is going to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// stdinIsTerminal reports whether stdin is interactive rather than piped
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
