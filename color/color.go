// Package color names the ANSI colors used by the CLI.
package color

import "github.com/charmbracelet/lipgloss"

var (
	Red    = lipgloss.Color("1")
	Green  = lipgloss.Color("2")
	Yellow = lipgloss.Color("3")
	Blue   = lipgloss.Color("4")
	Purple = lipgloss.Color("5")
	Cyan   = lipgloss.Color("6")
)

// High intensity variants.
var (
	HiRed    = lipgloss.Color("9")
	HiPurple = lipgloss.Color("13")
	HiCyan   = lipgloss.Color("14")
)
