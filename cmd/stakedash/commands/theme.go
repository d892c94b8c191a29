package commands

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette. Green and red follow gain/loss, amber marks anything waiting.
var (
	colorBrand = lipgloss.Color("#627eea") // ether blue
	colorGain  = lipgloss.Color("#16a34a")
	colorLoss  = lipgloss.Color("#dc2626")
	colorWait  = lipgloss.Color("#d97706")
	colorNote  = lipgloss.Color("#7dd3fc")
	colorSoft  = lipgloss.Color("#a1a1aa")
	colorFaint = lipgloss.Color("#52525b")
	colorText  = lipgloss.Color("#fafafa")
)

// isTTY reports whether styled output should be used: no --output format
// was requested and stdout is a terminal.
func isTTY() bool {
	return OutputFormat == "" && term.IsTerminal(int(os.Stdout.Fd()))
}

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	StyleSection = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).MarginTop(1)
	StyleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	StyleMuted   = lipgloss.NewStyle().Foreground(colorSoft)
	StyleDim     = lipgloss.NewStyle().Foreground(colorFaint).Italic(true)

	StyleLabel = lipgloss.NewStyle().Foreground(colorSoft).Width(labelWidth)
	StyleValue = lipgloss.NewStyle().Foreground(colorText)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrand).
			Padding(0, 2)

	StyleAlert = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(colorWait).
			Foreground(colorWait).
			PaddingLeft(1)

	StyleCellHead = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Padding(0, 1)
	StyleCell     = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	StyleCellAlt  = lipgloss.NewStyle().Foreground(colorSoft).Padding(0, 1)
)

// labelWidth aligns key/value output in both styled and plain mode.
const labelWidth = 18

// tone groups statuses and outcomes by the color they are shown in.
var tone = map[string]lipgloss.Color{
	"staked":    colorGain,
	"succeeded": colorGain,
	"restaked":  colorGain,
	"failed":    colorLoss,
	"unstaked":  colorSoft,
	"pending":   colorWait,
	"in_flight": colorWait,
	"matured":   colorWait,
}

// StatusBadge colors a stake status or action outcome. Unknown values are
// rendered muted.
func StatusBadge(status string) string {
	if !isTTY() {
		return status
	}
	c, ok := tone[status]
	if !ok {
		c = colorSoft
	}
	return lipgloss.NewStyle().Foreground(c).Bold(ok).Render("● " + status)
}

// Logo returns the styled product name.
func Logo() string {
	return StyleBrand.Render("Ξ stakedash")
}
