package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants in terminal cells.
const (
	defaultWidth  = 120
	defaultHeight = 40
	borderPadding = 2
	sidebarWidth  = 24
	cardHeight    = 7
)

// Key bindings.
const (
	keyQuit    = "q"
	keyCtrlC   = "ctrl+c"
	keyNext    = "n"
	keyRight   = "right"
	keyPrev    = "p"
	keyLeft    = "left"
	keyMode    = "a"
	keyFilter  = "f"
	keyRetry   = "r"
	keyReset   = "x"
	keyUp      = "up"
	keyDown    = "down"
	keyK       = "k"
	keyJ       = "j"
	keyEnter   = "enter"
	keyEsc     = "esc"
	keyTab     = "tab"
	keyBackTab = "shift+tab"
	keySpace   = " "
)

// Colors.
const (
	colorAccent = lipgloss.Color("63")
	colorSubtle = lipgloss.Color("241")
	colorError  = lipgloss.Color("196")
	colorWarn   = lipgloss.Color("214")
	colorText   = lipgloss.Color("252")
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	LabelStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	ValueStyle  = lipgloss.NewStyle().Foreground(colorText)
	SubtleStyle = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true)
	InfoStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	ErrorStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	SidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			PaddingRight(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(colorSubtle)

	FocusedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)
