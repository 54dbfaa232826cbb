package tui

// Color constants for the tidydo TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	ColorPrimaryText   = "#E6EAF2" // Titles, primary text
	ColorSecondaryText = "#B1B8C7" // Subtle purple-tinted grey
	ColorHelpText      = "240"     // Dark grey for help text

	ColorAccentMain   = "#7C3AED" // Accent elements, active borders
	ColorAccentBright = "#A78BFA" // Highlights, countdown

	ColorError   = "#EF4444" // Abandon, errors
	ColorSuccess = "#22C55E" // Complete, confirmations
	ColorWarning = "#F59E0B" // Paused state
)
