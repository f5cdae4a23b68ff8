package lineutil

// SpacingL is the 16px step of the 4-point spacing grid.
const SpacingL = "16px"

// Shop card colors
const (
	ColorLabel      = "#999999" // Detail row labels
	ColorValue      = "#666666" // Detail row values and catch copy
	ColorLinkButton = "#42659A" // Link-style footer buttons
)
