package config

import "time"

// Colors
const (
	ErrorColor      = 0xFF0000
	SuccessColor    = 0x00FF00
	InfoColor       = 0x0099FF
	WarningColor    = 0xFFAA00
	BackgroundColor = 0x2B2D31
)

const (
	// MaxMenuButtons is how many servers /config offers as buttons before
	// falling back to a paginated list.
	MaxMenuButtons = 5
	// MaxListPreview caps how many deny list entries one embed field shows.
	MaxListPreview     = 30
	AutocompleteLimit  = 25
	AutocompleteTimeout = 2 * time.Second
	InteractionTimeout = 8 * time.Second
)
