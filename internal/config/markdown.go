package config

const (
	// Default dimensions emitted for markdown images with no explicit size,
	// so pages can reserve layout space before the asset loads.
	ImageDefaultWidth  = 1200
	ImageDefaultHeight = 630
)
