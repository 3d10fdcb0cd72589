// Package routes defines HTTP route constants for the application.
package routes

const (
	// Static and assets
	RobotsPath        = "/robots.txt"
	ThemeOppositeIcon = "/theme/opposite-icon"
	ThemeToggle       = "/theme/toggle"
	PartialsPost      = "/partials/post"

	// SSE
	SSEPath = "/sse"

	// Root
	RootPath = "/"
)
