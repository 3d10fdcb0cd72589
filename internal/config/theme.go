package config

const (
	LightTheme string = "light-theme"
	DarkTheme  string = "dark-theme"

	LightThemeIcon string = `<i class="fas fa-sun"></i>`
	DarkThemeIcon  string = `<i class="fas fa-moon"></i>`

	DefaultDarkSyntaxStyle  string = "gruvbox"
	DefaultLightSyntaxStyle string = "catppuccin-latte"

	DefaultTheme string = DarkTheme
)
