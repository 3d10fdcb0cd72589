// Package theme handles the site's light/dark theme selection and the CSS
// switching between the dual-theme highlight variants.
package theme

import (
	"html/template"
	"net/http"

	"github.com/mfigueira/folio/internal/config"
)

func GetThemeFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(config.CookieTheme); err == nil {
		return cookie.Value
	}
	return DefaultSiteTheme()
}

// DefaultSiteTheme maps the configured theme name to its cookie value.
func DefaultSiteTheme() string {
	if c := config.AppConfig; c != nil && c.Theme.Default == "light" {
		return config.LightTheme
	}
	return config.DarkTheme
}

// HighlightVariantCSS hides the code-block variant that does not match the
// active site theme. Highlighted markup always carries both variants, so
// theme switching never re-renders a document.
func HighlightVariantCSS(theme string) template.CSS {
	if theme == config.LightTheme {
		return ".highlight .highlight-dark { display: none; }"
	}
	return ".highlight .highlight-light { display: none; }"
}

func GetThemeIcon(theme string) string {
	if theme == config.LightTheme {
		return config.DarkThemeIcon
	}
	return config.LightThemeIcon
}
