package theme

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mfigueira/folio/internal/config"
)

func TestGetThemeFromRequest(t *testing.T) {
	t.Run("reads the theme cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: config.CookieTheme, Value: config.LightTheme})

		if got := GetThemeFromRequest(r); got != config.LightTheme {
			t.Errorf("Expected %q, got %q", config.LightTheme, got)
		}
	})

	t.Run("falls back to the default without a cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)

		if got := GetThemeFromRequest(r); got != DefaultSiteTheme() {
			t.Errorf("Expected %q, got %q", DefaultSiteTheme(), got)
		}
	})
}

func TestHighlightVariantCSS(t *testing.T) {
	light := string(HighlightVariantCSS(config.LightTheme))
	if !strings.Contains(light, ".highlight-dark") {
		t.Errorf("Light theme must hide the dark variant, got %q", light)
	}

	dark := string(HighlightVariantCSS(config.DarkTheme))
	if !strings.Contains(dark, ".highlight-light") {
		t.Errorf("Dark theme must hide the light variant, got %q", dark)
	}
}

func TestGetThemeIcon(t *testing.T) {
	if GetThemeIcon(config.LightTheme) != config.DarkThemeIcon {
		t.Error("The light theme shows the switch-to-dark icon")
	}
	if GetThemeIcon(config.DarkTheme) != config.LightThemeIcon {
		t.Error("The dark theme shows the switch-to-light icon")
	}
}
