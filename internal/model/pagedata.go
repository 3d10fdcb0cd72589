package model

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/mfigueira/folio/internal/config"
	"github.com/mfigueira/folio/internal/theme"
)

type PageData struct {
	SiteName string
	Tagline  string

	PageURL string

	Theme        string
	HighlightCSS template.CSS
}

func NewPageData(r *http.Request) *PageData {
	siteTheme := theme.GetThemeFromRequest(r)

	siteName := "Folio"
	tagline := ""
	if c := config.AppConfig; c != nil {
		siteName = c.Site.Name
		tagline = c.Site.Tagline
	}

	return &PageData{
		SiteName:     siteName,
		Tagline:      tagline,
		PageURL:      r.URL.Path,
		Theme:        siteTheme,
		HighlightCSS: theme.HighlightVariantCSS(siteTheme),
	}
}

func (pd *PageData) IsPost() bool {
	return strings.HasPrefix(pd.PageURL, config.PostsUrlPath)
}
