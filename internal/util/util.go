// Package util provides content hashing, slugs and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
	"github.com/mmarkdown/mmark/v2/mast"

	"github.com/mfigueira/folio/internal/model"
)

// FrontMatter is the mmark title block plus the blog-specific fields posts
// carry in their `%%%` header.
type FrontMatter struct {
	*mast.TitleData

	Slug    string
	Excerpt string
	Cover   CoverMeta

	// Consumed is the byte offset where the document body starts.
	Consumed int
}

type CoverMeta struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

var fmDelimiter = []byte("%%%")

// GetFrontMatter parses the leading `%%%`-delimited TOML block of a markdown
// document. Documents without a block return an error; callers treat that as
// "no front matter" and fall back to file metadata.
func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	trimmed := bytes.TrimLeft(md, "\n \t\r")
	offset := len(md) - len(trimmed)

	if !bytes.HasPrefix(trimmed, fmDelimiter) {
		return nil, fmt.Errorf("no front matter block")
	}

	rest := trimmed[len(fmDelimiter):]
	end := bytes.Index(rest, fmDelimiter)
	if end == -1 {
		return nil, fmt.Errorf("unterminated front matter block")
	}

	info := &FrontMatter{
		TitleData: &mast.TitleData{},
	}

	if _, err := toml.Decode(string(rest[:end]), info); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	info.Consumed = offset + 2*len(fmDelimiter) + end
	if info.Consumed < len(md) && md[info.Consumed] == '\n' {
		info.Consumed++
	}

	return info, nil
}

// ApplyFrontMatter copies the parsed header fields onto a post. The slug
// falls back to a slugified title when the header omits it.
func ApplyFrontMatter(post *model.Post, fm *FrontMatter) {
	if fm == nil {
		return
	}

	if fm.Title != "" {
		post.Title = fm.Title
	}
	if fm.Slug != "" {
		post.Slug = fm.Slug
	} else if post.Slug == "" && post.Title != "" {
		post.Slug = Slugify(post.Title)
	}
	if fm.Excerpt != "" {
		post.Excerpt = fm.Excerpt
	}
	if !fm.Date.IsZero() {
		post.PublishedDate = fm.Date.UTC()
	}
	if len(fm.Keyword) > 0 {
		post.Tags = fm.Keyword
		post.NormalizeTags()
	}
	if fm.Area != "" {
		post.Category = &model.Category{
			Name: fm.Area,
			Slug: Slugify(fm.Area),
		}
	}
	if len(fm.Author) > 0 {
		author := fm.Author[0]
		post.Author = &model.Author{
			Name:    author.Fullname,
			Email:   author.Address.Email,
			Website: author.Address.URI,
		}
	}
	if fm.Cover.URL != "" {
		post.Cover = &model.CoverImage{
			URL:    fm.Cover.URL,
			Width:  fm.Cover.Width,
			Height: fm.Cover.Height,
			Alt:    fm.Cover.Alt,
		}
	}
}

// Slugify lowers a title to a URL-safe slug: letters and digits kept,
// everything else collapsed into single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	prevHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
