// Package repository provides the post storage backends: filesystem, sqlite
// and S3-compatible object storage. All backends address posts by slug.
package repository

import (
	"github.com/rs/zerolog"

	"github.com/mfigueira/folio/internal/model"
)

type PostRepository interface {
	Init()
	GetPosts() ([]model.Post, map[string]*model.Post, error)
	GetPostList() []model.Post
	ReadPost(slug string) (*model.Post, error)
	ReloadPosts()

	// SetReloadNotifier sets a function that will be called with the slug of
	// every post whose content changed on reload.
	SetReloadNotifier(notifier func(slug string))
}

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}
