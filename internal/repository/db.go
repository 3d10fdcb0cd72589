package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfigueira/folio/internal/cache"
	"github.com/mfigueira/folio/internal/db"
	"github.com/mfigueira/folio/internal/model"
	"github.com/mfigueira/folio/internal/util"
	"github.com/mfigueira/folio/internal/util/compression"
)

type DBPostRepository struct { // implements PostRepository
	postsCache *cache.Cache[string, *model.Post]

	// sortedMu guards postsCacheSorted against the reload goroutine swapping
	// it under concurrent GetPostList readers.
	sortedMu         sync.RWMutex
	postsCacheSorted []model.Post

	reloadNotifier   func(slug string)
	lastModifiedTime *time.Time // Track the latest modification time

	db         db.DB
	compressor compression.Compressor
}

func NewDBPostRepository(db db.DB) *DBPostRepository {
	return &DBPostRepository{
		postsCache: cache.NewCache[string, *model.Post](),

		db: db,

		compressor: compression.ZstdCompressor{},
	}
}

func (r *DBPostRepository) Init() {
	posts, postMap, err := r.GetPosts()
	if err != nil {
		repoLogger.Fatal().Err(err).Msg("Error initializing posts")
	}

	r.setPosts(posts, postMap)

	go r.ReloadPosts()
}

func (r *DBPostRepository) setPosts(posts []model.Post, postMap map[string]*model.Post) {
	r.sortedMu.Lock()
	r.postsCacheSorted = posts
	r.sortedMu.Unlock()
	r.postsCache.SetTo(postMap)
}

func (r *DBPostRepository) GetLatestModifiedTime() (*time.Time, error) {
	var latestTimeStr sql.NullString
	row := r.db.Get().QueryRow(`SELECT MAX(modified_at) FROM posts`)
	err := row.Scan(&latestTimeStr)
	if err != nil {
		return nil, fmt.Errorf("error scanning latest modified time: %w", err)
	}

	if !latestTimeStr.Valid {
		return nil, nil // It was NULL, so no posts or no valid timestamps.
	}

	// The go-sqlite3 driver returns a string for MAX(), so we must parse it.
	// It can be in a format with a space separator.
	timeFormats := []string{
		"2006-01-02 15:04:05.999999999-07:00", // Space separator with timezone
		time.RFC3339Nano,                      // 'T' separator with timezone
		time.RFC3339,                          // 'T' separator, no nanos
	}

	var latestTime time.Time
	var parseErr error
	for _, format := range timeFormats {
		latestTime, parseErr = time.Parse(format, latestTimeStr.String)
		if parseErr == nil {
			return &latestTime, nil
		}
	}

	return nil, fmt.Errorf("error parsing latest modified time '%s' with any known format: %w", latestTimeStr.String, parseErr)
}

func (r *DBPostRepository) GetPosts() ([]model.Post, map[string]*model.Post, error) {
	rows, err := r.db.Query(`SELECT id, slug, title, excerpt, content, md_content_hash, tags,
		category_name, category_slug, author_name, author_email, author_website,
		cover_url, cover_width, cover_height, cover_alt,
		published_at, modified_at FROM posts`)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	postMap := make(map[string]*model.Post)
	var latestModTime *time.Time

	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, nil, err
		}

		// Track the latest modification time
		if latestModTime == nil || post.ModifiedDate.After(*latestModTime) {
			latestModTime = &post.ModifiedDate
		}

		posts = append(posts, post)
		postMap[post.Slug] = &post
	}

	// Update our tracked modification time
	r.lastModifiedTime = latestModTime

	sortPostsByPublished(posts)

	return posts, postMap, nil
}

func (r *DBPostRepository) scanPost(rows *sql.Rows) (model.Post, error) {
	var post model.Post
	var compressed []byte
	var tags, categoryName, categorySlug sql.NullString
	var authorName, authorEmail, authorWebsite sql.NullString
	var coverURL, coverAlt sql.NullString
	var coverWidth, coverHeight sql.NullInt64

	err := rows.Scan(&post.ID, &post.Slug, &post.Title, &post.Excerpt, &compressed,
		&post.MDContentHash, &tags, &categoryName, &categorySlug,
		&authorName, &authorEmail, &authorWebsite,
		&coverURL, &coverWidth, &coverHeight, &coverAlt,
		&post.PublishedDate, &post.ModifiedDate)
	if err != nil {
		return model.Post{}, fmt.Errorf("error scanning post: %w", err)
	}

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return model.Post{}, fmt.Errorf("error decompressing content: %w", err)
	}
	post.Markdown = content

	if tags.String != "" {
		post.Tags = strings.Split(tags.String, ",")
		post.NormalizeTags()
	}
	if categorySlug.String != "" {
		post.Category = &model.Category{Name: categoryName.String, Slug: categorySlug.String}
	}
	if authorName.String != "" {
		post.Author = &model.Author{
			Name:    authorName.String,
			Email:   authorEmail.String,
			Website: authorWebsite.String,
		}
	}
	if coverURL.String != "" {
		post.Cover = &model.CoverImage{
			URL:    coverURL.String,
			Width:  int(coverWidth.Int64),
			Height: int(coverHeight.Int64),
			Alt:    coverAlt.String,
		}
	}

	return post, nil
}

func (r *DBPostRepository) GetPostList() []model.Post {
	r.sortedMu.RLock()
	defer r.sortedMu.RUnlock()
	return r.postsCacheSorted
}

func (r *DBPostRepository) ReadPost(slug string) (*model.Post, error) {
	post, ok := r.postsCache.Get(slug)
	if !ok {
		return nil, fmt.Errorf("post not found: %s", slug)
	}
	return post, nil
}

func (r *DBPostRepository) ReloadPosts() {
	sleepFunc := func() {
		time.Sleep(10 * time.Second)
	}

	for {
		// First, do a lightweight check to see if anything has changed
		latestTime, err := r.GetLatestModifiedTime()
		if err != nil {
			repoLogger.Error().Err(err).Msg("Error checking latest modification time")
			sleepFunc()
			continue
		}

		// If we have a cached time and nothing has changed, skip
		if r.lastModifiedTime != nil && latestTime != nil && !latestTime.After(*r.lastModifiedTime) {
			repoLogger.Debug().Msg("No posts modified, skipping reload")
			sleepFunc()
			continue
		}

		repoLogger.Debug().Msg("Posts may have changed, performing full reload")

		posts, postMap, err := r.GetPosts()
		if err != nil {
			repoLogger.Error().Err(err).Msg("Error reloading posts")
		} else {
			hasChanges := false

			current := r.GetPostList()
			cachedPosts := make(map[string]*model.Post)
			for i := range current {
				cachedPosts[current[i].Slug] = &current[i]
			}

			for _, newPost := range posts {
				if cachedPost, exists := cachedPosts[newPost.Slug]; exists {
					if newPost.MDContentHash != cachedPost.MDContentHash {
						hasChanges = true
						repoLogger.Info().
							Str("slug", newPost.Slug).
							Str("title", newPost.Title).
							Msg("Post content changed, reloading")
						if r.reloadNotifier != nil {
							go r.reloadNotifier(newPost.Slug)
						}
					}
				} else {
					hasChanges = true
					repoLogger.Info().
						Str("slug", newPost.Slug).
						Str("title", newPost.Title).
						Msg("New post detected")
				}
			}

			if len(posts) != len(current) {
				hasChanges = true
				repoLogger.Info().Msg("Number of posts changed")
			}

			if hasChanges {
				repoLogger.Info().Msg("Posts have changed, updating cache")
				r.setPosts(posts, postMap)
			}
		}

		sleepFunc()
	}
}

func (r *DBPostRepository) SetReloadNotifier(notifier func(slug string)) {
	r.reloadNotifier = notifier
}

// SetCompressor swaps the body compressor. Must be called before any posts
// are read or written; stored bodies are only readable with the compressor
// that wrote them.
func (r *DBPostRepository) SetCompressor(c compression.Compressor) {
	r.compressor = c
}

func (r *DBPostRepository) NewPost() *model.Post {
	now := time.Now().UTC()

	return &model.Post{
		ID: model.PostID(uuid.New().String()),

		PublishedDate: now,
		ModifiedDate:  now,
	}
}

// SavePost inserts a post, compressing its body and refreshing the content
// hash. The slug must already be set and unique.
func (r *DBPostRepository) SavePost(post *model.Post) error {
	compressed, err := r.compressor.Compress(post.Markdown)
	if err != nil {
		return fmt.Errorf("error compressing content: %w", err)
	}

	post.MDContentHash = util.ContentHash(compressed)

	res, err := r.db.Exec(
		`INSERT INTO posts (id, slug, title, excerpt, content, md_content_hash, tags,
			category_name, category_slug, author_name, author_email, author_website,
			cover_url, cover_width, cover_height, cover_alt, published_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Slug, post.Title, post.Excerpt, compressed, post.MDContentHash,
		strings.Join(post.Tags, ","),
		categoryName(post), categorySlug(post),
		authorField(post, func(a *model.Author) string { return a.Name }),
		authorField(post, func(a *model.Author) string { return a.Email }),
		authorField(post, func(a *model.Author) string { return a.Website }),
		coverURL(post), coverWidth(post), coverHeight(post), coverAlt(post),
		post.PublishedDate, post.ModifiedDate,
	)

	if err != nil {
		return fmt.Errorf("error saving post: %w", err)
	}

	repoLogger.Debug().Interface("result", res).Msg("Post saved")

	return nil
}

// SetPostContent updates an existing post's body and metadata in place.
func (r *DBPostRepository) SetPostContent(post *model.Post) error {
	compressed, err := r.compressor.Compress(post.Markdown)
	if err != nil {
		return fmt.Errorf("error compressing content: %w", err)
	}

	post.MDContentHash = util.ContentHash(compressed)

	res, err := r.db.Exec(
		`UPDATE posts SET title = ?, excerpt = ?, content = ?, md_content_hash = ?, tags = ?, modified_at = ? WHERE slug = ?`,
		post.Title, post.Excerpt, compressed, post.MDContentHash,
		strings.Join(post.Tags, ","), time.Now().UTC(), post.Slug,
	)

	if err != nil {
		return fmt.Errorf("error saving post: %w", err)
	}

	repoLogger.Debug().Interface("result", res).Msg("Post content set")

	return nil
}

func categoryName(p *model.Post) string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

func categorySlug(p *model.Post) string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Slug
}

func authorField(p *model.Post, get func(*model.Author) string) string {
	if p.Author == nil {
		return ""
	}
	return get(p.Author)
}

func coverURL(p *model.Post) string {
	if p.Cover == nil {
		return ""
	}
	return p.Cover.URL
}

func coverWidth(p *model.Post) int {
	if p.Cover == nil {
		return 0
	}
	return p.Cover.Width
}

func coverHeight(p *model.Post) int {
	if p.Cover == nil {
		return 0
	}
	return p.Cover.Height
}

func coverAlt(p *model.Post) string {
	if p.Cover == nil {
		return ""
	}
	return p.Cover.Alt
}
