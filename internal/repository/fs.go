package repository

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/google/uuid"

	"github.com/mfigueira/folio/internal/cache"
	"github.com/mfigueira/folio/internal/model"
	"github.com/mfigueira/folio/internal/util"
)

type FSPostRepository struct { // implements PostRepository
	postsPath string

	postsCache *cache.Cache[string, *model.Post]

	// sortedMu guards postsCacheSorted: the reload goroutine swaps it while
	// request handlers read it through GetPostList.
	sortedMu         sync.RWMutex
	postsCacheSorted []model.Post

	reloadNotifier func(slug string)
}

func NewFSPostRepository(postsPath string) *FSPostRepository {
	return &FSPostRepository{
		postsPath:  postsPath,
		postsCache: cache.NewCache[string, *model.Post](),
	}
}

func (r *FSPostRepository) SetReloadNotifier(notifier func(slug string)) {
	r.reloadNotifier = notifier
}

func (r *FSPostRepository) notifyPostReload(slug string) {
	if r.reloadNotifier != nil {
		r.reloadNotifier(slug)
	}
}

func (r *FSPostRepository) Init() {
	posts, postMap, err := r.GetPosts()
	if err != nil {
		repoLogger.Fatal().Err(err).Msg("Error initializing posts")
	}

	r.setPosts(posts, postMap)

	go r.ReloadPosts()
}

func (r *FSPostRepository) setPosts(posts []model.Post, postMap map[string]*model.Post) {
	r.sortedMu.Lock()
	r.postsCacheSorted = posts
	r.sortedMu.Unlock()
	r.postsCache.SetTo(postMap)
}

func (r *FSPostRepository) GetPostList() []model.Post {
	r.sortedMu.RLock()
	defer r.sortedMu.RUnlock()
	return r.postsCacheSorted
}

func (r *FSPostRepository) GetPosts() ([]model.Post, map[string]*model.Post, error) {
	entries, err := os.ReadDir(r.postsPath)
	if err != nil {
		return nil, nil, err
	}

	var posts []model.Post
	postsMap := make(map[string]*model.Post)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".md")

		raw, err := os.ReadFile(filepath.Join(r.postsPath, entry.Name()))
		if err != nil {
			return nil, nil, err
		}

		fileInfo, err := entry.Info()
		if err != nil {
			return nil, nil, err
		}

		post := postFromMarkdown(name, raw, fileInfo.ModTime())

		posts = append(posts, post)
		postsMap[post.Slug] = &post
	}

	sortPostsByPublished(posts)

	return posts, postsMap, nil
}

func (r *FSPostRepository) ReadPost(slug string) (*model.Post, error) {
	if post, ok := r.postsCache.Get(slug); ok && post.HasBody() {
		return post, nil
	}
	return nil, os.ErrNotExist
}

func (r *FSPostRepository) ReloadPosts() {
	for {
		posts, postMap, err := r.GetPosts()
		if err != nil {
			repoLogger.Error().Err(err).Msg("Error reloading posts")
		} else {
			for _, post := range r.GetPostList() {
				if newPost, ok := postMap[post.Slug]; ok {
					if newPost.MDContentHash != post.MDContentHash {
						repoLogger.Info().
							Str("slug", post.Slug).
							Str("title", post.Title).
							Msg("Reloading post")
						go r.notifyPostReload(post.Slug)
					}
				}
			}

			r.setPosts(posts, postMap)
		}
		time.Sleep(1 * time.Second)
	}
}

// postFromMarkdown builds a Post from a raw markdown file: the `%%%` front
// matter supplies metadata, the file name and modification time fill the
// gaps. The stored body excludes the front matter block.
func postFromMarkdown(name string, raw []byte, modTime time.Time) model.Post {
	// Front matter offsets are computed over normalized newlines; normalize
	// up front so slicing the body out stays byte-accurate.
	raw = markdown.NormalizeNewlines(raw)

	post := model.Post{
		ID:            model.PostID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()),
		Slug:          util.Slugify(name),
		Title:         name,
		MDContentHash: util.ContentHash(raw),
		PublishedDate: modTime.UTC(),
		ModifiedDate:  modTime.UTC(),
		Markdown:      raw,
	}

	fm, err := util.GetFrontMatter(raw)
	if err != nil {
		repoLogger.Debug().Err(err).Str("name", name).Msg("No usable front matter")
		return post
	}

	util.ApplyFrontMatter(&post, fm)
	post.Markdown = raw[fm.Consumed:]
	return post
}

func sortPostsByPublished(posts []model.Post) {
	slices.SortStableFunc(posts, func(a, b model.Post) int {
		return -a.PublishedDate.Compare(b.PublishedDate)
	})
}
