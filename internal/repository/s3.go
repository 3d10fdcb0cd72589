package repository

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mfigueira/folio/internal/cache"
	"github.com/mfigueira/folio/internal/model"
)

type S3PostRepository struct { // implements PostRepository
	client *s3.Client
	bucket string

	postsCache *cache.Cache[string, *model.Post]

	// sortedMu guards postsCacheSorted against the reload goroutine swapping
	// it under concurrent GetPostList readers.
	sortedMu         sync.RWMutex
	postsCacheSorted []model.Post

	reloadNotifier func(slug string)
}

func NewS3PostRepository(accessKeyID, accessKeySecret, baseEndpoint, bucket string) *S3PostRepository {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		repoLogger.Fatal().Err(err).Msg("Error initializing S3 client")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(baseEndpoint)
	})

	return &S3PostRepository{
		client: client,
		bucket: bucket,

		postsCache: cache.NewCache[string, *model.Post](),
	}
}

func (r *S3PostRepository) SetReloadNotifier(notifier func(slug string)) {
	r.reloadNotifier = notifier
}

func (r *S3PostRepository) notifyPostReload(slug string) {
	if r.reloadNotifier != nil {
		r.reloadNotifier(slug)
	}
}

func (r *S3PostRepository) Init() {
	posts, postMap, err := r.GetPosts()
	if err != nil {
		repoLogger.Fatal().Err(err).Msg("Error initializing posts")
	}

	r.setPosts(posts, postMap)

	go r.ReloadPosts()
}

func (r *S3PostRepository) setPosts(posts []model.Post, postMap map[string]*model.Post) {
	r.sortedMu.Lock()
	r.postsCacheSorted = posts
	r.sortedMu.Unlock()
	r.postsCache.SetTo(postMap)
}

func (r *S3PostRepository) GetPostList() []model.Post {
	r.sortedMu.RLock()
	defer r.sortedMu.RUnlock()
	return r.postsCacheSorted
}

func (r *S3PostRepository) GetPosts() ([]model.Post, map[string]*model.Post, error) {
	entries, err := r.client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return nil, nil, err
	}

	var posts []model.Post
	postsMap := make(map[string]*model.Post)
	for _, entry := range entries.Contents {
		key := aws.ToString(entry.Key)
		if !strings.HasSuffix(key, ".md") {
			continue
		}

		raw, err := r.readObject(key)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading object %s: %w", key, err)
		}

		name := strings.TrimSuffix(key, ".md")
		modTime := time.Now().UTC()
		if entry.LastModified != nil {
			modTime = *entry.LastModified
		}

		post := postFromMarkdown(name, raw, modTime)

		posts = append(posts, post)
		postsMap[post.Slug] = &post
	}

	sortPostsByPublished(posts)

	return posts, postsMap, nil
}

func (r *S3PostRepository) readObject(key string) ([]byte, error) {
	obj, err := r.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()

	return io.ReadAll(obj.Body)
}

func (r *S3PostRepository) ReadPost(slug string) (*model.Post, error) {
	if post, ok := r.postsCache.Get(slug); ok && post.HasBody() {
		return post, nil
	}
	return nil, fmt.Errorf("post not found: %s", slug)
}

func (r *S3PostRepository) ReloadPosts() {
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
		time.Sleep(5 * time.Second)
	}
}
