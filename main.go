package main

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mfigueira/folio/internal/cache"
	"github.com/mfigueira/folio/internal/config"
	"github.com/mfigueira/folio/internal/db"
	"github.com/mfigueira/folio/internal/highlight"
	"github.com/mfigueira/folio/internal/logger"
	"github.com/mfigueira/folio/internal/model"
	"github.com/mfigueira/folio/internal/related"
	"github.com/mfigueira/folio/internal/render"
	"github.com/mfigueira/folio/internal/repository"
	"github.com/mfigueira/folio/internal/routes"
	"github.com/mfigueira/folio/internal/search"
	"github.com/mfigueira/folio/internal/sse"
	"github.com/mfigueira/folio/internal/theme"
	"github.com/mfigueira/folio/internal/util"
	"github.com/mfigueira/folio/internal/util/compression"
)

//go:embed static/* templates/*
var content embed.FS

var postRepository repository.PostRepository

var clients = sse.NewSSEClients()

var appLog zerolog.Logger

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	bootLog := logger.New("info")
	config.SetLogger(bootLog)

	configPath := os.Getenv("FOLIO_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := config.LoadConfig(configPath); err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	appLog = logger.New(config.AppConfig.Logging.Level)
	config.SetLogger(logger.For("config"))
	db.SetLogger(logger.For("db"))
	repository.SetLogger(logger.For("repository"))
	render.SetLogger(logger.For("render"))
	highlight.SetLogger(logger.For("highlight"))

	postRepository = newPostRepository()

	// Calculate the hash of static content
	static, _ := fs.Sub(content, config.StaticLocalDir)
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHashString(path))
		}
		return nil
	})

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})

	mux.HandleFunc(routes.ThemeOppositeIcon, func(w http.ResponseWriter, r *http.Request) {
		currTheme := r.URL.Query().Get("theme")
		if currTheme == "" {
			http.Error(w, "theme required", http.StatusBadRequest)
			return
		}

		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(theme.GetThemeIcon(currTheme)))
	})

	mux.HandleFunc(routes.PartialsPost, servePostPartial)
	mux.HandleFunc(routes.ThemeToggle, serveThemePostToggle)
	mux.HandleFunc(routes.SSEPath, eventsHandler)

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.HandleFunc(config.PostsUrlPath, servePost)
	mux.HandleFunc(routes.RootPath, serveIndex)

	postRepository.SetReloadNotifier(handleReloadPost)
	go postRepository.Init()

	addr := config.AppConfig.Server.Host + ":" + config.AppConfig.Server.Port
	appLog.Info().Str("addr", addr).Msg("Listening")
	if err := http.ListenAndServe(addr, cacheIt(secureHeaders(mux.ServeHTTP))); err != nil {
		appLog.Fatal().Err(err).Msg("Server stopped")
	}
}

// newPostRepository selects the storage backend from the environment:
// sqlite ("db"), S3-compatible object storage ("s3") or the posts directory
// (default).
func newPostRepository() repository.PostRepository {
	switch os.Getenv("FOLIO_REPOSITORY") {
	case "db":
		database := db.NewSQLite(os.Getenv("FOLIO_DB_PATH"))
		if err := database.InitDB(); err != nil {
			appLog.Fatal().Err(err).Msg("Failed to initialize database")
		}
		repo := repository.NewDBPostRepository(database)
		if name := os.Getenv("FOLIO_COMPRESSION"); name != "" {
			repo.SetCompressor(compression.ForName(name))
		}
		return repo
	case "s3":
		return repository.NewS3PostRepository(
			os.Getenv("S3_ACCESS_KEY_ID"),
			os.Getenv("S3_ACCESS_KEY_SECRET"),
			os.Getenv("S3_ENDPOINT"),
			os.Getenv("S3_BUCKET"),
		)
	default:
		return repository.NewFSPostRepository(config.AppConfig.Content.PostsDir)
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	categorySlug := r.URL.Query().Get("category")

	posts := search.Filter(postRepository.GetPostList(), query, categorySlug)
	if limit := config.AppConfig.Content.PostsPerPage; limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	tmpl, err := template.ParseFS(content,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplateIndex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		*model.PageData
		PostsPath    string
		Posts        []model.Post
		Query        string
		CategorySlug string
	}{
		PageData:     model.NewPageData(r),
		PostsPath:    config.PostsUrlPath,
		Posts:        posts,
		Query:        query,
		CategorySlug: categorySlug,
	}

	w.Header().Set(config.HETag, util.ContentHash([]byte(data.Theme+query+categorySlug)))

	if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func servePost(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, config.PostsUrlPath)
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	post, err := postRepository.ReadPost(slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post.Content = render.RenderDocumentCached(r.Context(), post.Markdown, post.MDContentHash)

	data := struct {
		*model.PageData
		Post      *model.Post
		PostsPath string
		Related   []model.Post
	}{
		PageData:  model.NewPageData(r),
		Post:      post,
		PostsPath: config.PostsUrlPath,
		Related:   related.Posts(*post, postRepository.GetPostList(), config.AppConfig.Content.RelatedLimit),
	}

	tmpl, err := template.ParseFS(content,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplatePost)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// servePostPartial returns just the rendered document, for live-reload swaps.
func servePostPartial(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("post")
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	post, err := postRepository.ReadPost(slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	htmlContent := render.RenderDocumentCached(r.Context(), post.Markdown, post.MDContentHash)

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<title>%s</title>\n%s", template.HTMLEscapeString(post.GetTitle()), htmlContent)
}

func serveThemePostToggle(w http.ResponseWriter, r *http.Request) {
	currentTheme := theme.GetThemeFromRequest(r)

	newTheme := config.LightTheme
	if currentTheme == config.LightTheme {
		newTheme = config.DarkTheme
	}

	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: newTheme,
		Path:  "/",
	})

	w.Header().Set("Hx-Trigger", fmt.Sprintf(`{"themeChanged":{"value":"%s"}}`, newTheme))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("post")
	if slug == "" {
		http.Error(w, "Post parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := &sse.Client{
		Msg:  make(chan string),
		Slug: slug,
	}

	clients.Add(client)
	appLog.Debug().Str("slug", slug).Msg("New SSE client connected")

	defer func() {
		clients.Delete(client)
		appLog.Debug().Str("slug", slug).Msg("SSE client disconnected")
	}()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

// handleReloadPost pre-renders a changed post and pushes a reload event to
// its watchers. The rendered-document cache needs no eviction: changed
// content carries a new hash and simply keys a new entry, warmed here so the
// reloading clients hit it.
func handleReloadPost(slug string) {
	if post, err := postRepository.ReadPost(slug); err == nil {
		render.WarmCache(post.Markdown, post.MDContentHash)
	}
	go clients.Broadcast(slug, "reload")
}
