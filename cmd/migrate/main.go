package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mfigueira/folio/internal/db"
	"github.com/mfigueira/folio/internal/logger"
	"github.com/mfigueira/folio/internal/model"
	"github.com/mfigueira/folio/internal/repository"
	"github.com/mfigueira/folio/internal/util"
	"github.com/mfigueira/folio/internal/util/compression"
)

// main parses flags and migrates a directory of markdown files into sqlite.
func main() {
	path := flag.String("path", "", "Path to the directory containing .md files")
	dbPath := flag.String("db", "./folio.db", "Path to the sqlite database")
	comp := flag.String("compression", "zstd", "Body compression for stored posts (zstd or gzip)")
	flag.Parse()

	if *path == "" {
		log.Fatal("The --path flag is required")
	}

	l := logger.New("info")
	db.SetLogger(l)
	repository.SetLogger(l)

	// Initialize the SQLite database and ensure tables exist
	database := db.NewSQLite(*dbPath)
	if err := database.InitDB(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Create a repository instance to interact with the database. The server
	// must be run with the same compression choice to read these posts back.
	repo := repository.NewDBPostRepository(database)
	repo.SetCompressor(compression.ForName(*comp))

	files, err := os.ReadDir(*path)
	if err != nil {
		log.Fatalf("Error reading directory %s: %v", *path, err)
	}

	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".md") {
			err := processFile(*path, file, repo)
			if err != nil {
				log.Printf("Error processing file %s: %v", file.Name(), err)
				continue
			}
			log.Printf("Successfully saved post from file: %s", file.Name())
		}
	}
}

// processFile handles the migration of a single .md file to the database.
func processFile(dirPath string, file os.DirEntry, repo *repository.DBPostRepository) error {
	filePath := filepath.Join(dirPath, file.Name())

	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	// Keep front matter offsets byte-accurate when slicing the body out.
	content = markdown.NormalizeNewlines(content)

	fileInfo, err := file.Info()
	if err != nil {
		return err
	}
	modTime := fileInfo.ModTime().UTC()

	name := strings.TrimSuffix(file.Name(), ".md")

	post := &model.Post{
		ID:            model.PostID(uuid.New().String()),
		Slug:          util.Slugify(name),
		Title:         name,
		Markdown:      content,
		PublishedDate: modTime,
		ModifiedDate:  modTime,
	}

	// Front matter, when present, overrides file-derived metadata and is
	// stripped from the stored body.
	if fm, err := util.GetFrontMatter(content); err == nil {
		util.ApplyFrontMatter(post, fm)
		post.Markdown = content[fm.Consumed:]
	}

	if post.PublishedDate.IsZero() {
		post.PublishedDate = time.Now().UTC()
	}

	return repo.SavePost(post)
}
