// Command search is an interactive explorer over a posts directory: type a
// query to filter the corpus, or `related <slug>` to see what the ranker
// would surface next to a post.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mfigueira/folio/internal/logger"
	"github.com/mfigueira/folio/internal/model"
	"github.com/mfigueira/folio/internal/related"
	"github.com/mfigueira/folio/internal/repository"
	"github.com/mfigueira/folio/internal/search"
)

func main() {
	path := flag.String("path", "posts", "Path to the directory containing .md files")
	limit := flag.Int("limit", related.DefaultLimit, "Number of related posts to show")
	flag.Parse()

	repository.SetLogger(logger.New("warn"))

	repo := repository.NewFSPostRepository(*path)
	corpus, _, err := repo.GetPosts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading posts from %s: %v\n", *path, err)
		os.Exit(1)
	}

	// Define Lipgloss styles
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	fmt.Printf("Loaded %d posts. Type a query, 'related <slug>', or 'quit' to exit.\n", len(corpus))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(promptStyle.Render("search> "))

		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "quit" || line == "exit":
			return
		case line == "":
			continue
		case strings.HasPrefix(line, "related "):
			showRelated(corpus, strings.TrimSpace(strings.TrimPrefix(line, "related ")), *limit, titleStyle, metaStyle)
		default:
			showMatches(corpus, line, titleStyle, metaStyle)
		}
	}
}

func showMatches(corpus []model.Post, query string, titleStyle, metaStyle lipgloss.Style) {
	matches := search.Filter(corpus, query, "")
	if len(matches) == 0 {
		fmt.Println(metaStyle.Render("no matches"))
		return
	}
	for _, post := range matches {
		fmt.Printf("%s %s\n",
			titleStyle.Render(post.GetTitle()),
			metaStyle.Render(fmt.Sprintf("(%s) [%s]", post.Slug, strings.Join(post.Tags, ", "))))
	}
}

func showRelated(corpus []model.Post, slug string, limit int, titleStyle, metaStyle lipgloss.Style) {
	var ref *model.Post
	for i := range corpus {
		if corpus[i].Slug == slug {
			ref = &corpus[i]
			break
		}
	}
	if ref == nil {
		fmt.Println(metaStyle.Render("no such post: " + slug))
		return
	}

	ranked := related.Posts(*ref, corpus, limit)
	if len(ranked) == 0 {
		fmt.Println(metaStyle.Render("no related posts"))
		return
	}
	for _, post := range ranked {
		fmt.Printf("%s %s\n",
			titleStyle.Render(post.GetTitle()),
			metaStyle.Render(fmt.Sprintf("(%s) %d tags in common", post.Slug, post.Relevance)))
	}
}
