// ABOUTME: Help pages rendered from embedded markdown
// ABOUTME: Lists topics in a fixed order and converts the selected one with goldmark

package webadmin

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/2389/bloodlink-console/internal/api"
)

//go:embed docs/help/*.md
var helpDocsFS embed.FS

var helpTopicOrder = map[string]int{
	"getting-started": 1,
	"campaigns":       2,
	"donations":       3,
	"blood-units":     4,
	"profile":         5,
}

// handleHelp renders the help page with the selected topic
func (c *Console) handleHelp(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("topic")
	if selected == "" {
		selected = "getting-started"
	}

	entries, err := helpDocsFS.ReadDir("docs/help")
	if err != nil {
		c.logger.Error("failed to read help docs", "error", err)
		http.Error(w, "Failed to load help", http.StatusInternalServerError)
		return
	}

	var topics []helpTopic
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		topics = append(topics, helpTopic{
			Slug:   slug,
			Title:  api.Label(strings.ReplaceAll(slug, "-", " ")),
			Active: slug == selected,
		})
	}
	sort.Slice(topics, func(i, j int) bool {
		oi, ok := helpTopicOrder[topics[i].Slug]
		if !ok {
			oi = 100
		}
		oj, ok := helpTopicOrder[topics[j].Slug]
		if !ok {
			oj = 100
		}
		if oi != oj {
			return oi < oj
		}
		return topics[i].Slug < topics[j].Slug
	})

	// path.Base keeps ?topic= from escaping the docs directory
	md, err := helpDocsFS.ReadFile(path.Join("docs/help", path.Base(selected)+".md"))
	if err != nil {
		c.logger.Warn("unknown help topic", "topic", selected)
		md = []byte("# Not Found\n\nThis help topic could not be found.")
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(md, &buf); err != nil {
		c.logger.Error("failed to convert markdown", "error", err)
		buf.Reset()
		buf.WriteString("<p>Failed to render help content.</p>")
	}

	data := helpPageData{
		pageData: c.newPageData(w, r, "Help", "/help"),
		Topics:   topics,
		Content:  template.HTML(buf.String()),
	}
	c.renderPage(w, http.StatusOK, "help.html", data)
}
