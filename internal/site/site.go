// Package site renders the public marketing and policy pages from embedded
// markdown.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed pages/*.md templates/layout.html
var content embed.FS

var ErrPageNotFound = errors.New("page not found")

// Page is one rendered markdown page.
type Page struct {
	Slug  string
	Path  string
	Label string
	Title string
	HTML  template.HTML
}

type navItem struct {
	Slug  string
	Path  string
	Label string
}

// Pages in navigation order.
var navigation = []navItem{
	{Slug: "home", Path: "/", Label: "Home"},
	{Slug: "support", Path: "/support", Label: "Support"},
	{Slug: "privacy", Path: "/privacy", Label: "Privacy"},
	{Slug: "terms", Path: "/terms", Label: "Terms"},
	{Slug: "account-deletion", Path: "/account-deletion", Label: "Account Deletion"},
}

// Raw HTML in the markdown is escaped: WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

// Site holds every page pre-rendered at startup.
type Site struct {
	layout *template.Template
	pages  map[string]*Page // by path
	now    func() time.Time
}

func New() (*Site, error) {
	layout, err := template.ParseFS(content, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	s := &Site{layout: layout, pages: make(map[string]*Page, len(navigation)), now: time.Now}
	for _, item := range navigation {
		md, err := content.ReadFile("pages/" + item.Slug + ".md")
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", item.Slug, err)
		}
		var buf bytes.Buffer
		if err := mdRenderer.Convert(md, &buf); err != nil {
			return nil, fmt.Errorf("render page %s: %w", item.Slug, err)
		}
		s.pages[item.Path] = &Page{
			Slug:  item.Slug,
			Path:  item.Path,
			Label: item.Label,
			Title: title(md, item.Label),
			HTML:  template.HTML(buf.String()),
		}
	}
	return s, nil
}

// Paths lists the page URLs in navigation order.
func (s *Site) Paths() []string {
	out := make([]string, 0, len(navigation))
	for _, item := range navigation {
		out = append(out, item.Path)
	}
	return out
}

// Render writes the full HTML document for path.
func (s *Site) Render(w io.Writer, path string) error {
	page, ok := s.pages[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}
	return s.layout.Execute(w, struct {
		Page *Page
		Nav  []navItem
		Year int
	}{Page: page, Nav: navigation, Year: s.now().Year()})
}

// title is the first level-one heading, or fallback.
func title(md []byte, fallback string) string {
	for _, line := range strings.Split(string(md), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}
