package runtime

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	hl "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders documents from a filesystem to HTML, once per path.
type Markdown struct {
	fsys  fs.FS
	md    goldmark.Markdown
	cache sync.Map // path -> string
}

func NewMarkdown(fsys fs.FS) *Markdown {
	return &Markdown{
		fsys: fsys,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				hl.NewHighlighting(hl.WithStyle("github")), // inline colours
			),
		),
	}
}

// File converts a markdown or source file to HTML. Non-markdown files are
// wrapped in a fenced block so they get highlighted by extension.
func (m *Markdown) File(path string) (string, error) {
	if v, ok := m.cache.Load(path); ok {
		return v.(string), nil
	}

	src, err := fs.ReadFile(m.fsys, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	lang := strings.TrimPrefix(filepath.Ext(path), ".") // ".go" -> "go"
	if lang != "" && lang != "md" && lang != "markdown" {
		src = append([]byte("```"+lang+"\n"), append(src, []byte("\n```")...)...)
	}

	html, err := m.render(src)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", path, err)
	}
	m.cache.Store(path, html)
	return html, nil
}

// String renders an inline markdown snippet. Not cached.
func (m *Markdown) String(src string) (string, error) {
	return m.render([]byte(src))
}

func (m *Markdown) render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
