// ABOUTME: Serves the HTML landing page rendered from embedded markdown
// ABOUTME: Content is static per build, so rendering happens once at startup

// Package docs renders the gateway's landing page. The page source lives in
// content/landing.md, is rendered to HTML once at construction, and is served
// without authentication so prospective users can read how to connect.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content/*.md
var contentFS embed.FS

// markdown is the converter for page sources. Tables need the GFM extension.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// page is the HTML shell around the rendered markdown.
var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Parasol Persona Gateway</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; color: #1a1a2e; }
code, pre { font-family: ui-monospace, monospace; background: #f4f4f8; border-radius: 4px; }
code { padding: 0.1rem 0.3rem; }
pre { padding: 0.8rem; overflow-x: auto; }
pre code { padding: 0; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d4d4e0; padding: 0.3rem 0.6rem; text-align: left; }
a { color: #4a4ae0; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// Handler serves the rendered landing page.
type Handler struct {
	html []byte
}

// NewHandler renders the landing page for the given build version.
func NewHandler(version string) (*Handler, error) {
	src, err := contentFS.ReadFile("content/landing.md")
	if err != nil {
		return nil, fmt.Errorf("reading landing page source: %w", err)
	}
	src = bytes.ReplaceAll(src, []byte("{{version}}"), []byte(version))

	var body bytes.Buffer
	if err := markdown.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("rendering landing page: %w", err)
	}

	var out bytes.Buffer
	data := struct{ Content template.HTML }{Content: template.HTML(body.String())}
	if err := page.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("rendering page shell: %w", err)
	}

	return &Handler{html: out.Bytes()}, nil
}

// ServeHTTP writes the landing page.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(h.html)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(h.html)
}
