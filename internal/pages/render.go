package pages

import (
	"bytes"
	_ "embed"
	"html"
	"html/template"
	"net/url"
	"strings"

	"karaoke/internal/transcript"
)

//go:embed index.html.tmpl
var indexTemplateText string

var indexTemplate = template.Must(template.New("index").Parse(indexTemplateText))

type pageValues struct {
	Title      string
	AudioSrc   string
	JSONSrc    string
	Stylesheet string
	Script     string
}

// renderTemplate fills the literal {title}, {audio_src}, {json_src},
// {stylesheet_src} and {script_src} placeholders. Values are HTML-escaped;
// every other brace is left alone.
func renderTemplate(tmpl string, v pageValues) string {
	return strings.NewReplacer(
		"{title}", html.EscapeString(v.Title),
		"{audio_src}", html.EscapeString(v.AudioSrc),
		"{json_src}", html.EscapeString(v.JSONSrc),
		"{stylesheet_src}", html.EscapeString(v.Stylesheet),
		"{script_src}", html.EscapeString(v.Script),
	).Replace(tmpl)
}

// assetURL percent-encodes each segment of an output-relative path so names
// containing '#', '?' or spaces survive as URL references.
func assetURL(rel string) string {
	if rel == "" {
		return ""
	}
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// pageHref links a page from the index. The leading "./" keeps a colon in
// the first segment from reading as a URL scheme.
func pageHref(file string) template.URL {
	return template.URL("./" + url.PathEscape(file))
}

type indexEntry struct {
	Title    string
	File     template.URL
	Language string
	HasAudio bool
}

type indexData struct {
	Title      string
	Stylesheet string
	Entries    []indexEntry
}

func renderIndex(title, stylesheet string, pages []Page) ([]byte, error) {
	data := indexData{Title: title, Stylesheet: assetURL(stylesheet), Entries: make([]indexEntry, 0, len(pages))}
	for _, p := range pages {
		data.Entries = append(data.Entries, indexEntry{
			Title:    p.Title,
			File:     pageHref(p.File),
			Language: transcript.LanguageName(p.Language),
			HasAudio: p.Audio != "",
		})
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
