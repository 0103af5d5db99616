package cli

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/mchmarny/cardiorisk/pkg/assess"
	"github.com/mchmarny/cardiorisk/pkg/input"
	"github.com/mchmarny/cardiorisk/pkg/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type pageData struct {
	Version    string
	Model      string
	Values     input.RawInput
	Errors     []string
	Assessment *assess.Assessment
	Metadata   *model.Metadata
}

func templateFuncs() template.FuncMap {
	p := message.NewPrinter(language.English)
	return template.FuncMap{
		"thousands": func(n int) string {
			return p.Sprintf("%d", n)
		},
		"percent": func(v float64) string {
			return p.Sprintf("%.2f%%", v*100)
		},
	}
}

func faviconHandler(w http.ResponseWriter, r *http.Request) {
	file, err := embedFS.ReadFile("assets/img/favicon.svg")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err = w.Write(file); err != nil {
		slog.Error("failed to write favicon", "error", err)
	}
}

func render(w http.ResponseWriter, tmpl *template.Template, name string, d *pageData) {
	d.Version = version

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, d); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

func indexViewHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		render(w, tmpl, "index", &pageData{Values: input.RawInput{}})
	}
}

// predictViewHandler scores the submitted form. Rejected input re-renders the
// form with the messages and the submitted values.
func predictViewHandler(tmpl *template.Template, m *model.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		raw := input.FromValues(r.PostForm)
		a, err := assess.Assess(r.Context(), m, raw)
		if err != nil {
			slog.Error("failed to assess input", "error", err, "request_id", requestID(r.Context()))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if !a.Valid() {
			render(w, tmpl, "index", &pageData{Values: raw, Errors: a.Errors})
			return
		}

		render(w, tmpl, "result", &pageData{Model: m.Name, Values: raw, Assessment: a})
	}
}

func aboutViewHandler(tmpl *template.Template, m *model.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		render(w, tmpl, "about", &pageData{Model: m.Name, Metadata: m.Metadata})
	}
}
