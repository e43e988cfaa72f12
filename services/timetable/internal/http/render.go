package http

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/board"
)

//go:embed templates/*.html static/*
var assets embed.FS

type pageSet struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"dayName": func(day int) string { return board.DayNames[day] },
	"inc":     func(n int) int { return n + 1 },
	"deref": func(value *string) string {
		if value == nil {
			return ""
		}
		return *value
	},
	"orDash": func(value *string) string {
		if value == nil || *value == "" {
			return "-"
		}
		return *value
	},
	"eqPtr": func(value *string, target string) bool {
		return value != nil && *value == target
	},
}

func loadPages() (*pageSet, error) {
	set := &pageSet{pages: map[string]*template.Template{}}
	for _, name := range []string{"login", "admin", "teacher", "student"} {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(assets,
			"templates/layout.html",
			"templates/board.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, err
		}
		set.pages[name] = tmpl
	}
	return set, nil
}

// render writes the page into a buffer first so a template error still
// produces a clean 500.
func (p *pageSet) render(w http.ResponseWriter, status int, name string, data interface{}) error {
	tmpl, ok := p.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Flash messages survive one redirect in a short-lived cookie.

const flashCookie = "huwaari_flash"

type flash struct {
	Kind    string
	Message string
}

func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	return &flash{Kind: kind, Message: message}
}
