// Package view renders the HTML pages of the catalog.  Every page is a
// template under templates/ that defines "title" and "content" and is
// executed inside the shared "base" layout.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/middleware"
)

//go:embed templates
var templatesFS embed.FS

// M is the data handed to a page template.
type M = map[string]any

// Context wraps page data with the per-request values every layout
// needs.
type Context struct {
	Identity middleware.Identity
	Flash    string
	CSRF     string
	Path     string
	Data     M
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the layout and partials.
func New() (*Renderer, error) {
	pages, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		name := strings.TrimSuffix(path.Base(p), ".html")
		if name == "base" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/base.html", "templates/partials/*.html", p)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page name.  data must be an M (or nil).
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	m, _ := data.(M)
	if m == nil {
		m = M{}
	}
	ctx := Context{Data: m}
	if c != nil {
		ctx.Identity = middleware.CurrentIdentity(c)
		ctx.Flash = middleware.FlashMessage(c)
		ctx.Path = c.Request().URL.Path
		if tok, ok := c.Get("csrf").(string); ok {
			ctx.CSRF = tok
		}
	}
	return t.ExecuteTemplate(w, "base", ctx)
}

// Has reports whether a page exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02.01.2006")
	},
	"num": func(n *int) string {
		if n == nil {
			return ""
		}
		return strconv.Itoa(*n)
	},
	"media": func(p string) string {
		if p == "" {
			return ""
		}
		return "/media/" + p
	},
	"yesno": func(b bool) string {
		if b {
			return "Да"
		}
		return "Нет"
	},
	// pageURL builds a list link that keeps the search query.
	"pageURL": func(query any, n int) string {
		v := url.Values{}
		if q, ok := query.(string); ok && q != "" {
			v.Set("query", q)
		}
		v.Set("page", strconv.Itoa(n))
		return "?" + v.Encode()
	},
	"idEq": func(a uint64, b *uint64) bool { return b != nil && *b == a },
	"dict": func(kv ...any) (M, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(M, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
}
