package layout

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/iyunix/go-kbshell/internal/logging"
)

//go:embed templates
var templateFS embed.FS

// Pages lists every page template; each one is parsed into its own set
// together with the layout and the chrome partials.
var Pages = []string{
	"home.html",
	"chat.html",
	"data.html",
	"document.html",
	"login.html",
	"register.html",
	"error.html",
}

// RequestAuth reports whether the session behind r is authenticated.
type RequestAuth func(r *http.Request) bool

// TokenSource returns the CSRF token to embed for r. It may set cookies on w.
type TokenSource func(w http.ResponseWriter, r *http.Request) string

// View is the data handed to the layout template.
type View struct {
	Title         string
	Path          string
	Locale        string
	Chrome        Chrome
	Authenticated bool
	CSRFToken     string
	Data          map[string]interface{}
}

// Renderer executes page templates inside layout.html.
type Renderer struct {
	pages  map[string]*template.Template
	auth   RequestAuth
	csrf   TokenSource
	locale string
	logger logging.Logger
}

var funcs = template.FuncMap{
	"isoTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}

// NewRenderer parses all page sets up front so a broken template fails at
// startup rather than on first request.
func NewRenderer(auth RequestAuth, locale string, logger logging.Logger) (*Renderer, error) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(Pages)),
		auth:   auth,
		locale: locale,
		logger: logger,
	}
	for _, page := range Pages {
		ts, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials/*.html",
			"templates/pages/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		r.pages[page] = ts
	}
	return r, nil
}

// UseCSRF makes every rendered page carry a csrf-token meta tag from src.
func (rd *Renderer) UseCSRF(src TokenSource) {
	rd.csrf = src
}

// Chrome decides the chrome for r using the renderer's auth source.
func (rd *Renderer) Chrome(r *http.Request) (Chrome, bool) {
	authenticated := false
	check := func() bool {
		if rd.auth == nil {
			return false
		}
		authenticated = rd.auth(r)
		return authenticated
	}
	chrome := Decide(r.URL.Path, check)
	return chrome, authenticated
}

// Render writes page with status. The page is rendered into a buffer first so
// a template error never leaves a half-written response.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data map[string]interface{}) {
	ts, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("template not found", "page", page)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	chrome, authenticated := rd.Chrome(r)
	if data == nil {
		data = make(map[string]interface{})
	}
	var token string
	if rd.csrf != nil {
		token = rd.csrf(w, r)
	}
	view := View{
		Title:         title,
		Path:          r.URL.Path,
		Locale:        rd.locale,
		Chrome:        chrome,
		Authenticated: authenticated,
		CSRFToken:     token,
		Data:          data,
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "layout.html", view); err != nil {
		rd.logger.Error("template render error", "page", page, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	addSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
