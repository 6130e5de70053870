package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/response"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*.css
var staticFS embed.FS

// StaticHandler serves the embedded stylesheet; mount it under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// ResetPage is the view model for /reset_password/.
// The form is shown only when Token is set and Success is empty.
type ResetPage struct {
	Token        string
	TokenType    string
	Error        string
	Success      string
	OfferNewLink bool
	MinLength    int
	CSRFField    template.HTML
}

// RequestLinkPage is the view model for /reset_password/request/.
type RequestLinkPage struct {
	OrganizationID string
	Email          string
	Error          string
	Notice         string
	CSRFField      template.HTML
}

type ErrorPage struct {
	Message   string
	RequestID string
}

type layoutData struct {
	Title string
	Page  any
}

type Renderer struct {
	reset   *template.Template
	request *template.Template
	errPage *template.Template
}

func NewRenderer() (*Renderer, error) {
	parse := func(name string) (*template.Template, error) {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		return t, nil
	}

	reset, err := parse("reset_password.html")
	if err != nil {
		return nil, err
	}
	request, err := parse("request_link.html")
	if err != nil {
		return nil, err
	}
	errPage, err := parse("error.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{reset: reset, request: request, errPage: errPage}, nil
}

// MustRenderer panics on template errors; templates are embedded, so this only fails on a bad build.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (rd *Renderer) Reset(w http.ResponseWriter, r *http.Request, status int, p ResetPage) {
	if p.MinLength == 0 {
		p.MinLength = domain.MinPasswordLength
	}
	p.CSRFField = csrf.TemplateField(r)
	rd.render(w, r, rd.reset, status, layoutData{Title: "Reset your password", Page: p})
}

func (rd *Renderer) RequestLink(w http.ResponseWriter, r *http.Request, status int, p RequestLinkPage) {
	p.CSRFField = csrf.TemplateField(r)
	rd.render(w, r, rd.request, status, layoutData{Title: "Request a password reset link", Page: p})
}

// WriteError renders err as an HTML error page. Non-domain errors never leak details.
func (rd *Renderer) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	msg := "Something went wrong. Please try again later."
	if de, ok := domain.As(err); ok {
		msg = de.Message
	}
	rd.render(w, r, rd.errPage, response.StatusOf(err), layoutData{
		Title: "Password reset",
		Page:  ErrorPage{Message: msg, RequestID: response.RequestIDFromContext(r)},
	})
}

func (rd *Renderer) render(w http.ResponseWriter, r *http.Request, t *template.Template, status int, data layoutData) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("template render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
