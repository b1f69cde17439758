package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/broadcast"
	"github.com/ppiankov/clarifai/internal/layout"
	"github.com/ppiankov/clarifai/internal/llm"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/present"
)

var funcs = template.FuncMap{
	"count": present.FormatCount,
	"pct": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v)
	},
	"timeAgo": present.TimeAgo,
	"notificationLabel": func(key string) string {
		return notificationLabels[key]
	},
	"add": func(a, b int) int { return a + b },
}

var notificationLabels = map[string]string{
	layout.NotifyNewTopics:        "New trending topics",
	layout.NotifyClaimVerified:    "Claim verified",
	layout.NotifyConflictDetected: "Conflicting reports detected",
	layout.NotifyFalseClaimAlert:  "False claim alerts",
}

// parsePages builds one template set per page, each sharing the layout and partials
func parsePages() (map[string]*template.Template, error) {
	names, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, entry := range names {
		name := entry.Name()
		if name == "layout.html" || name == "partials.html" {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", path.Join("templates", name))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = t
	}
	return pages, nil
}

// page is the data every template receives
type page struct {
	Title   string
	Path    string
	Nav     []layout.NavLink
	View    layout.ViewState
	Banners []present.Banner
	Now     time.Time
	Data    any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, banners []present.Banner, data any) {
	t, ok := s.pages[name]
	if !ok {
		s.logger.Error("missing page template", zap.String("page", name))
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}

	p := page{
		Title:   title,
		Path:    r.URL.Path,
		Nav:     layout.Nav(r.URL.Path),
		View:    s.viewState(r),
		Banners: banners,
		Now:     s.now(),
		Data:    data,
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the error taxonomy onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, broadcast.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, broadcast.ErrJobFinished):
		return http.StatusConflict
	case errors.Is(err, llm.ErrCitationLeak):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrUnreachableService),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrInvalidDataShape):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Warn("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// bannersFor turns result metadata into deduplicated panel notices
func bannersFor(metas ...backend.Meta) []present.Banner {
	var (
		out  []present.Banner
		seen = make(map[string]bool)
	)
	add := func(b present.Banner) {
		if !seen[b.Message] {
			seen[b.Message] = true
			out = append(out, b)
		}
	}
	for _, m := range metas {
		switch {
		case m.Origin == backend.OriginDemo && m.Err != nil:
			add(present.BannerDemoData)
		case m.Origin == backend.OriginStale:
			add(present.BannerCachedData)
		}
		if m.Rejected > 0 {
			add(present.BannerRejectedRecords)
		}
	}
	return out
}

// bannerForError is the notice shown in place of a panel that failed
func bannerForError(err error) present.Banner {
	if errors.Is(err, model.ErrUnreachableService) {
		return present.BannerAPIUnavailable
	}
	return present.Banner{Variant: present.VariantDanger, Message: err.Error()}
}

// wantsHTML reports whether the client is a browser form rather than a script
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// redirectBack sends a form post back to the page it came from
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := r.FormValue("return")
	if !localPath(target) {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// localPath reports whether target is a path on this site. Browsers treat
// a backslash like a slash, so "/\host" counts as another host.
func localPath(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	if strings.ContainsAny(target, "\\\r\n\t") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.User == nil
}
