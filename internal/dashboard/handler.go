package dashboard

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"noticeboard/internal/config"
	"noticeboard/internal/notice"
	"noticeboard/internal/routing"
	"noticeboard/internal/storage"
	"noticeboard/pkg/logx"
)

const recentAuditCount = 5

// Handler serves the backend routes. Config snapshots are swapped in with
// Update and never modified in place.
type Handler struct {
	engine *notice.Engine
	cache  *routing.Cache
	store  storage.Store // optional
	log    logx.Logger

	state atomic.Pointer[handlerState]
}

type handlerState struct {
	cfg        *config.Config
	configPath string
	limiter    *rate.Limiter
}

func NewHandler(engine *notice.Engine, cache *routing.Cache, store storage.Store, log logx.Logger) *Handler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Handler{engine: engine, cache: cache, store: store, log: log}
}

// Update installs a new config snapshot. The rate limiter is kept when its
// rate did not change so a reload does not refill the bucket.
func (h *Handler) Update(cfg *config.Config, configPath string) {
	if cfg == nil {
		return
	}
	perSec := cfg.Server.RatePerSec
	next := &handlerState{cfg: cfg, configPath: configPath}
	if prev := h.state.Load(); prev != nil && prev.limiter != nil && prev.cfg.Server.RatePerSec == perSec {
		next.limiter = prev.limiter
	} else if perSec > 0 {
		next.limiter = rate.NewLimiter(rate.Limit(perSec), perSec)
	}
	h.state.Store(next)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st := h.state.Load()
	if st == nil {
		http.Error(w, "not configured", http.StatusServiceUnavailable)
		return
	}

	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", reqID)

	start := time.Now()
	rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	route := routing.Match(r.URL.Path, st.cfg.Server.MountPath+st.cfg.Server.BackendPath)

	switch route {
	case routing.Dashboard:
		h.serveDashboard(rw, r, st)
	case routing.Notices:
		h.serveNotices(rw, r, st)
	case routing.ClearCache:
		h.serveClearCache(rw, r, st, reqID)
	default:
		http.NotFound(rw, r)
	}

	h.log.Debug("http request",
		logx.String("request_id", reqID),
		logx.String("method", r.Method),
		logx.String("path", r.URL.Path),
		logx.String("route", route),
		logx.Int("status", rw.status),
		logx.Duration("took", time.Since(start)),
	)
}

func (h *Handler) allow(w http.ResponseWriter, st *handlerState) bool {
	if st.limiter == nil || st.limiter.Allow() {
		return true
	}
	w.Header().Set("Retry-After", "1")
	http.Error(w, "too many requests", http.StatusTooManyRequests)
	return false
}

func (h *Handler) evaluate(r *http.Request, st *handlerState, route string) notice.Result {
	req := RequestFromHTTP(r, route, st.cfg.Server.TrustProxy)
	return h.engine.Evaluate(BuildContext(st.cfg, st.configPath, h.cache.Known(), req))
}

func (h *Handler) serveDashboard(w http.ResponseWriter, r *http.Request, st *handlerState) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	if !h.allow(w, st) {
		return
	}
	res := h.evaluate(r, st, routing.Dashboard)

	var audit []storage.AuditEntry
	if h.store != nil {
		var err error
		if audit, err = h.store.RecentAudit(r.Context(), recentAuditCount); err != nil {
			h.log.Warn("recent audit unavailable", logx.Err(err))
		}
	}

	clearURL := h.backendURL(r, st) + "/" + routing.ClearCache
	page := newPage(res, audit, withQueryToken(r, clearURL), r.URL.Query().Get("cleared") != "")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := renderPage(w, page); err != nil {
		h.log.Warn("dashboard render failed", logx.Err(err))
	}
}

// noticesResponse is the JSON form of a Result.
type noticesResponse struct {
	Route         string          `json:"route"`
	Severity      int             `json:"severity"`
	SeverityLabel string          `json:"severity_label,omitempty"`
	Notices       []noticePayload `json:"notices"`
}

type noticePayload struct {
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Severity int    `json:"severity"`
	Label    string `json:"label"`
}

func toResponse(route string, res notice.Result) noticesResponse {
	out := noticesResponse{
		Route:         route,
		Severity:      int(res.Severity),
		SeverityLabel: res.Severity.Label(),
		Notices:       make([]noticePayload, 0, len(res.Notices)),
	}
	for _, n := range res.Notices {
		out.Notices = append(out.Notices, noticePayload{
			Message:  n.Message,
			Detail:   n.Detail,
			Severity: int(n.Severity),
			Label:    n.Severity.Label(),
		})
	}
	return out
}

// serveNotices returns the notices as JSON. ?route= evaluates as if the
// request were for another route (default: the dashboard).
func (h *Handler) serveNotices(w http.ResponseWriter, r *http.Request, st *handlerState) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if !h.allow(w, st) {
		return
	}
	route := strings.TrimSpace(r.URL.Query().Get("route"))
	if route == "" {
		route = routing.Dashboard
	}
	writeJSON(w, http.StatusOK, toResponse(route, h.evaluate(r, st, route)))
}

// serveClearCache rebuilds the routing requirement. Browsers post the
// dashboard form and are sent back to the dashboard.
func (h *Handler) serveClearCache(w http.ResponseWriter, r *http.Request, st *handlerState, reqID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	req, err := h.cache.Clear(r.Context(), ContentTypeSlugs(st.cfg), r.RemoteAddr, reqID)
	if err != nil {
		h.log.Error("cache clear failed", logx.String("request_id", reqID), logx.Err(err))
		http.Error(w, "cache clear failed", http.StatusInternalServerError)
		return
	}
	h.log.Info("cache cleared", logx.String("request_id", reqID), logx.String("actor", r.RemoteAddr))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"requirement":   req,
			"content_types": routing.ParseRequirement(req),
		})
		return
	}
	dest := withQueryToken(r, h.backendURL(r, st)+"/?cleared=1")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// backendURL is the backend root path as the client sees it, including a
// trusted proxy prefix.
func (h *Handler) backendURL(r *http.Request, st *handlerState) string {
	req := RequestFromHTTP(r, "", st.cfg.Server.TrustProxy)
	return proxyPrefix(req.Prefix) + st.cfg.Server.MountPath + st.cfg.Server.BackendPath
}

// withQueryToken carries a ?token= the request authenticated with over to
// dest, so browser navigation keeps working without a bearer header.
func withQueryToken(r *http.Request, dest string) string {
	tok := r.URL.Query().Get("token")
	if tok == "" {
		return dest
	}
	sep := "?"
	if strings.Contains(dest, "?") {
		sep = "&"
	}
	return dest + sep + "token=" + url.QueryEscape(tok)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
