// internal/web/handler.go
//
// HTTP surface of the service.
//
// Request life-cycle
// ------------------
//
//  1. CORS and security headers on every response.
//
//  2. Access gate, in order: bot filter → privileged-route check
//     (ping and lookup only) → per-IP rate limiter.
//
//  3. Snapshot assembly: edge metadata bag → optional local GeoLite2
//     enrichment → per-field resolution tables.
//
//  4. Visit log fires fire-and-forget; the response never waits.
//
//  5. Rendering: plain text for terminal clients, JSON otherwise; the
//     .txt and .json suffixes force one representation.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nos486/netmon/internal/edge"
	"github.com/nos486/netmon/internal/gate"
	"github.com/nos486/netmon/internal/lookup"
	"github.com/nos486/netmon/internal/metrics"
	"github.com/nos486/netmon/internal/middleware"
	"github.com/nos486/netmon/internal/render"
	"github.com/nos486/netmon/internal/snapshot"
	"github.com/nos486/netmon/internal/ua"
)

const banner = "netmon is running.\n"

// VisitRecorder persists visit triples, best-effort.
type VisitRecorder interface {
	Record(ip, country, userAgent string)
}

// Resolver maps an arbitrary address to a geolocation record.
type Resolver interface {
	Lookup(ctx context.Context, ip string) (*lookup.Record, error)
}

// Handler owns the route tree and its collaborators.
type Handler struct {
	classifier ua.Classifier
	geo        *edge.GeoDB // nil disables local enrichment
	visits     VisitRecorder
	resolver   Resolver
	store      gate.CounterStore
	token      string
	limit      int
	window     time.Duration
}

// Options configures New.
type Options struct {
	Classifier ua.Classifier
	Geo        *edge.GeoDB
	Visits     VisitRecorder
	Resolver   Resolver
	Store      gate.CounterStore
	Token      string
	Limit      int
	Window     time.Duration
}

// New builds a Handler.  Zero Limit and Window fall back to the
// documented 60 requests per 60 seconds.
func New(opts Options) *Handler {
	h := &Handler{
		classifier: opts.Classifier,
		geo:        opts.Geo,
		visits:     opts.Visits,
		resolver:   opts.Resolver,
		store:      opts.Store,
		token:      opts.Token,
		limit:      opts.Limit,
		window:     opts.Window,
	}
	if h.classifier == nil {
		h.classifier = ua.Heuristic{}
	}
	if h.limit <= 0 {
		h.limit = gate.DefaultLimit
	}
	if h.window <= 0 {
		h.window = gate.DefaultWindow
	}
	return h
}

// Routes assembles the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS, middleware.Security)

	r.Get("/", h.handleRoot)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	rate := gate.RateLimit(h.store, h.limit, h.window)

	r.Route("/api", func(api chi.Router) {
		// Report endpoints: bot-filtered and rate-limited, but not
		// privileged-gated.
		api.Group(func(g chi.Router) {
			g.Use(gate.BotFilter, rate)
			g.Get("/ip", h.handleIP)
			g.Get("/ip.txt", h.handleIPText)
			g.Get("/ip.json", h.handleIPJSON)
		})

		// Privileged endpoints: full gate, cheap stages first.
		api.Group(func(g chi.Router) {
			g.Use(gate.BotFilter, gate.RequireAuth(h.token), rate)
			g.Get("/ping", h.handlePing)
			g.Get("/lookup", h.handleLookup)
		})
	})

	return r
}

// snapshot assembles the canonical data object for r.
func (h *Handler) snapshot(r *http.Request) snapshot.Snapshot {
	bag := edge.FromRequest(r)
	h.geo.Enrich(bag)
	return snapshot.Extract(r.Header, bag, h.classifier)
}

func (h *Handler) recordVisit(s snapshot.Snapshot) {
	if h.visits != nil {
		h.visits.Record(s.IP, s.Country, s.UserAgent)
	}
}

/*──────────────────────────── handlers ─────────────────────────────────────*/

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("root").Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(banner))
}

// handleIP is the content-negotiated report.
func (h *Handler) handleIP(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("ip").Inc()
	s := h.snapshot(r)
	h.recordVisit(s)

	if render.WantsText(r.UserAgent()) {
		render.Text(w, s)
		return
	}
	render.JSON(w, http.StatusOK, render.FullPayload(s))
}

// handleIPText always renders the plain-text report.
func (h *Handler) handleIPText(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("ip_txt").Inc()
	s := h.snapshot(r)
	h.recordVisit(s)
	render.Text(w, s)
}

// handleIPJSON always renders the data-only payload.
func (h *Handler) handleIPJSON(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("ip_json").Inc()
	s := h.snapshot(r)
	h.recordVisit(s)
	render.JSON(w, http.StatusOK, render.DataPayload(s))
}

// handlePing is the privileged liveness probe.  ?log=1 additionally
// records a visit.
func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("ping").Inc()
	if flag := r.URL.Query().Get("log"); flag == "1" || flag == "true" {
		h.recordVisit(h.snapshot(r))
	}
	render.JSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleLookup resolves an arbitrary caller-supplied address.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("lookup").Inc()

	ip := r.URL.Query().Get("ip")
	if ip == "" {
		apiError(w, http.StatusBadRequest, "invalid_input",
			"Query parameter ip is required.")
		return
	}

	rec, err := h.resolver.Lookup(r.Context(), ip)
	switch {
	case err == nil:
		render.JSON(w, http.StatusOK, rec)
	case errors.Is(err, lookup.ErrInvalidInput):
		apiError(w, http.StatusBadRequest, "invalid_input",
			"Not a valid IP address.")
	case errors.Is(err, lookup.ErrNotFound):
		apiError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		apiError(w, http.StatusInternalServerError, "lookup_failed",
			"The lookup service is unavailable.")
	}
}

func apiError(w http.ResponseWriter, status int, code, msg string) {
	render.JSON(w, status, map[string]string{
		"error":   code,
		"message": msg,
	})
}
