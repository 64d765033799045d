package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/navigator"
	"github.com/AngelCh415/campaign-dashboard/internal/projection"
	"github.com/AngelCh415/campaign-dashboard/internal/render"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
	"github.com/AngelCh415/campaign-dashboard/internal/telemetry"
	"github.com/AngelCh415/campaign-dashboard/internal/utils"
)

// Agent configures GET /run-agent. With an empty URL the endpoint only
// answers with Hint.
type Agent struct {
	URL     string
	Client  ingest.HTTPClient
	Limiter *rate.Limiter
	Hint    string
}

type router struct {
	log     *slog.Logger
	ctl     *dashboard.Controller
	metrics *telemetry.Metrics
	agent   Agent
}

func NewRouter(log *slog.Logger, ctl *dashboard.Controller, m *telemetry.Metrics, agent Agent) http.Handler {
	rt := &router{log: log, ctl: ctl, metrics: m, agent: agent}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(m.Middleware)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !ctl.Ready() {
			http.Error(w, "results not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	if m != nil {
		mux.Method(http.MethodGet, "/metrics", m.Handler())
	}

	mux.Get("/", rt.page)
	mux.Get("/legacy", rt.legacy)
	mux.Get("/campaigns/{campaignID}", rt.drillDownFragment)

	mux.Post("/week/step", rt.weekStep)
	mux.Post("/selection", rt.selection)
	mux.Post("/mode", rt.mode)
	mux.Post("/reveal", rt.reveal)
	mux.Post("/reload", rt.reload)

	mux.Route("/api", func(api chi.Router) {
		api.Get("/view", rt.apiView)
		api.Get("/chart", rt.apiChart)
		api.Get("/drilldown/{campaignID}", rt.apiDrillDown)
	})

	mux.Get("/run-agent", rt.runAgent)

	return mux
}

func isHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

func (rt *router) page(w http.ResponseWriter, r *http.Request) {
	v := rt.ctl.View()
	if isHTMX(r) {
		templ.Handler(render.Dashboard(v)).ServeHTTP(w, r)
		return
	}
	templ.Handler(render.Page(v)).ServeHTTP(w, r)
}

func (rt *router) legacy(w http.ResponseWriter, r *http.Request) {
	v := rt.ctl.View()
	dd := rt.legacyDrillDown(v, r.URL.Query().Get("campaign"))
	if isHTMX(r) {
		templ.Handler(render.LegacyDashboard(v, dd)).ServeHTTP(w, r)
		return
	}
	templ.Handler(render.LegacyPage(v, dd)).ServeHTTP(w, r)
}

// legacyDrillDown defaults to the first campaign, like the legacy selector.
func (rt *router) legacyDrillDown(v dashboard.View, campaign string) *projection.DrillDown {
	if !v.HasData() {
		return nil
	}
	id := models.ID(strings.TrimSpace(campaign))
	if id == "" {
		if len(v.Campaigns) == 0 {
			return nil
		}
		id = v.Campaigns[0].ID
	}
	dd, err := rt.ctl.DrillDown(id)
	if err != nil {
		return nil
	}
	return &dd
}

func (rt *router) drillDownFragment(w http.ResponseWriter, r *http.Request) {
	dd, err := rt.ctl.DrillDown(models.ID(chi.URLParam(r, "campaignID")))
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	templ.Handler(render.DrillDownTable(dd)).ServeHTTP(w, r)
}

func (rt *router) weekStep(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("dir"))
	dir := navigator.Direction(n)
	if err != nil || !dir.Valid() {
		rt.fail(w, r, badRequest("dir must be -1 or 1"))
		return
	}
	if _, err := rt.ctl.OnWeekStep(dir); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r)
}

func (rt *router) selection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		rt.fail(w, r, badRequest("bad form"))
		return
	}
	op, err := dashboard.ParseSelectionOp(r.Form.Get("op"))
	if err != nil {
		rt.fail(w, r, badRequest(err.Error()))
		return
	}
	ids := make([]models.ID, 0, len(r.Form["campaign"]))
	for _, raw := range r.Form["campaign"] {
		ids = append(ids, models.ID(strings.TrimSpace(raw)))
	}
	if err := rt.ctl.OnSelectionChange(op, ids); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r)
}

func (rt *router) mode(w http.ResponseWriter, r *http.Request) {
	mode, err := store.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		rt.fail(w, r, badRequest(err.Error()))
		return
	}
	if err := rt.ctl.OnWindowModeChange(mode); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r)
}

func (rt *router) reveal(w http.ResponseWriter, r *http.Request) {
	if _, err := rt.ctl.StartReveal(); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r)
}

func (rt *router) reload(w http.ResponseWriter, r *http.Request) {
	// el error queda reflejado en la vista
	_ = rt.ctl.Load(r.Context())
	rt.done(w, r)
}

// done answers a form post: the fresh fragment for HTMX, otherwise a 303
// back to the page the form came from.
func (rt *router) done(w http.ResponseWriter, r *http.Request) {
	target := back(r)
	if isHTMX(r) {
		v := rt.ctl.View()
		if target == "/legacy" {
			templ.Handler(render.LegacyDashboard(v, rt.legacyDrillDown(v, ""))).ServeHTTP(w, r)
			return
		}
		templ.Handler(render.Dashboard(v)).ServeHTTP(w, r)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// back only trusts the path of the Referer, never its host.
func back(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" {
		return "/"
	}
	if ref.Path == "/legacy" {
		if q := ref.Query().Get("campaign"); q != "" {
			return "/legacy?campaign=" + url.QueryEscape(q)
		}
		return "/legacy"
	}
	return "/"
}

func (rt *router) apiView(w http.ResponseWriter, r *http.Request) {
	v := rt.ctl.View()
	status := http.StatusOK
	if !rt.ctl.Ready() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, v)
}

func (rt *router) apiChart(w http.ResponseWriter, r *http.Request) {
	metric, err := projection.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ch, err := rt.ctl.Chart(metric)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (rt *router) apiDrillDown(w http.ResponseWriter, r *http.Request) {
	dd, err := rt.ctl.DrillDown(models.ID(chi.URLParam(r, "campaignID")))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dd)
}

func (rt *router) runAgent(w http.ResponseWriter, r *http.Request) {
	if rt.agent.URL == "" {
		writeJSON(w, http.StatusOK, map[string]string{"message": rt.agent.Hint})
		return
	}
	if rt.agent.Limiter != nil && !rt.agent.Limiter.Allow() {
		rt.metrics.ObserveAgentRun("limited")
		http.Error(w, "agent run already requested, try again later", http.StatusTooManyRequests)
		return
	}
	body, err := ingest.TriggerAgentRun(r.Context(), rt.agent.Client, rt.agent.URL)
	if err != nil {
		rt.metrics.ObserveAgentRun("error")
		rt.log.Error("agent run", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	rt.metrics.ObserveAgentRun("ok")
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

type badRequest string

func (e badRequest) Error() string { return string(e) }

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.Is(err, dashboard.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.As(err, &br):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (rt *router) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 && status != http.StatusServiceUnavailable {
		rt.log.Error("request failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
	}
	title := http.StatusText(status)
	if errors.Is(err, dashboard.ErrNotLoaded) {
		title = "Results not loaded yet"
	}
	templ.Handler(render.ErrorPage(title, err.Error()), templ.WithStatus(status)).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
