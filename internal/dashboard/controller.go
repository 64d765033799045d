package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/navigator"
	"github.com/AngelCh415/campaign-dashboard/internal/projection"
	"github.com/AngelCh415/campaign-dashboard/internal/selection"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
	"github.com/AngelCh415/campaign-dashboard/internal/telemetry"
)

var ErrNotLoaded = errors.New("dataset not loaded")

type Status string

const (
	StatusLoading        Status = "loading"
	StatusReady          Status = "ready"
	StatusFailed         Status = "failed"
	StatusAwaitingReveal Status = "awaiting_reveal"
)

// Loader produces a validated dataset. *ingest.Source is the production one.
type Loader interface {
	Load(ctx context.Context) (*models.Dataset, error)
	Location() string
}

type Options struct {
	Mode             store.Mode
	RevealDelay      time.Duration
	DefaultSelection int
	InlineActions    int
	LeaderboardSize  int
	Metric           projection.Metric
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = store.ModeFull
	}
	if o.Metric == "" {
		o.Metric = projection.MetricCTR
	}
	if o.InlineActions < 0 {
		o.InlineActions = 0
	}
	return o
}

// Controller owns all mutable dashboard state. Every mutation happens under
// mu, so concurrent requests are applied one at a time.
type Controller struct {
	src     Loader
	st      *store.MemoryStore
	log     *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	opts    Options

	mu        sync.RWMutex
	status    Status
	loadErr   error
	mode      store.Mode
	nav       *navigator.Navigator
	sel       *selection.Filter
	revealing bool
	timer     *time.Timer
	closed    bool
	version   uint64
}

func New(src Loader, st *store.MemoryStore, log *slog.Logger, m *telemetry.Metrics, opts Options) *Controller {
	opts = opts.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		src:     src,
		st:      st,
		log:     log,
		metrics: m,
		tracer:  otel.Tracer("github.com/AngelCh415/campaign-dashboard/internal/dashboard"),
		opts:    opts,
		status:  StatusLoading,
		mode:    opts.Mode,
		sel:     selection.New(),
	}
}

// Load runs the whole load flow. On failure the previous dataset, if any, is
// dropped, a pending reveal is cancelled and the controller reports
// StatusFailed.
func (c *Controller) Load(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "dashboard.Load",
		trace.WithAttributes(attribute.String("results.source", c.src.Location())))
	defer span.End()

	start := time.Now()
	ds, err := c.src.Load(ctx)
	c.metrics.ObserveLoad(err)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.status = StatusFailed
		c.loadErr = err
		c.nav = nil
		c.st.Reset()
		c.stopRevealLocked()
		c.log.Error("load results", slog.String("source", c.src.Location()), slog.String("err", err.Error()))
		return err
	}

	c.st.Put(ds, c.src.Location())
	c.loadErr = nil
	if latest, cached, stale := c.st.StaleCache(); stale {
		c.log.Warn("latest_week disagrees with history", slog.Int("latest_week", cached), slog.Int("last_entry_week", latest))
	}
	c.applyWindowLocked()
	c.pruneSelectionLocked(ds)
	c.seedSelectionLocked()

	span.SetAttributes(
		attribute.Int("results.weeks", len(ds.CampaignHistory)),
		attribute.String("dashboard.mode", string(c.mode)),
	)
	c.log.Info("results loaded",
		slog.String("source", c.src.Location()),
		slog.Int("weeks", len(ds.CampaignHistory)),
		slog.String("mode", string(c.mode)),
		slog.Duration("latency", time.Since(start)),
	)
	return nil
}

// applyWindowLocked recomputes the revealed window for the current mode and
// re-points the navigator at its newest week.
func (c *Controller) applyWindowLocked() {
	if c.loadErr != nil {
		c.nav = nil
		return
	}
	revealed := c.st.Window(c.mode)
	if len(revealed) == 0 {
		// demo sobre un historial de una sola semana
		c.nav = nil
		c.status = StatusAwaitingReveal
		return
	}
	if c.nav == nil {
		nav, err := navigator.New(revealed)
		if err != nil {
			c.status = StatusAwaitingReveal
			return
		}
		c.nav = nav
	} else if err := c.nav.OnWindowChange(revealed); err != nil {
		c.log.Warn("window change", slog.String("err", err.Error()))
	}
	c.status = StatusReady
}

// seedSelectionLocked picks the default selection from the revealed weeks
// only. It waits while the window is still empty.
func (c *Controller) seedSelectionLocked() {
	revealed := c.st.Window(c.mode)
	if len(revealed) == 0 {
		return
	}
	c.sel.EnsureDefault(projection.TopCampaignsByMeanROAS(revealed, c.opts.DefaultSelection))
}

// pruneSelectionLocked drops selected ids the first week of ds no longer has.
// A selection emptied this way is seeded again.
func (c *Controller) pruneSelectionLocked(ds *models.Dataset) {
	if c.sel.Len() == 0 || len(ds.CampaignHistory) == 0 {
		return
	}
	present := make(map[models.ID]bool)
	for _, cp := range ds.CampaignHistory[0].Snapshot().Campaigns {
		present[cp.ID] = true
	}
	var gone []models.ID
	for _, id := range c.sel.IDs() {
		if !present[id] {
			gone = append(gone, id)
		}
	}
	if len(gone) == 0 {
		return
	}
	c.sel.Remove(gone...)
	if c.sel.Len() == 0 {
		c.sel.Reset()
	}
	c.log.Info("selection pruned", slog.Int("dropped", len(gone)), slog.Int("kept", c.sel.Len()))
}

func (c *Controller) loadedLocked() bool {
	_, ok := c.st.Dataset()
	return ok && c.loadErr == nil
}

// OnWeekStep moves the navigator one week. moved is false at a boundary.
func (c *Controller) OnWeekStep(dir navigator.Direction) (moved bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nav == nil {
		return false, ErrNotLoaded
	}
	_, moved = c.nav.Step(dir)
	c.metrics.ObserveStep(int(dir), moved)
	if moved {
		c.version++
	}
	return moved, nil
}

type SelectionOp string

const (
	SelectReplace SelectionOp = "replace"
	SelectAdd     SelectionOp = "add"
	SelectRemove  SelectionOp = "remove"
)

func ParseSelectionOp(s string) (SelectionOp, error) {
	switch SelectionOp(s) {
	case SelectReplace, "":
		return SelectReplace, nil
	case SelectAdd:
		return SelectAdd, nil
	case SelectRemove:
		return SelectRemove, nil
	}
	return "", fmt.Errorf("unknown selection op %q", s)
}

func (c *Controller) OnSelectionChange(op SelectionOp, ids []models.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loadedLocked() {
		return ErrNotLoaded
	}
	switch op {
	case SelectAdd:
		c.sel.Add(ids...)
	case SelectRemove:
		c.sel.Remove(ids...)
	default:
		c.sel.Replace(ids)
	}
	c.version++
	return nil
}

func (c *Controller) OnWindowModeChange(mode store.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loadedLocked() {
		return ErrNotLoaded
	}
	if mode == c.mode {
		return nil
	}
	c.mode = mode
	c.applyWindowLocked()
	c.seedSelectionLocked()
	c.version++
	c.log.Info("window mode", slog.String("mode", string(mode)))
	return nil
}

// StartReveal schedules the demo reveal. It returns false when a reveal is
// already pending, the window is already full or the controller is closed.
func (c *Controller) StartReveal() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loadedLocked() {
		return false, ErrNotLoaded
	}
	if c.revealing || c.closed || c.mode != store.ModeDemo {
		return false, nil
	}
	c.revealing = true
	c.version++
	c.timer = time.AfterFunc(c.opts.RevealDelay, c.reveal)
	c.log.Info("reveal scheduled", slog.Duration("delay", c.opts.RevealDelay))
	return true, nil
}

func (c *Controller) reveal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revealing = false
	c.timer = nil
	// una recarga fallida cancela la revelación
	if c.closed || !c.loadedLocked() {
		return
	}
	c.mode = store.ModeFull
	c.applyWindowLocked()
	c.seedSelectionLocked()
	c.version++
	c.metrics.ObserveReveal()
	c.log.Info("newest week revealed", slog.Int("weeks", c.navLenLocked()))
}

func (c *Controller) navLenLocked() int {
	if c.nav == nil {
		return 0
	}
	return c.nav.Len()
}

// Close stops a pending reveal. It is only called at shutdown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopRevealLocked()
}

func (c *Controller) stopRevealLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.revealing = false
}

func (c *Controller) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedLocked()
}

func (c *Controller) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Controller) Chart(metric projection.Metric) (projection.Chart, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.nav == nil {
		return projection.Chart{}, ErrNotLoaded
	}
	if metric == "" {
		metric = c.opts.Metric
	}
	return projection.BuildChart(c.nav.Revealed(), c.sel.IDs(), metric), nil
}

func (c *Controller) DrillDown(id models.ID) (projection.DrillDown, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.nav == nil {
		return projection.DrillDown{}, ErrNotLoaded
	}
	dd := projection.BuildDrillDown(c.nav.Revealed(), id)
	if dd.AudienceMisses > 0 {
		c.metrics.ObserveMisses("audience", dd.AudienceMisses)
		c.log.Debug("drill-down audience misses", slog.String("campaign_id", id.String()), slog.Int("misses", dd.AudienceMisses))
	}
	return dd, nil
}
