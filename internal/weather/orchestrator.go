package weather

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures an Orchestrator.
type Options struct {
	// Cities is the fixed selectable list. Empty means DefaultCities.
	Cities []string
	// QueryTimeout bounds the whole geocode + forecast chain (0 = no bound).
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// Orchestrator sequences geocoding and forecast lookups and owns the visible
// QueryState. Only the most recently started query may update that state;
// starting a query also cancels the one it supersedes.
type Orchestrator struct {
	geocoder   Geocoder
	forecaster Forecaster
	states     StateStore
	cities     []string
	timeout    time.Duration
	log        *zap.Logger

	mu       sync.Mutex
	selected string
	gen      uint64
	cancel   context.CancelFunc
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(geocoder Geocoder, forecaster Forecaster, states StateStore, opts Options) *Orchestrator {
	cities := opts.Cities
	if len(cities) == 0 {
		cities = DefaultCities
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		geocoder:   geocoder,
		forecaster: forecaster,
		states:     states,
		cities:     append([]string(nil), cities...),
		timeout:    opts.QueryTimeout,
		log:        log.Named("orchestrator"),
	}
}

// Cities returns the selectable city names.
func (o *Orchestrator) Cities() []string {
	return append([]string(nil), o.cities...)
}

// Selected returns the current city selection.
func (o *Orchestrator) Selected() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selected
}

// State returns the visible QueryState.
func (o *Orchestrator) State() QueryState {
	return o.states.Current()
}

// Subscribe delivers the current state and every later change. The channel
// holds only the latest value; slow readers skip intermediate states.
func (o *Orchestrator) Subscribe() (<-chan QueryState, func()) {
	return o.states.Subscribe()
}

// Initialize selects city and queries it. The composition root calls it once.
func (o *Orchestrator) Initialize(ctx context.Context, city string) QueryState {
	o.log.Info("initializing with default city", zap.String("city", city))
	return o.Select(ctx, city)
}

// Select records a new selection and, when it is non-empty, queries it.
func (o *Orchestrator) Select(ctx context.Context, city string) QueryState {
	o.mu.Lock()
	o.selected = city
	o.mu.Unlock()

	if normalizeCity(city) == "" {
		return o.State()
	}
	return o.Query(ctx, city)
}

// Refresh queries the current selection again.
func (o *Orchestrator) Refresh(ctx context.Context) QueryState {
	return o.Query(ctx, o.Selected())
}

// Query runs the geocode → forecast chain for city and returns the state this
// query resolved to. The visible state is only updated if no newer query
// started in the meantime.
func (o *Orchestrator) Query(ctx context.Context, city string) QueryState {
	id := uuid.NewString()
	name := normalizeCity(city)
	log := o.log.With(zap.String("query_id", id), zap.String("city", name))

	if name == "" {
		st := Failure(id, "", MsgSelectCity)
		o.begin(st, nil)
		log.Debug("rejected empty city selection")
		return st
	}

	var cancel context.CancelFunc
	if o.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	gen := o.begin(Loading(id, name), cancel)
	defer o.finish(gen)

	st := o.run(ctx, log, id, name)
	if !o.states.Commit(gen, st) {
		log.Debug("discarding superseded query result", zap.String("status", string(st.Status)))
	}
	return st
}

func (o *Orchestrator) run(ctx context.Context, log *zap.Logger, id, name string) QueryState {
	loc, err := o.geocoder.Resolve(ctx, name)
	if err != nil {
		log.Warn("geocoding failed", zap.String("provider", o.geocoder.Name()), zap.Error(err))
		return Failure(id, name, Message(err))
	}

	f, err := o.forecaster.Fetch(ctx, loc.Latitude, loc.Longitude, loc.Timezone)
	if err != nil {
		log.Warn("forecast failed", zap.String("provider", o.forecaster.Name()), zap.Error(err))
		return Failure(id, name, MsgUnavailable)
	}

	rec := BuildRecord(loc, f)
	log.Info("weather query succeeded",
		zap.String("resolved", rec.City),
		zap.String("country", rec.Country),
		zap.Float64("temperature_c", rec.TemperatureC),
	)
	return Success(id, name, rec)
}

// begin makes st the visible state, cancelling any in-flight query.
func (o *Orchestrator) begin(st QueryState, cancel context.CancelFunc) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.gen = o.states.Begin(st)
	o.cancel = cancel
	return o.gen
}

func (o *Orchestrator) finish(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gen == gen {
		o.cancel = nil
	}
}
