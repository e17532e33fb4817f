package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "arrivatui/internal/errors"
	"arrivatui/internal/model"
	"arrivatui/internal/parser"
	"arrivatui/internal/query"
	"arrivatui/internal/telemetry"
)

// Catalogue supplies the full stop list once at startup.
type Catalogue interface {
	FetchStops(ctx context.Context) ([]model.Stop, error)
}

// TripSource runs one trip search against the remote service.
type TripSource interface {
	FetchTrips(ctx context.Context, q query.TripQuery) (map[string]any, error)
}

// Phase is the step of the stop selection.
type Phase int

const (
	ChoosingOrigin Phase = iota
	ChoosingDestination
	Ready
)

func (p Phase) String() string {
	switch p {
	case ChoosingOrigin:
		return "choosing origin"
	case ChoosingDestination:
		return "choosing destination"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the selection phase with the stops committed so far.
// Ready has both stops, ChoosingDestination only the origin, ChoosingOrigin none.
type State struct {
	Phase       Phase
	Origin      *model.Stop
	Destination *model.Stop
}

// Valid reports whether the committed stops agree with the phase.
func (s State) Valid() bool {
	switch s.Phase {
	case ChoosingOrigin:
		return s.Origin == nil && s.Destination == nil
	case ChoosingDestination:
		return s.Origin != nil && s.Destination == nil
	case Ready:
		return s.Origin != nil && s.Destination != nil
	default:
		return false
	}
}

// Event is an abstract key press.
type Event int

const (
	Up Event = iota
	Down
	Enter
	Quit
)

func (e Event) String() string {
	switch e {
	case Up:
		return "up"
	case Down:
		return "down"
	case Enter:
		return "enter"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Option configures a Flow.
type Option func(*Flow)

// WithDate fixes the travel date (DD-MM-YYYY). Empty means today.
func WithDate(date string) Option {
	return func(f *Flow) { f.date = date }
}

// WithMetrics records searches run through Step.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(f *Flow) { f.metrics = m }
}

// WithClock overrides the clock used for the default date.
func WithClock(clock func() time.Time) Option {
	return func(f *Flow) { f.clock = clock }
}

// Flow drives origin then destination selection and holds the trip results.
// Only one list takes navigation at a time, chosen by the phase.
type Flow struct {
	state        State
	origins      List[model.Stop]
	destinations List[model.Stop]

	outbound   List[model.Trip]
	inbound    List[model.Trip]
	hasResults bool
	focus      model.Side
	chosen     [2]*model.Trip

	needsSearch bool
	searchErr   error
	exited      bool

	date    string
	clock   func() time.Time
	metrics *telemetry.Metrics
}

// NewFlow starts in ChoosingOrigin with both lists seeded from stops.
func NewFlow(stops []model.Stop, opts ...Option) *Flow {
	f := &Flow{
		state:        State{Phase: ChoosingOrigin},
		origins:      NewList(stops),
		destinations: NewList(stops),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns a copy of the selection state.
func (f *Flow) State() State {
	s := State{Phase: f.state.Phase}
	if f.state.Origin != nil {
		o := *f.state.Origin
		s.Origin = &o
	}
	if f.state.Destination != nil {
		d := *f.state.Destination
		s.Destination = &d
	}
	return s
}

func (f *Flow) Origins() List[model.Stop]      { return f.origins }
func (f *Flow) Destinations() List[model.Stop] { return f.destinations }

// Trips returns the result list for side; false until results are installed.
func (f *Flow) Trips(side model.Side) (List[model.Trip], bool) {
	if side == model.Return {
		return f.inbound, f.hasResults
	}
	return f.outbound, f.hasResults
}

func (f *Flow) HasResults() bool { return f.hasResults }

// Exited reports whether Quit has been received.
func (f *Flow) Exited() bool { return f.exited }

// Err returns the error of the last search, if it failed.
func (f *Flow) Err() error { return f.searchErr }

// NeedsSearch reports whether the flow is waiting for a search to be run.
func (f *Flow) NeedsSearch() bool { return f.needsSearch && !f.exited }

func (f *Flow) Focus() model.Side { return f.focus }

// FocusSide makes side the trip list that takes navigation.
func (f *Flow) FocusSide(side model.Side) {
	if side == model.Outbound || side == model.Return {
		f.focus = side
	}
}

// ToggleSide swaps the focused trip list.
func (f *Flow) ToggleSide() {
	if f.focus == model.Outbound {
		f.focus = model.Return
	} else {
		f.focus = model.Outbound
	}
}

// Chosen returns the trip committed on side.
func (f *Flow) Chosen(side model.Side) (model.Trip, bool) {
	if side != model.Outbound && side != model.Return {
		return model.Trip{}, false
	}
	if t := f.chosen[side]; t != nil {
		return *t, true
	}
	return model.Trip{}, false
}

// Handle applies one input. A Quit anywhere in the input wins over everything else in it.
func (f *Flow) Handle(events ...Event) {
	for _, ev := range events {
		if ev == Quit {
			f.exited = true
			return
		}
	}
	if f.exited {
		return
	}
	for _, ev := range events {
		f.apply(ev)
	}
}

func (f *Flow) apply(ev Event) {
	switch f.state.Phase {
	case ChoosingOrigin:
		if stop, ok := step(&f.origins, ev); ok {
			f.state.Origin = &stop
			f.state.Phase = ChoosingDestination
		}
	case ChoosingDestination:
		if stop, ok := step(&f.destinations, ev); ok {
			f.state.Destination = &stop
			f.state.Phase = Ready
			f.needsSearch = true
		}
	case Ready:
		f.applyReady(ev)
	}
}

func (f *Flow) applyReady(ev Event) {
	if !f.hasResults {
		// A failed search is retried on Enter.
		if ev == Enter && f.searchErr != nil && !f.needsSearch {
			f.needsSearch = true
		}
		return
	}

	list := &f.outbound
	if f.focus == model.Return {
		list = &f.inbound
	}
	if trip, ok := step(list, ev); ok {
		f.chosen[f.focus] = &trip
	}
}

// step moves or commits on l. It returns the committed item for Enter.
func step[T any](l *List[T], ev Event) (T, bool) {
	switch ev {
	case Up:
		l.Previous()
	case Down:
		l.Next()
	case Enter:
		return l.Commit()
	}
	var zero T
	return zero, false
}

// Query builds the trip query for the committed stops.
func (f *Flow) Query() (query.TripQuery, error) {
	if f.state.Phase != Ready {
		return query.TripQuery{}, fmt.Errorf("cannot build a query while %s", f.state.Phase)
	}
	return query.FromStops(*f.state.Origin, *f.state.Destination, f.date, f.clock), nil
}

// Complete installs the outcome of a search. Results are only kept when err is nil;
// on error the flow stays in Ready so the same query can be retried.
func (f *Flow) Complete(outbound, inbound []model.Trip, err error) {
	f.needsSearch = false
	if err != nil {
		f.searchErr = err
		return
	}
	f.searchErr = nil
	f.outbound = NewList(outbound)
	f.inbound = NewList(inbound)
	f.hasResults = true
	f.focus = model.Outbound
	f.chosen = [2]*model.Trip{}
}

// Step applies one input and, when that input completes the selection, runs the
// search before returning. A Quit in the same input prevents the search.
func (f *Flow) Step(ctx context.Context, src TripSource, events ...Event) error {
	f.Handle(events...)
	if !f.NeedsSearch() {
		return nil
	}

	q, err := f.Query()
	if err != nil {
		return err
	}
	outbound, inbound, err := Search(ctx, src, q, f.metrics)
	f.Complete(outbound, inbound, err)
	return err
}

// Search fetches and parses the trips for q. It never returns a partial result.
func Search(ctx context.Context, src TripSource, q query.TripQuery, m *telemetry.Metrics) (outbound, inbound []model.Trip, err error) {
	telemetry.LogInfo("Searching trips", "from", q.From, "to", q.To, "date", q.Date)

	doc, err := src.FetchTrips(ctx, q)
	if err != nil {
		m.ObserveSearch(apperrors.Kind(err), 0, 0)
		telemetry.LogError("Trip fetch failed", err, "query", q.String())
		return nil, nil, err
	}

	outbound, inbound, err = parser.ParseTrips(doc)
	m.ObserveSearch(apperrors.Kind(err), len(outbound), len(inbound))
	if err != nil {
		telemetry.LogError("Trip response rejected", err, "query", q.String())
		return nil, nil, fmt.Errorf("search %s: %w", q, err)
	}

	telemetry.LogInfo("Trips found", "outward", len(outbound), "return", len(inbound))
	return outbound, inbound, nil
}

// ErrNoStops is returned when the catalogue is empty.
var ErrNoStops = errors.New("stop catalogue is empty")

// LoadCatalogue fetches the stop list, rejecting an empty one.
func LoadCatalogue(ctx context.Context, c Catalogue) ([]model.Stop, error) {
	stops, err := c.FetchStops(ctx)
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, ErrNoStops
	}
	telemetry.LogInfo("Stop catalogue loaded", "stops", len(stops))
	return stops, nil
}
