package services

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/matrix"
	"deadline-route-service/internal/ports"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrUnsupportedKind is returned when no matrix provider serves a kind.
	ErrUnsupportedKind = errors.New("plan tour: no matrix provider for kind")
	// ErrMissingLocation is returned for stops with neither coordinates nor an address.
	ErrMissingLocation = errors.New("plan tour: stop has no coordinates or address")
	// ErrGeocode wraps geocoding failures so callers can tell them apart from misuse.
	ErrGeocode = errors.New("plan tour: geocoding failed")
	// ErrNoRepository is returned when stored points are requested but no
	// repository is configured.
	ErrNoRepository = errors.New("plan tour: stored points requested but no repository configured")
)

// StopInput is one requested stop. Coordinates are used when HasCoords is
// set; otherwise Address is geocoded. Deadline <= 0 means no deadline.
type StopInput struct {
	ID        string
	Lon, Lat  float64
	HasCoords bool
	Deadline  float64
	Address   string
}

type PlanTourRequest struct {
	Kind      domain.Kind
	Strategy  Strategy
	Seed      int64
	UseStored bool
	Depot     StopInput
	Stops     []StopInput
}

// TourPlan is the outcome of PlanTour together with the matrix it was
// solved over.
type TourPlan struct {
	Route    *domain.Route
	Matrix   *matrix.TravelMatrix
	Kind     domain.Kind
	Strategy Strategy
}

// Recorder receives solve and populate outcomes.
type Recorder interface {
	ObserveSolve(kind, strategy, status string, excluded int, dur time.Duration)
	ObservePopulate(kind string, err error)
}

type PlannerConfig struct {
	Providers map[domain.Kind]ports.MatrixProvider
	// Geocoder and Repository are optional.
	Geocoder   ports.Geocoder
	Repository ports.PointRepository
	Recorder   Recorder
	Defaults   Options
	// MatrixTimeout bounds matrix population; 0 means no extra bound.
	MatrixTimeout time.Duration
}

// TourPlanner builds a fresh matrix per request and runs the solver on it.
// It is safe for concurrent use as long as its collaborators are.
type TourPlanner struct {
	cfg PlannerConfig
}

func NewTourPlanner(cfg PlannerConfig) (*TourPlanner, error) {
	if len(cfg.Providers) == 0 {
		return nil, errors.New("new tour planner: no matrix providers configured")
	}
	if cfg.Defaults.MaxPasses <= 0 {
		cfg.Defaults = DefaultOptions()
	}
	return &TourPlanner{cfg: cfg}, nil
}

// Kinds lists the kinds this planner can solve for.
func (p *TourPlanner) Kinds() []domain.Kind {
	out := make([]domain.Kind, 0, len(p.cfg.Providers))
	for _, k := range domain.RegisteredKinds() {
		if _, ok := p.cfg.Providers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (p *TourPlanner) PlanTour(ctx context.Context, req PlanTourRequest) (*TourPlan, error) {
	start := time.Now()

	provider, ok := p.cfg.Providers[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedKind, req.Kind)
	}

	opts := p.cfg.Defaults
	if req.Strategy != "" {
		opts.Strategy = req.Strategy
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}

	inputs := append([]StopInput{req.Depot}, req.Stops...)
	coords, err := p.resolve(ctx, inputs)
	if err != nil {
		return nil, err
	}

	namer := &domain.Namer{}
	points := make([]domain.Point, len(inputs))
	for i, in := range inputs {
		deadline := in.Deadline
		if i == 0 {
			deadline = 0
		}
		c := coords[i]
		point := domain.NewPointNamed(namer, req.Kind, in.ID, c.Lon, c.Lat, deadline)
		if addr := strings.TrimSpace(in.Address); addr != "" {
			point = point.WithAddress(addr)
		}
		points[i] = point
	}
	depot := points[0]

	if req.UseStored {
		if p.cfg.Repository == nil {
			return nil, ErrNoRepository
		}
		stored, err := p.cfg.Repository.ListPoints(ctx, req.Kind)
		if err != nil {
			return nil, fmt.Errorf("plan tour: list stored points: %w", err)
		}
		points = append(points, stored...)
	}

	m, err := matrix.New(req.Kind, provider)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}
	if err := m.AddAll(points); err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	plan := &TourPlan{Matrix: m, Kind: req.Kind, Strategy: opts.Strategy}

	if perr := p.populate(ctx, m); perr != nil {
		plan.Route = failRoute(depot, fmt.Sprintf("Matrix could not be populated: %v", perr))
	} else {
		solver, err := NewSolver(m, opts)
		if err != nil {
			return nil, fmt.Errorf("plan tour: %w", err)
		}
		route, err := solver.Solve(ctx, depot)
		if err != nil {
			return nil, fmt.Errorf("plan tour: %w", err)
		}
		plan.Route = route
	}

	if p.cfg.Recorder != nil {
		p.cfg.Recorder.ObserveSolve(
			string(req.Kind), string(opts.Strategy), string(plan.Route.Status),
			len(plan.Route.Excluded), time.Since(start),
		)
	}

	return plan, nil
}

func (p *TourPlanner) populate(ctx context.Context, m *matrix.TravelMatrix) error {
	if p.cfg.MatrixTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.MatrixTimeout)
		defer cancel()
	}

	err := m.Populate(ctx)
	if p.cfg.Recorder != nil {
		p.cfg.Recorder.ObservePopulate(string(m.Kind()), err)
	}
	return err
}

// resolve returns coordinates aligned with inputs, geocoding the stops that
// only carry an address in one batch.
func (p *TourPlanner) resolve(ctx context.Context, inputs []StopInput) ([]domain.Coordinates, error) {
	out := make([]domain.Coordinates, len(inputs))
	var pending []string

	for i, in := range inputs {
		switch {
		case in.HasCoords:
			if math.IsNaN(in.Lon) || math.IsNaN(in.Lat) || math.IsInf(in.Lon, 0) || math.IsInf(in.Lat, 0) {
				return nil, fmt.Errorf("plan tour: stop %d has non-finite coordinates", i)
			}
			out[i] = domain.Coordinates{Lon: in.Lon, Lat: in.Lat}
		case domain.NormalizeAddress(in.Address) != "":
			pending = append(pending, in.Address)
		default:
			return nil, fmt.Errorf("%w (stop %d)", ErrMissingLocation, i)
		}
	}

	if len(pending) == 0 {
		return out, nil
	}
	if p.cfg.Geocoder == nil {
		return nil, fmt.Errorf("%w: no geocoder configured", ErrGeocode)
	}

	found, err := p.cfg.Geocoder.GeocodeMany(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocode, err)
	}

	for i, in := range inputs {
		if in.HasCoords {
			continue
		}
		key := domain.NormalizeAddress(in.Address)
		c, ok := found[key]
		if !ok {
			return nil, fmt.Errorf("%w: no coordinates for %q", ErrGeocode, key)
		}
		out[i] = c
	}

	return out, nil
}
