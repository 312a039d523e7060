package navigation

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/zeusync/navgraph/internal/config"
	"github.com/zeusync/navgraph/internal/core/connectivity"
	"github.com/zeusync/navgraph/internal/core/events/bus"
	"github.com/zeusync/navgraph/internal/core/geom"
	"github.com/zeusync/navgraph/internal/core/hierarchy"
	"github.com/zeusync/navgraph/internal/core/observability/log"
	"github.com/zeusync/navgraph/internal/core/pathfind"
	"github.com/zeusync/navgraph/internal/core/planner"
	"github.com/zeusync/navgraph/internal/core/waypoint"
)

type ID = waypoint.ID

// Service is the navigation graph of one scene: waypoints, their NavMesh,
// the collection hierarchy and the planners over them.
//
// Any number of searches may run at the same time only while nothing
// mutates the graph. The owner serializes mutations against searches; a
// Service never locks.
type Service struct {
	id     uuid.UUID
	cfg    config.Config
	logger log.Log
	bus    bus.EventBus

	store   *waypoint.Store
	graph   *hierarchy.Graph
	builder *connectivity.Builder
	flat    *planner.Flat
	hier    *planner.Hierarchical
}

// New wires a Service from cfg. A nil oracle links every pair within
// cfg.Builder.MaxEdgeLength; nil logger and bus get defaults.
func New(cfg config.Config, oracle connectivity.Oracle, logger log.Log, eventBus bus.EventBus) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		oracle = connectivity.LineOfSight{MaxLength: cfg.Builder.MaxEdgeLength}
	}
	if eventBus == nil {
		eventBus = bus.New()
	}

	id := uuid.New()
	logger = log.OrNop(logger).With(log.String("navgraph", id.String()))

	store := waypoint.NewStore(
		waypoint.WithBus(eventBus),
		waypoint.WithLogger(logger),
		waypoint.WithCellSize(cfg.Store.CellSize),
	)
	graph := hierarchy.New(store, eventBus, hierarchy.WithLogger(logger))
	builder := connectivity.New(oracle,
		connectivity.WithLogger(logger),
		connectivity.WithOptions(connectivity.Options{
			MaxEdgeLength: cfg.Builder.MaxEdgeLength,
			Workers:       cfg.Builder.Workers,
			Symmetric:     cfg.Builder.Symmetric,
			KeepExisting:  cfg.Builder.KeepExisting,
		}),
	)
	search := pathfind.WithMaxExpansions(cfg.Search.MaxExpansions)

	s := &Service{
		id:      id,
		cfg:     cfg,
		logger:  logger,
		bus:     eventBus,
		store:   store,
		graph:   graph,
		builder: builder,
		flat:    planner.NewFlat(store, search),
		hier: planner.NewHierarchical(graph,
			planner.WithLogger(logger),
			planner.WithSearchOptions(search)),
	}
	logger.Info("navigation service created",
		log.Float64("cell_size", cfg.Store.CellSize),
		log.Int("build_workers", cfg.Builder.Workers),
		log.Int("max_expansions", cfg.Search.MaxExpansions))
	return s, nil
}

func (s *Service) ID() uuid.UUID               { return s.id }
func (s *Service) Config() config.Config       { return s.cfg }
func (s *Service) Bus() bus.EventBus           { return s.bus }
func (s *Service) Store() *waypoint.Store      { return s.store }
func (s *Service) Hierarchy() *hierarchy.Graph { return s.graph }

// AddWaypoint inserts a plain waypoint, reusing one within the configured
// merge radius when there is one.
func (s *Service) AddWaypoint(pos geom.Vec3) ID {
	if s.cfg.Store.MergeRadius > 0 {
		return s.store.InsertNoDuplicate(pos, s.cfg.Store.MergeRadius)
	}
	return s.store.Insert(pos)
}

// RemoveWaypoint removes a waypoint, its edges and its hierarchy membership.
func (s *Service) RemoveWaypoint(id ID) bool {
	if s.graph.IsCollection(id) {
		return s.graph.RemoveCollection(id)
	}
	return s.store.Remove(id)
}

// MoveWaypoint moves id and, with builder.relink_on_move, re-tests its edges.
func (s *Service) MoveWaypoint(ctx context.Context, id ID, pos geom.Vec3) (bool, error) {
	if !s.store.Move(id, pos) {
		return false, nil
	}
	if !s.cfg.Builder.RelinkOnMove || s.graph.IsCollection(id) {
		return true, nil
	}
	if _, err := s.builder.RelinkOne(ctx, s.store, id); err != nil {
		return true, fmt.Errorf("relink waypoint %d: %w", id, err)
	}
	return true, nil
}

// CreateCollection groups children into a new collection at level.
func (s *Service) CreateCollection(level int, name string, children ...ID) (ID, bool) {
	return s.graph.CreateCollection(level, name, children...)
}

// Build recomputes the NavMesh. progress may be nil.
func (s *Service) Build(ctx context.Context, progress connectivity.ProgressFunc) (connectivity.Report, error) {
	b := s.builder
	if progress != nil {
		opts := []connectivity.Option{
			connectivity.WithOptions(b.Options()),
			connectivity.WithProgress(progress),
			connectivity.WithLogger(s.logger),
		}
		b = connectivity.New(b.Oracle(), opts...)
	}
	return b.BuildAll(ctx, s.store)
}

// FindPath searches the NavMesh between two plain waypoints.
func (s *Service) FindPath(start, goal ID) (pathfind.Result, []ID) {
	return s.flat.FindPath(start, goal)
}

// FindPathMulti searches from any start to any goal.
func (s *Service) FindPathMulti(starts, goals []ID) (pathfind.Result, []ID) {
	return s.flat.FindPathMulti(starts, goals)
}

// FindHierarchicalPath plans through the collection hierarchy.
func (s *Service) FindHierarchicalPath(start, goal ID) (pathfind.Result, []ID) {
	return s.hier.FindPath(start, goal)
}

// Load replaces every waypoint with the contents of a waypoint file. Edges
// and collections are dropped; call Build afterwards. On error the graph is
// left untouched.
func (s *Service) Load(path string) ([]ID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file waypoint.File
	if _, err := file.ReadFrom(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	s.store.Clear()
	ids := s.store.Restore(&file)
	s.logger.Info("waypoints loaded", log.String("path", path), log.Int("count", len(ids)))
	return ids, nil
}

// Save writes every plain waypoint to path.
func (s *Service) Save(path string) error {
	if err := s.store.WriteFile(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	s.logger.Info("waypoints saved", log.String("path", path), log.Int("count", len(s.store.IDs(waypoint.KindWaypoint))))
	return nil
}

// Close detaches the hierarchy from the bus.
func (s *Service) Close() {
	s.graph.Close()
}
