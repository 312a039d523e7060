package connectivity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/zeusync/navgraph/internal/core/observability/log"
	"github.com/zeusync/navgraph/internal/core/waypoint"
	"github.com/zeusync/navgraph/pkg/concurrent"
)

// maxKeptErrors bounds how many oracle errors a Report keeps verbatim.
const maxKeptErrors = 64

// ProgressFunc is called after each source waypoint has been tested against
// its candidates. Returning false aborts the build.
type ProgressFunc func(done, total int) bool

// Options tunes a Builder.
type Options struct {
	// MaxEdgeLength > 0 only tests pairs at most this far apart.
	MaxEdgeLength float64
	// Workers > 1 tests source waypoints concurrently. The oracle must then be
	// safe for concurrent use.
	Workers int
	// Symmetric asks the oracle once per unordered pair and links both ways.
	Symmetric bool
	// KeepExisting leaves current edges in place instead of clearing the mesh
	// before BuildAll.
	KeepExisting bool
}

// Report summarizes a build or relink.
type Report struct {
	Sources     int
	PairsTested int
	EdgesAdded  int
	Failures    int
	// OracleErr joins (up to a limit) the errors the oracle reported.
	OracleErr error
	Duration  time.Duration
}

type Option func(*Builder)

func WithOptions(opts Options) Option {
	return func(b *Builder) { b.opts = opts }
}

func WithMaxEdgeLength(length float64) Option {
	return func(b *Builder) { b.opts.MaxEdgeLength = length }
}

func WithWorkers(n int) Option {
	return func(b *Builder) { b.opts.Workers = n }
}

func WithSymmetric(symmetric bool) Option {
	return func(b *Builder) { b.opts.Symmetric = symmetric }
}

func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

func WithLogger(l log.Log) Option {
	return func(b *Builder) { b.logger = l }
}

// Builder links waypoints whose connecting segment the oracle accepts.
type Builder struct {
	oracle   Oracle
	opts     Options
	progress ProgressFunc
	logger   log.Log
}

func New(oracle Oracle, opts ...Option) *Builder {
	b := &Builder{oracle: oracle}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = log.OrNop(b.logger).With(log.String("component", "connectivity"))
	return b
}

func (b *Builder) Options() Options { return b.opts }

func (b *Builder) Oracle() Oracle { return b.oracle }

type link struct {
	from, to waypoint.ID
}

type sourceResult struct {
	links    []link
	tested   int
	failures []error
}

// BuildAll tests every pair of plain waypoints and adds an edge for each
// traversable direction. Oracle failures leave the pair unlinked and are
// reported, never returned; the only errors are cancellation and ErrAborted.
// Edges added before an abort stay in the mesh.
func (b *Builder) BuildAll(ctx context.Context, store *waypoint.Store) (Report, error) {
	start := time.Now()
	sources := store.IDs(waypoint.KindWaypoint)
	if !b.opts.KeepExisting {
		for _, id := range sources {
			store.NavMesh().RemoveAllEdgesFrom(id)
		}
	}

	report := Report{Sources: len(sources)}
	var (
		mu   sync.Mutex
		done int
	)

	err := concurrent.ForEach(ctx, sources, b.opts.Workers, func(ctx context.Context, id waypoint.ID) error {
		from, _ := store.Get(id)
		res, err := b.testSource(ctx, store, from, func(other waypoint.ID) bool {
			return !b.opts.Symmetric || other > id
		})
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		b.apply(store, res, &report)
		done++
		if b.progress != nil && !b.progress(done, len(sources)) {
			return ErrAborted
		}
		return nil
	})

	report.Duration = time.Since(start)
	if err != nil {
		b.logger.Warn("navmesh build stopped",
			log.Int("sources_done", done),
			log.Int("sources", len(sources)),
			log.Error(err))
		return report, err
	}

	b.logger.Info("navmesh built",
		log.Int("waypoints", len(sources)),
		log.Int("pairs_tested", report.PairsTested),
		log.Int("edges_added", report.EdgesAdded),
		log.Int("oracle_failures", report.Failures),
		log.Duration("took", report.Duration))
	return report, nil
}

// RelinkOne drops every edge touching id and tests it again against every
// other plain waypoint, in both directions.
func (b *Builder) RelinkOne(ctx context.Context, store *waypoint.Store, id waypoint.ID) (Report, error) {
	start := time.Now()
	from, ok := store.Get(id)
	if !ok {
		return Report{}, fmt.Errorf("relink %d: %w", id, ErrUnknownWaypoint)
	}
	if from.Kind != waypoint.KindWaypoint {
		return Report{}, fmt.Errorf("relink %d (%s): %w", id, from.Kind, ErrNotLinkable)
	}

	store.NavMesh().RemoveNode(id)
	report := Report{Sources: 1}

	res, err := b.testSource(ctx, store, from, func(waypoint.ID) bool { return true })
	if err != nil {
		return report, err
	}
	b.apply(store, res, &report)

	if !b.opts.Symmetric {
		for _, other := range b.candidates(store, from) {
			to, _ := store.Get(other)
			ok, err := b.test(ctx, to, from)
			if cerr := ctx.Err(); cerr != nil {
				return report, cerr
			}
			report.PairsTested++
			if err != nil {
				b.fail(&report, to, from, err)
				continue
			}
			if ok && store.Link(other, id) {
				report.EdgesAdded++
			}
		}
	}

	report.Duration = time.Since(start)
	b.logger.Debug("waypoint relinked",
		log.Uint32("id", id),
		log.Int("edges_added", report.EdgesAdded),
		log.Int("oracle_failures", report.Failures))
	return report, nil
}

func (b *Builder) candidates(store *waypoint.Store, from waypoint.Waypoint) []waypoint.ID {
	var ids []waypoint.ID
	if b.opts.MaxEdgeLength > 0 {
		ids = store.FindWithinRadius(from.Position, b.opts.MaxEdgeLength)
	} else {
		ids = store.IDs(waypoint.KindWaypoint)
	}
	out := ids[:0]
	for _, id := range ids {
		if id == from.ID {
			continue
		}
		if wp, ok := store.Get(id); ok && wp.Kind == waypoint.KindWaypoint {
			out = append(out, id)
		}
	}
	return out
}

// testSource asks the oracle about from→to for every accepted candidate. In
// symmetric mode a positive answer links both directions.
func (b *Builder) testSource(ctx context.Context, store *waypoint.Store, from waypoint.Waypoint, accept func(waypoint.ID) bool) (sourceResult, error) {
	var res sourceResult
	for _, other := range b.candidates(store, from) {
		if !accept(other) {
			continue
		}
		to, _ := store.Get(other)
		ok, err := b.test(ctx, from, to)
		if cerr := ctx.Err(); cerr != nil {
			return res, cerr
		}
		res.tested++
		if err != nil {
			res.failures = append(res.failures, pairError(from, to, err))
			continue
		}
		if !ok {
			continue
		}
		res.links = append(res.links, link{from.ID, to.ID})
		if b.opts.Symmetric {
			res.links = append(res.links, link{to.ID, from.ID})
		}
	}
	return res, nil
}

// test calls the oracle, turning a panic into an error.
func (b *Builder) test(ctx context.Context, from, to waypoint.Waypoint) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%w: panic: %v", ErrOracle, r)
		}
	}()
	return b.oracle.CanTraverse(ctx, from.Position, to.Position)
}

func (b *Builder) apply(store *waypoint.Store, res sourceResult, report *Report) {
	report.PairsTested += res.tested
	for _, l := range res.links {
		if store.Link(l.from, l.to) {
			report.EdgesAdded++
		}
	}
	for _, err := range res.failures {
		b.record(report, err)
	}
}

func (b *Builder) fail(report *Report, from, to waypoint.Waypoint, err error) {
	b.record(report, pairError(from, to, err))
}

func (b *Builder) record(report *Report, err error) {
	report.Failures++
	if report.Failures <= maxKeptErrors {
		report.OracleErr = multierr.Append(report.OracleErr, err)
	}
	var pe *PairError
	if errors.As(err, &pe) {
		b.logger.Warn("traversability test failed, pair left unlinked",
			log.Uint32("from", pe.From),
			log.Uint32("to", pe.To),
			log.Error(pe.Err))
	}
}

// PairError is an oracle failure for one directed pair.
type PairError struct {
	From, To waypoint.ID
	Err      error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("traverse %d -> %d: %v", e.From, e.To, e.Err)
}

func (e *PairError) Unwrap() error { return e.Err }

func pairError(from, to waypoint.Waypoint, err error) error {
	return &PairError{From: from.ID, To: to.ID, Err: err}
}
