package utmcsensors

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/utmc-sensors/cache"
	"github.com/theoremus-urban-solutions/utmc-sensors/config"
	"github.com/theoremus-urban-solutions/utmc-sensors/flow"
	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
	"github.com/theoremus-urban-solutions/utmc-sensors/osmgraph"
	"github.com/theoremus-urban-solutions/utmc-sensors/snapshot"
	"github.com/theoremus-urban-solutions/utmc-sensors/source"
)

// Service runs the lookup and snapshot pipelines against the configured
// sources, reusing cached results while they are fresh.
type Service struct {
	bbox    source.BBox
	feedURL string
	client  *source.Client
	parser  *flow.Parser
	builder *snapshot.Builder

	lookupCache   *cache.File
	snapshotCache *cache.File

	logger *slog.Logger
	now    func() time.Time

	// serialises rebuilds so concurrent requests share one fetch
	mu sync.Mutex
}

// NewService wires a service from cfg.
func NewService(cfg config.AppConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bbox, err := source.NewBBox(cfg.Overpass.BBox)
	if err != nil {
		return nil, fmt.Errorf("overpass: %w", err)
	}
	loc, err := cfg.Flow.Location()
	if err != nil {
		return nil, fmt.Errorf("flow time zone: %w", err)
	}
	builder := snapshot.NewBuilder().WithLogger(logger)
	builder.MaxAge = cfg.Flow.MaxAge()

	return &Service{
		bbox:          bbox,
		feedURL:       cfg.Flow.FeedURL,
		client:        source.NewClient(cfg.Overpass.BaseURL, cfg.Overpass.Timeout()),
		parser:        flow.NewParser(loc),
		builder:       builder,
		lookupCache:   cache.New(cfg.Cache.Dir, cache.LookupFile, cfg.Cache.LookupTTL()),
		snapshotCache: cache.New(cfg.Cache.Dir, cache.SnapshotFile, cfg.Cache.SnapshotTTL()),
		logger:        logger,
		now:           time.Now,
	}, nil
}

// FindSensorDirection returns the channel lookup for the configured area.
func (s *Service) FindSensorDirection(ctx context.Context) (lanes.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.cachedLookup(); ok {
		return l, nil
	}
	ways, err := s.client.FetchSensorWays(ctx, s.bbox)
	if err != nil {
		return nil, fmt.Errorf("sensor ways: %w", err)
	}
	return s.resolve(ways), nil
}

// AllCurrentSensorData returns the current state of every working detector,
// sorted by channel id.
func (s *Service) AllCurrentSensorData(ctx context.Context) ([]snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snaps, ok := s.cachedSnapshot(); ok {
		return snaps, nil
	}

	lookup, haveLookup := s.cachedLookup()

	var (
		feed  *flow.Feed
		graph *source.Graph
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := s.client.FetchFlow(gctx, s.feedURL, s.parser)
		if err != nil {
			return fmt.Errorf("flow feed: %w", err)
		}
		feed = f
		return nil
	})
	g.Go(func() error {
		if haveLookup {
			nodes, err := s.client.FetchSensorNodes(gctx, s.bbox)
			if err != nil {
				return fmt.Errorf("sensor nodes: %w", err)
			}
			graph = &source.Graph{Sensors: nodes}
			return nil
		}
		gr, err := s.client.FetchGraph(gctx, s.bbox)
		if err != nil {
			return err
		}
		graph = gr
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !haveLookup {
		lookup = s.resolve(graph.Ways)
	}
	if feed.Malformed > 0 {
		s.logger.Warn("skipped malformed flow records", "count", feed.Malformed)
	}

	loc := graph.Sensors.SensorLocator()
	s.logger.Debug("fetched live data", "readings", len(feed.Readings), "tagged_sensor_nodes", loc.Len())

	res, err := s.builder.Build(feed.Readings, lookup, loc, s.now())
	if err != nil {
		return nil, err
	}
	s.storeSnapshot(res.Snapshots)
	return res.Snapshots, nil
}

// resolve builds the lookup from a ways graph and caches it.
func (s *Service) resolve(ways *osmgraph.Graph) lanes.Lookup {
	s.logger.Debug("parsed sensor ways", "ways", ways.WayCount(), "nodes", ways.NodeCount())
	r := lanes.NewResolver().WithLogger(s.logger)
	for _, w := range ways.SensorWays() {
		r.Add(w)
	}
	res := r.Result()
	d := res.Diagnostics
	resolved, approximated := res.Lookup.CountByResolution()
	s.logger.Info("resolved sensor channels",
		"ways", d.WaysSeen,
		"resolved", resolved,
		"approximated", approximated,
		"unresolved_ways", d.UnresolvedWays,
		"empty_sensor_refs", d.EmptySensorRefs,
		"mismatches", len(d.Mismatches))

	s.storeLookup(res.Lookup)
	return res.Lookup
}
