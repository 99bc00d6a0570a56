package utmcsensors

import (
	"time"

	"github.com/theoremus-urban-solutions/utmc-sensors/formatter"
	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
	"github.com/theoremus-urban-solutions/utmc-sensors/snapshot"
)

// A cache file that fails to read or decode is treated as a miss and
// rebuilt; the failure is only logged.

func (s *Service) cachedLookup() (lanes.Lookup, bool) {
	data, ok, err := s.lookupCache.Load(s.now())
	if err != nil {
		s.logger.Warn("lookup cache unreadable", "path", s.lookupCache.Path, "err", err)
	}
	if !ok {
		return nil, false
	}
	l, err := formatter.ParseLookupJSON(data)
	if err != nil {
		s.logger.Warn("lookup cache corrupt", "path", s.lookupCache.Path, "err", err)
		return nil, false
	}
	s.logger.Debug("using cached lookup", "path", s.lookupCache.Path, "channels", len(l))
	return l, true
}

func (s *Service) storeLookup(l lanes.Lookup) {
	if s.lookupCache.TTL <= 0 {
		return
	}
	data, err := formatter.NewResponseBuilder().BuildLookupJSON(l)
	if err == nil {
		err = s.lookupCache.Save(data)
	}
	if err != nil {
		s.logger.Warn("failed to cache lookup", "path", s.lookupCache.Path, "err", err)
	}
}

func (s *Service) cachedSnapshot() ([]snapshot.Snapshot, bool) {
	data, ok, err := s.snapshotCache.Load(s.now())
	if err != nil {
		s.logger.Warn("snapshot cache unreadable", "path", s.snapshotCache.Path, "err", err)
	}
	if !ok {
		return nil, false
	}
	snaps, err := formatter.ParseSnapshotJSON(data)
	if err != nil {
		s.logger.Warn("snapshot cache corrupt", "path", s.snapshotCache.Path, "err", err)
		return nil, false
	}
	s.logger.Debug("using cached snapshot", "path", s.snapshotCache.Path, "sensors", len(snaps))
	return snaps, true
}

func (s *Service) storeSnapshot(snaps []snapshot.Snapshot) {
	if s.snapshotCache.TTL <= 0 {
		return
	}
	data, err := formatter.NewResponseBuilder().BuildSnapshotJSON(snaps)
	if err == nil {
		err = s.snapshotCache.Save(data)
	}
	if err != nil {
		s.logger.Warn("failed to cache snapshot", "path", s.snapshotCache.Path, "err", err)
	}
}

// CacheAges reports how old each cache file is. A missing file reports -1.
func (s *Service) CacheAges() (lookup, snap time.Duration) {
	age := func(d time.Duration, err error) time.Duration {
		if err != nil {
			return -1
		}
		return d
	}
	now := s.now()
	return age(s.lookupCache.Age(now)), age(s.snapshotCache.Age(now))
}
