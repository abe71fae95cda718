package ephemeral

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"racelink/internal/config"
	"racelink/internal/logging"
	"racelink/internal/model"
	"racelink/internal/storage"
	"racelink/internal/util"
)

const policeRedisKey = "police"

// PoliceStore owns client-local police sightings. Liveness is always a pure
// function of now - CreatedAt; the periodic sweep and the redis TTL are
// optimizations, never the source of truth. Markers are mirrored to redis
// with a matching TTL so a suspended or restarted client reconciles to only
// the still-live set.
type PoliceStore struct {
	markers *storage.MemoryStorage[string, model.PoliceMarker]
	rdb     *redis.Client
	ttl     time.Duration
	log     logging.Logger
	now     func() time.Time
}

// NewPoliceStore creates the store. rdb may be nil, in which case markers
// live only in memory.
func NewPoliceStore(rdb *redis.Client, log logging.Logger) *PoliceStore {
	return &PoliceStore{
		markers: storage.NewMemoryStorage[string, model.PoliceMarker](),
		rdb:     rdb,
		ttl:     config.PoliceMarkerTTL,
		log:     log,
		now:     time.Now,
	}
}

// Mark records a police sighting at the given coordinate
func (s *PoliceStore) Mark(ctx context.Context, lat, lng float64) model.PoliceMarker {
	marker := model.PoliceMarker{
		ID:        util.ShortUUID(),
		Latitude:  lat,
		Longitude: lng,
		CreatedAt: s.now(),
	}
	s.markers.Set(marker.ID, marker)

	if s.rdb != nil {
		data, err := json.Marshal(marker)
		if err == nil {
			key := fmt.Sprintf("%s:%s", policeRedisKey, marker.ID)
			if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
				s.log.Log(logging.LevelWarn, "ephemeral", "police marker not mirrored to redis",
					map[string]any{"id": marker.ID, "error": err.Error()})
			}
		}
	}
	return marker
}

// Active returns the markers still inside their TTL. Expired entries found
// along the way are pruned.
func (s *PoliceStore) Active() []model.PoliceMarker {
	now := s.now()
	var live []model.PoliceMarker
	var dead []string

	s.markers.ForEach(func(id string, m model.PoliceMarker) bool {
		if m.LiveAt(now, s.ttl) {
			live = append(live, m)
		} else {
			dead = append(dead, id)
		}
		return true
	})
	for _, id := range dead {
		s.markers.Delete(id)
	}
	return live
}

// Sweep prunes expired markers; the workers package runs it periodically
func (s *PoliceStore) Sweep() int {
	now := s.now()
	var dead []string
	s.markers.ForEach(func(id string, m model.PoliceMarker) bool {
		if !m.LiveAt(now, s.ttl) {
			dead = append(dead, id)
		}
		return true
	})
	for _, id := range dead {
		s.markers.Delete(id)
	}
	return len(dead)
}

// Restore reloads still-live markers from redis after a restart or resume.
// Redis expires keys server-side, but CreatedAt is re-checked anyway.
func (s *PoliceStore) Restore(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	var cursor uint64
	var keys []string
	pattern := fmt.Sprintf("%s:*", policeRedisKey)
	for {
		batch, nextCursor, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan police markers: %w", err)
		}
		keys = append(keys, batch...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("load police markers: %w", err)
	}

	now := s.now()
	restored := 0
	for _, v := range values {
		str, ok := v.(string)
		if !ok || str == "" {
			continue
		}
		var marker model.PoliceMarker
		if err := json.Unmarshal([]byte(str), &marker); err != nil {
			continue
		}
		if marker.LiveAt(now, s.ttl) {
			s.markers.Set(marker.ID, marker)
			restored++
		}
	}
	s.log.Log(logging.LevelInfo, "ephemeral", "police markers restored",
		map[string]any{"count": restored})
	return nil
}
