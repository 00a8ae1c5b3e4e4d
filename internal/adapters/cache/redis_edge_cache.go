package cache

import (
	"context"
	"deadline-route-service/internal/platform/obs"
	"deadline-route-service/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisEdgeCache keeps one hash per origin ("edge:<origin>") whose fields
// are destinations and whose values are "meters,seconds".
type RedisEdgeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEdgeCache stores edges with the given ttl; 0 keeps them forever.
func NewRedisEdgeCache(client *redis.Client, ttl time.Duration) *RedisEdgeCache {
	return &RedisEdgeCache{client: client, ttl: ttl}
}

func edgeKey(origin string) string { return "edge:" + origin }

func (r *RedisEdgeCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.Edge, err error) {
	defer obs.Time(ctx, "edge.redis.GetMany")(&err)

	if r.client == nil {
		return nil, errors.New("redis edge cache: client is nil")
	}
	if origin == "" {
		return nil, errors.New("get redis edge cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.Edge{}, nil
	}

	vals, err := r.client.HMGet(ctx, edgeKey(origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get redis edge cache: hmget: %w", err)
	}

	out := make(map[string]ports.Edge, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		e, err := decodeEdge(s)
		if err != nil {
			return nil, fmt.Errorf("get redis edge cache dest=%q: %w", uniq[i], err)
		}
		out[uniq[i]] = e
	}

	return out, nil
}

func (r *RedisEdgeCache) PutMany(
	ctx context.Context,
	origin string,
	edges map[string]ports.Edge,
) (err error) {
	defer obs.Time(ctx, "edge.redis.PutMany")(&err)

	if r.client == nil {
		return errors.New("redis edge cache: client is nil")
	}
	if origin == "" {
		return errors.New("insert redis edge cache: origin must not be empty")
	}
	if len(edges) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(edges))
	for dest, e := range edges {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert redis edge cache: empty destination key")
		}
		fields[dest] = encodeEdge(e)
	}

	key := edgeKey(origin)
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		if r.ttl > 0 {
			p.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert redis edge cache: %w", err)
	}

	return nil
}

func encodeEdge(e ports.Edge) string {
	return strconv.FormatFloat(e.DistanceMeters, 'g', -1, 64) + "," +
		strconv.FormatFloat(e.DurationSeconds, 'g', -1, 64)
}

func decodeEdge(s string) (ports.Edge, error) {
	meters, seconds, ok := strings.Cut(s, ",")
	if !ok {
		return ports.Edge{}, fmt.Errorf("malformed edge %q", s)
	}
	m, err := strconv.ParseFloat(meters, 64)
	if err != nil {
		return ports.Edge{}, fmt.Errorf("parse meters: %w", err)
	}
	sec, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return ports.Edge{}, fmt.Errorf("parse seconds: %w", err)
	}
	return ports.Edge{DistanceMeters: m, DurationSeconds: sec}, nil
}
