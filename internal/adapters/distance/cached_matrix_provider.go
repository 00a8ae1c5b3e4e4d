package distance

import (
	"context"
	"deadline-route-service/internal/domain"
	"deadline-route-service/internal/platform/obs"
	"deadline-route-service/internal/ports"
	"errors"
	"fmt"
	"log"
)

// CachedMatrixProvider answers matrix lookups from an EdgeCache and falls
// back to one batched inner lookup when any ordered pair is missing.
// Only known (finite) edges are written back.
type CachedMatrixProvider struct {
	inner     ports.MatrixProvider
	cache     ports.EdgeCache
	namespace string
}

// NewCachedMatrixProvider keys cache entries under namespace so that
// providers with different cost models never share edges.
func NewCachedMatrixProvider(inner ports.MatrixProvider, cache ports.EdgeCache, namespace string) (*CachedMatrixProvider, error) {
	if inner == nil {
		return nil, errors.New("cached matrix provider: inner provider is nil")
	}
	if cache == nil {
		return nil, errors.New("cached matrix provider: cache is nil")
	}
	return &CachedMatrixProvider{inner: inner, cache: cache, namespace: namespace}, nil
}

func (c *CachedMatrixProvider) key(p domain.Point) string {
	return fmt.Sprintf("%s:%.6f,%.6f", c.namespace, p.X(), p.Y())
}

func (c *CachedMatrixProvider) Lookup(ctx context.Context, points []domain.Point) (_ ports.Tables, err error) {
	defer obs.Time(ctx, "cache.Lookup")(&err)

	n := len(points)
	keys := make([]string, n)
	for i, p := range points {
		keys[i] = c.key(p)
	}

	t := ports.NewTables(n)
	complete := true
	for i := 0; i < n && complete; i++ {
		dests := make([]string, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				dests = append(dests, keys[j])
			}
		}
		if len(dests) == 0 {
			continue
		}

		hits, err := c.cache.GetMany(ctx, keys[i], dests)
		if err != nil {
			return ports.Tables{}, fmt.Errorf("get edge cache: %w", err)
		}

		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			e, ok := hits[keys[j]]
			if !ok {
				complete = false
				break
			}
			t.Distance[i][j] = e.DistanceMeters
			t.Time[i][j] = e.DurationSeconds
		}
	}

	if complete {
		return t, nil
	}

	fresh, err := c.inner.Lookup(ctx, points)
	if err != nil {
		return ports.Tables{}, err
	}

	for i := 0; i < n && i < len(fresh.Distance) && i < len(fresh.Time); i++ {
		edges := make(map[string]ports.Edge, n-1)
		for j := 0; j < n && j < len(fresh.Distance[i]) && j < len(fresh.Time[i]); j++ {
			d, s := fresh.Distance[i][j], fresh.Time[i][j]
			if j == i || domain.IsUnknown(d) || domain.IsUnknown(s) {
				continue
			}
			edges[keys[j]] = ports.Edge{DistanceMeters: d, DurationSeconds: s}
		}
		if len(edges) == 0 {
			continue
		}
		if err := c.cache.PutMany(ctx, keys[i], edges); err != nil {
			log.Printf("edge cache write failed origin=%s: %v", keys[i], err)
		}
	}

	return fresh, nil
}
