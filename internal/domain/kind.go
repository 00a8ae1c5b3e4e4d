package domain

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind tags how travel costs between points of that kind are obtained.
type Kind string

const (
	// KindAir points are connected by closed-form great-circle math.
	KindAir Kind = "air"
	// KindGround points need an external routing service.
	KindGround Kind = "ground"
)

// KindSpec is the only capability the core needs to know about a kind.
type KindSpec struct {
	Name             Kind
	RequiresExternal bool
}

var (
	kindsMu sync.RWMutex
	kinds   = map[Kind]KindSpec{
		KindAir:    {Name: KindAir, RequiresExternal: false},
		KindGround: {Name: KindGround, RequiresExternal: true},
	}
)

// RegisterKind adds or replaces a kind in the registry.
func RegisterKind(spec KindSpec) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	kinds[spec.Name] = spec
}

// LookupKind returns the registered spec for k.
func LookupKind(k Kind) (KindSpec, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	spec, ok := kinds[k]
	return spec, ok
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := LookupKind(k); !ok {
		return "", fmt.Errorf("parse kind: unknown kind %q", s)
	}
	return k, nil
}

// RegisteredKinds returns kind names in sorted order.
func RegisteredKinds() []Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// hasReservedPrefix reports whether id starts with any registered kind name.
// Such ids would collide with generated names and are replaced.
func hasReservedPrefix(id string) bool {
	lower := strings.ToLower(id)
	for _, k := range RegisteredKinds() {
		if strings.HasPrefix(lower, string(k)) {
			return true
		}
	}
	return false
}

// Display name used for generated ids, e.g. "Air", "Ground".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Namer hands out sequential ids per kind ("Air1", "Air2", "Ground1").
// The zero value is ready to use and safe for concurrent use.
type Namer struct {
	mu     sync.Mutex
	counts map[Kind]int
}

func (n *Namer) Next(k Kind) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.counts == nil {
		n.counts = make(map[Kind]int)
	}
	n.counts[k]++
	return fmt.Sprintf("%s%d", k.Title(), n.counts[k])
}

// DefaultNamer is used by NewPoint.
var DefaultNamer = &Namer{}
