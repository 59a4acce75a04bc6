// Package memory provides an in-memory persist.Port for tests and development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/obralink/cost-engine/persist"
)

// Port keeps values in a map. Safe for concurrent use.
type Port struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ persist.Port = (*Port)(nil)

func New() *Port {
	return &Port{values: make(map[string][]byte)}
}

func (p *Port) Load(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (p *Port) Save(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	p.values[key] = stored
	return nil
}

func (p *Port) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.values, key)
	return nil
}

func (p *Port) List(_ context.Context, prefix string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var keys []string
	for k := range p.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len reports the number of stored keys.
func (p *Port) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}
