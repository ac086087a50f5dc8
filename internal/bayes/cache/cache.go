package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

// InMemory keeps compiled networks keyed by the hash of their source.
// Once max entries are held, new networks are still returned but no
// longer stored.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]*bayes.Network
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max < 0 {
		max = 0
	}
	return &InMemory{
		max:   max,
		items: make(map[string]*bayes.Network, max),
	}
}

// GetOrCompute returns the network cached for source or runs fn once,
// however many callers ask for the same source concurrently. Errors and
// panics from fn are returned to every waiter and never cached.
func (c *InMemory) GetOrCompute(source string, fn func() (*bayes.Network, error)) (*bayes.Network, error) {
	key := Hash(source)
	if n, ok := c.get(key); ok {
		return n, nil
	}

	v, err, _ := c.group.Do(key, func() (result any, err error) {
		if n, ok := c.get(key); ok {
			return n, nil
		}

		defer func() {
			if r := recover(); r != nil {
				result, err = nil, fmt.Errorf("network compilation panicked: %v", r)
			}
		}()

		n, ferr := fn()
		if ferr != nil {
			return nil, ferr
		}
		c.put(key, n)
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*bayes.Network), nil
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *InMemory) get(key string) (*bayes.Network, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.items[key]
	return n, ok
}

func (c *InMemory) put(key string, n *bayes.Network) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) < c.max {
		c.items[key] = n
	}
}

// Hash is the hex SHA-256 of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
