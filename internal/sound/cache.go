package sound

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache keeps decoded buffers in memory keyed by file path.
type Cache struct {
	entries *cache.Cache
}

// NewCache returns a cache whose entries expire after ttl. A zero ttl keeps
// entries until Forget.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{entries: cache.New(ttl, ttl*2)}
}

// Load returns the decoded buffer for path, decoding it on first use.
// Buffers that fail to decode are not cached.
func (c *Cache) Load(path string) (Buffer, error) {
	if v, ok := c.entries.Get(path); ok {
		if buf, ok := v.(Buffer); ok {
			return buf, nil
		}
	}

	buf, err := LoadFile(path)
	if err != nil {
		return Buffer{}, err
	}
	if !buf.IsValid() || buf.SampleCount == 0 {
		return Buffer{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	c.entries.Set(path, buf, cache.DefaultExpiration)
	return buf, nil
}

// Forget drops path from the cache.
func (c *Cache) Forget(path string) {
	c.entries.Delete(path)
}

// Len returns the number of cached buffers.
func (c *Cache) Len() int {
	return c.entries.ItemCount()
}
