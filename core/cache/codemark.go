package cache

import (
	"encoding/json"
	"strings"

	"github.com/FocuswithJustin/codemark/core/ir"
	"github.com/FocuswithJustin/codemark/core/registry"
)

// jsonMarshalFunc can be overridden in tests to simulate marshal errors.
var jsonMarshalFunc = json.Marshal

// ConfigKey returns the BLAKE3 hash of the JSON form of a configuration
// list. Equal lists give equal keys.
func ConfigKey(items []registry.ConfigItem) (string, error) {
	data, err := jsonMarshalFunc(items)
	if err != nil {
		return "", err
	}
	return ir.Blake3Bytes(data), nil
}

// RegistryCache memoizes registries by the hash of their configuration.
type RegistryCache struct {
	cache Cache[string, *registry.Registry]
}

// NewRegistryCache creates a registry cache.
func NewRegistryCache(config Config) *RegistryCache {
	return &RegistryCache{cache: NewLRUCache[string, *registry.Registry](config)}
}

// NewDefaultRegistryCache creates a registry cache for a handful of
// configurations.
func NewDefaultRegistryCache() *RegistryCache {
	config := DefaultConfig()
	config.MaxSize = 16
	return NewRegistryCache(config)
}

// Get returns the registry for items, building and caching it on a miss.
// Configuration errors are returned and not cached.
func (c *RegistryCache) Get(items []registry.ConfigItem) (*registry.Registry, error) {
	key, err := ConfigKey(items)
	if err != nil {
		return nil, err
	}
	if r, ok := c.cache.Get(key); ok {
		return r, nil
	}
	r, err := registry.Build(items)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, r)
	return r, nil
}

// Len returns the number of cached registries.
func (c *RegistryCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics.
func (c *RegistryCache) Stats() Stats {
	return c.cache.Stats()
}

// ResultCache holds encoded conversion responses, bounded by total size.
type ResultCache struct {
	cache *BoundedCache[string, []byte]
}

// NewResultCache creates a result cache holding at most maxBytes of
// responses.
func NewResultCache(config Config, maxBytes int64) *ResultCache {
	return &ResultCache{
		cache: NewBoundedCache[string, []byte](config, maxBytes, func(b []byte) int64 {
			return int64(len(b))
		}),
	}
}

// ResultKey identifies one conversion: the operation, the registry it ran
// against and the request body.
func ResultKey(op, registryFingerprint string, input []byte) string {
	return strings.Join([]string{op, registryFingerprint, ir.Blake3Bytes(input)}, ":")
}

// Get returns a cached response.
func (c *ResultCache) Get(key string) ([]byte, bool) {
	return c.cache.Get(key)
}

// Put stores a response.
func (c *ResultCache) Put(key string, value []byte) {
	c.cache.Put(key, value)
}

// Clear removes all responses.
func (c *ResultCache) Clear() {
	c.cache.Clear()
}

// Stats returns cache statistics.
func (c *ResultCache) Stats() Stats {
	return c.cache.Stats()
}
