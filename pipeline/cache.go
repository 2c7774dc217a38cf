package pipeline

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/svke/pipeline/pipecache"
)

// Cache is a device pipeline cache seeded from, and saved back to, a file.
type Cache struct {
	driver core1_0.CoreDeviceDriver
	cache  core1_0.PipelineCache
	path   string
}

// OpenCache creates a pipeline cache, seeding it from path when the file was
// written for the same device. An empty path gives a cache that is never
// saved.
func OpenCache(driver core1_0.CoreDeviceDriver, path string, identity pipecache.Identity) (*Cache, error) {
	var initialData []byte
	if path != "" {
		var err error
		initialData, err = pipecache.Load(path, identity)
		if err != nil {
			return nil, err
		}
	}

	cache, _, err := driver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pipeline cache")
	}

	return &Cache{driver: driver, cache: cache, path: path}, nil
}

func (c *Cache) handle() *core1_0.PipelineCache {
	if c == nil || !c.cache.Initialized() {
		return nil
	}
	return &c.cache
}

func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	data, _, err := c.driver.GetPipelineCacheData(c.cache)
	if err != nil {
		return errors.Wrap(err, "failed to read pipeline cache data")
	}
	return pipecache.Save(c.path, data)
}

func (c *Cache) Destroy() {
	if c.cache.Initialized() {
		c.driver.DestroyPipelineCache(c.cache, nil)
	}
}
