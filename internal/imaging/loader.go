package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// FetchFunc produces a base image on a cache miss.
type FetchFunc func() (image.Image, error)

// ImageCache keeps decoded base images so that repeated overlays of the same
// annotated image do not download or decode it again.
//
// Images are keyed by an opaque string, typically the image link or a file
// path. Different keys for the same picture are cached separately.
//
// ImageCache is safe for concurrent use by multiple goroutines. Two goroutines
// missing on the same key may both fetch; the last one stored wins.
//
// # Memory Management
//
// Cached images remain in memory until removed via Evict() or Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Get returns the image stored under key, fetching it on a miss.
//
// Parameters:
//   - key: Cache key, typically the image link or a file path.
//   - fetch: Produces the image when key is not cached. It is called
//     without the lock held.
//
// Returns:
//   - image.Image: The cached or freshly fetched image.
//   - error: Non-nil only if fetch failed.
//
// # Errors
//
// Fetch errors are returned as is and nothing is cached, so the next call
// for the same key fetches again.
func (c *ImageCache) Get(key string, fetch FetchFunc) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[key]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()

	return img, nil
}

// Load reads and decodes an image file, caching it under its path.
// Supported formats are PNG, JPEG and GIF.
func (c *ImageCache) Load(path string) (image.Image, error) {
	return c.Get(path, func() (image.Image, error) {
		return decodeFile(path)
	})
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes the image stored under key. Unknown keys are ignored.
func (c *ImageCache) Evict(key string) {
	c.mu.Lock()
	delete(c.images, key)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
