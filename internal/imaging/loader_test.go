package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

// writeTestImage writes a solid PNG into a temp dir and returns its path.
func writeTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "base.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	path := writeTestImage(t, 40, 30, color.NRGBA{R: 255, A: 255})
	cache := NewImageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("size: got %dx%d, want 40x30", b.Dx(), b.Dy())
	}

	again, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if again != img {
		t.Error("second Load should return the cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	cache := NewImageCache()

	if _, err := cache.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("expected error for undecodable file")
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads must not be cached, Len = %d", cache.Len())
	}
}

func TestImageCache_GetFetchesOnce(t *testing.T) {
	cache := NewImageCache()
	var calls int
	fetch := func() (image.Image, error) {
		calls++
		return image.NewNRGBA(image.Rect(0, 0, 2, 2)), nil
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.Get("http://example.com/a.png", fetch); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("fetch calls: got %d, want 1", calls)
	}
}

func TestImageCache_GetError(t *testing.T) {
	cache := NewImageCache()
	boom := errors.New("boom")

	_, err := cache.Get("k", func() (image.Image, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}
	if cache.Len() != 0 {
		t.Error("fetch errors must not be cached")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	for _, k := range []string{"a", "b", "c"} {
		cache.Get(k, func() (image.Image, error) { return img, nil })
	}

	cache.Evict("a")
	cache.Evict("missing")
	if cache.Len() != 2 {
		t.Errorf("Len after Evict: got %d, want 2", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	var calls atomic.Int32
	fetch := func() (image.Image, error) {
		calls.Add(1)
		return image.NewNRGBA(image.Rect(0, 0, 4, 4)), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get("shared", fetch); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
	if calls.Load() < 1 {
		t.Error("fetch was never called")
	}
}
