package renderer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"Winter3D/internal/logger"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
)

// TextureStats provides debugging and profiling information
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
}

type managedTexture struct {
	texture Texture
	key     string
	refs    int
}

// TextureManager loads textures through a Device and shares them by path.
type TextureManager struct {
	device   Device
	byKey    map[string]*managedTexture
	byHandle map[Texture]*managedTexture
	mu       sync.Mutex
	stats    TextureStats
}

func NewTextureManager(device Device) *TextureManager {
	return &TextureManager{
		device:   device,
		byKey:    make(map[string]*managedTexture),
		byHandle: make(map[Texture]*managedTexture),
	}
}

// LoadTexture decodes a BMP, PNG or JPEG file, or returns the cached texture
// and increments its reference count.
func (tm *TextureManager) LoadTexture(filePath string) (Texture, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if t, ok := tm.hit(filePath); ok {
		return t, nil
	}
	tm.stats.CacheMisses++

	img, err := decodeFile(filePath)
	if err != nil {
		return nil, err
	}
	return tm.create(filePath, img)
}

// CreateTextureFromImage uploads an in-memory image cached under name.
func (tm *TextureManager) CreateTextureFromImage(img image.Image, name string) (Texture, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if t, ok := tm.hit(name); ok {
		return t, nil
	}
	tm.stats.CacheMisses++
	return tm.create(name, img)
}

func (tm *TextureManager) hit(key string) (Texture, bool) {
	entry, ok := tm.byKey[key]
	if !ok {
		return nil, false
	}
	entry.refs++
	tm.stats.CacheHits++
	logger.Log.Debug("Texture cache hit",
		zap.String("key", key),
		zap.Int("refCount", entry.refs))
	return entry.texture, true
}

func (tm *TextureManager) create(key string, img image.Image) (Texture, error) {
	texture, err := tm.device.NewTexture(img)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", key, err)
	}
	entry := &managedTexture{texture: texture, key: key, refs: 1}
	tm.byKey[key] = entry
	tm.byHandle[texture] = entry
	tm.stats.TotalTextures++

	width, height := texture.Size()
	logger.Log.Info("Texture loaded and cached",
		zap.String("key", key),
		zap.Int32("width", width),
		zap.Int32("height", height))
	return texture, nil
}

// ReleaseTexture decrements the reference count and frees the texture at zero.
func (tm *TextureManager) ReleaseTexture(texture Texture) {
	if texture == nil {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	entry, ok := tm.byHandle[texture]
	if !ok {
		logger.Log.Warn("Attempted to release unknown texture")
		return
	}
	entry.refs--
	if entry.refs > 0 {
		return
	}
	entry.texture.Release()
	delete(tm.byKey, entry.key)
	delete(tm.byHandle, texture)
	logger.Log.Debug("Texture freed", zap.String("key", entry.key))
}

func (tm *TextureManager) GetStats() TextureStats {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	stats := tm.stats
	stats.ActiveTextures = len(tm.byKey)
	return stats
}

func (tm *TextureManager) LogStats() {
	stats := tm.GetStats()
	hitRate := 0.0
	if lookups := stats.CacheHits + stats.CacheMisses; lookups > 0 {
		hitRate = float64(stats.CacheHits) / float64(lookups)
	}
	logger.Log.Info("Texture Manager Stats",
		zap.Int("totalTextures", stats.TotalTextures),
		zap.Int("activeTextures", stats.ActiveTextures),
		zap.Int("cacheHits", stats.CacheHits),
		zap.Int("cacheMisses", stats.CacheMisses),
		zap.Float64("hitRate", hitRate))
}

// Clear releases every texture regardless of its reference count.
func (tm *TextureManager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for _, entry := range tm.byKey {
		entry.texture.Release()
	}
	tm.byKey = make(map[string]*managedTexture)
	tm.byHandle = make(map[Texture]*managedTexture)
}

func decodeFile(filePath string) (image.Image, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return img, nil
}
