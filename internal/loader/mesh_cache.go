package loader

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"Winter3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	cacheExt     = ".w3dm"
	cacheMagic   = uint32(0x4D443357) // "W3DM"
	cacheVersion = uint32(1)
)

// ErrBadCache is returned when a cache file has the wrong magic or version.
var ErrBadCache = errors.New("loader: bad mesh cache")

// EncodeMesh writes a model as gzip-compressed little-endian binary.
func EncodeMesh(w io.Writer, m *Model) error {
	gz := gzip.NewWriter(w)
	enc := &binaryWriter{w: gz}

	enc.write(cacheMagic)
	enc.write(cacheVersion)
	enc.writeString(m.Name)
	enc.writeString(m.Material.Name)
	enc.write([4]float32(m.Material.Ka))
	enc.write([4]float32(m.Material.Kd))
	enc.write([4]float32(m.Material.Ks))
	enc.write(m.Material.Ns)
	enc.writeString(m.DiffuseMap)
	enc.writeString(m.SpecularMap)
	enc.write(uint32(len(m.Data.Interleaved)))
	enc.write(m.Data.Interleaved)
	enc.write(uint32(len(m.Data.Indices)))
	enc.write(m.Data.Indices)
	if enc.err != nil {
		return fmt.Errorf("encode mesh: %w", enc.err)
	}
	return gz.Close()
}

// DecodeMesh reads a model written by EncodeMesh.
func DecodeMesh(r io.Reader) (*Model, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCache, err)
	}
	defer gz.Close()
	dec := &binaryReader{r: gz}

	var magic, version uint32
	dec.read(&magic)
	dec.read(&version)
	if dec.err != nil {
		return nil, fmt.Errorf("decode mesh header: %w", dec.err)
	}
	if magic != cacheMagic || version != cacheVersion {
		return nil, fmt.Errorf("%w: magic 0x%X version %d", ErrBadCache, magic, version)
	}

	m := &Model{}
	var ka, kd, ks [4]float32
	m.Name = dec.readString()
	m.Material.Name = dec.readString()
	dec.read(&ka)
	dec.read(&kd)
	dec.read(&ks)
	dec.read(&m.Material.Ns)
	m.Material.Ka, m.Material.Kd, m.Material.Ks = mgl32.Vec4(ka), mgl32.Vec4(kd), mgl32.Vec4(ks)
	m.DiffuseMap = dec.readString()
	m.SpecularMap = dec.readString()
	m.Data.Interleaved = make([]float32, dec.length())
	dec.read(m.Data.Interleaved)
	m.Data.Indices = make([]uint32, dec.length())
	dec.read(m.Data.Indices)
	if dec.err != nil {
		return nil, fmt.Errorf("decode mesh: %w", dec.err)
	}
	return m, nil
}

// WriteCache stores a model at path, creating parent directories.
func WriteCache(path string, m *Model) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeMesh(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCache loads a model stored by WriteCache.
func ReadCache(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeMesh(f)
}

// CachePath is where LoadCached keeps the binary copy of src.
func CachePath(cacheDir, src string) string {
	return filepath.Join(cacheDir, modelName(src)+cacheExt)
}

// LoadCached returns the cached copy of src when it is at least as new as
// src, and otherwise loads src and refreshes the cache. An empty cacheDir
// disables caching.
func LoadCached(src, cacheDir string) (*Model, error) {
	if cacheDir == "" {
		return Load(src)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	cachePath := CachePath(cacheDir, src)
	if info, err := os.Stat(cachePath); err == nil && !info.ModTime().Before(srcInfo.ModTime()) {
		m, err := ReadCache(cachePath)
		if err == nil {
			logger.Log.Debug("Mesh cache hit", zap.String("path", cachePath))
			return m, nil
		}
		logger.Log.Warn("Ignoring unreadable mesh cache", zap.String("path", cachePath), zap.Error(err))
	}

	m, err := Load(src)
	if err != nil {
		return nil, err
	}
	if err := WriteCache(cachePath, m); err != nil {
		logger.Log.Warn("Could not write mesh cache", zap.String("path", cachePath), zap.Error(err))
	}
	return m, nil
}

// binaryWriter keeps the first error so the encoder reads as a sequence of writes.
type binaryWriter struct {
	w   io.Writer
	err error
}

func (b *binaryWriter) write(v any) {
	if b.err == nil {
		b.err = binary.Write(b.w, binary.LittleEndian, v)
	}
}

func (b *binaryWriter) writeString(s string) {
	b.write(uint32(len(s)))
	b.write([]byte(s))
}

type binaryReader struct {
	r   io.Reader
	err error
}

// maxCacheElements bounds allocations driven by lengths read from disk.
const maxCacheElements = 1 << 28

func (b *binaryReader) read(v any) {
	if b.err == nil {
		b.err = binary.Read(b.r, binary.LittleEndian, v)
	}
}

func (b *binaryReader) length() int {
	var n uint32
	b.read(&n)
	if b.err != nil {
		return 0
	}
	if n > maxCacheElements {
		b.err = fmt.Errorf("%w: length %d", ErrBadCache, n)
		return 0
	}
	return int(n)
}

func (b *binaryReader) readString() string {
	buf := make([]byte, b.length())
	b.read(buf)
	if b.err != nil {
		return ""
	}
	return string(buf)
}
