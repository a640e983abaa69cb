package loader

import (
	"bytes"
	"compress/gzip"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestCheckerboard(t *testing.T) {
	img := Checkerboard(8, 2, red, blue)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
	assert.Equal(t, red, img.NRGBAAt(0, 0))
	assert.Equal(t, red, img.NRGBAAt(3, 3))
	assert.Equal(t, blue, img.NRGBAAt(4, 0))
	assert.Equal(t, blue, img.NRGBAAt(0, 7))
	assert.Equal(t, red, img.NRGBAAt(7, 7))
}

func TestDecodeImage(t *testing.T) {
	dir := t.TempDir()
	src := Checkerboard(4, 2, red, blue)

	var pngBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, bmp.Encode(&bmpBuf, src))
	pngPath := filepath.Join(dir, "check.png")
	bmpPath := filepath.Join(dir, "check.bmp")
	require.NoError(t, os.WriteFile(pngPath, pngBuf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(bmpPath, bmpBuf.Bytes(), 0o644))

	for _, path := range []string{pngPath, bmpPath} {
		img, err := DecodeImage(path)
		require.NoError(t, err, path)
		assert.Equal(t, 4, img.Bounds().Dx())
		r, _, b, _ := img.At(3, 0).RGBA()
		assert.Zero(t, r, path)
		assert.Equal(t, uint32(0xffff), b, path)
	}
}

func TestDecodeImageErrors(t *testing.T) {
	_, err := DecodeImage("texture.tga")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DecodeImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))
	_, err = DecodeImage(path)
	assert.Error(t, err)
}

func triangleDocument(withNormals bool) *gltf.Document {
	doc := gltf.NewDocument()
	attrs := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}}),
	}
	if withNormals {
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	}
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Materials = []*gltf.Material{{
		Name: "paint",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0.5, 0, 1},
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "triangle",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: attrs,
			Material:   gltf.Index(0),
		}},
	}}
	return doc
}

func TestModelFromDocument(t *testing.T) {
	model, err := modelFromDocument(triangleDocument(true))
	require.NoError(t, err)

	assert.Equal(t, 3, model.Data.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2}, model.Data.Indices)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, model.Data.Position(1))
	assert.Equal(t, mgl32.Vec2{0, 1}, model.Data.UV(2))
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, model.Data.Normal(0))

	assert.Equal(t, "paint", model.Material.Name)
	assert.Equal(t, mgl32.Vec4{1, 0.5, 0, 1}, model.Material.Kd)
}

func TestModelFromDocumentRecalculatesNormals(t *testing.T) {
	model, err := modelFromDocument(triangleDocument(false))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, mgl32.Vec3{0, 0, 1}, model.Data.Normal(i))
	}
}

func TestModelFromEmptyDocument(t *testing.T) {
	_, err := modelFromDocument(gltf.NewDocument())
	assert.Error(t, err)
}

func TestLoadGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.glb")
	require.NoError(t, gltf.SaveBinary(triangleDocument(true), path))

	model, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "triangle", model.Name)
	assert.Equal(t, 3, model.Data.VertexCount())
}

func cachedQuad() *Model {
	return &Model{
		Name:       "quad",
		Data:       Plane(1, 1),
		Material:   renderer.Gold,
		DiffuseMap: "textures/gold.bmp",
	}
}

func TestMeshCacheRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := cachedQuad()
	require.NoError(t, EncodeMesh(&buf, want))

	got, err := DecodeMesh(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMeshCacheRejectsForeignData(t *testing.T) {
	_, err := DecodeMesh(bytes.NewReader([]byte("plain text")))
	assert.ErrorIs(t, err, ErrBadCache)

	// Valid gzip, wrong magic.
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := &binaryWriter{w: gz}
	enc.write(uint32(0xDEADBEEF))
	enc.write(cacheVersion)
	require.NoError(t, enc.err)
	require.NoError(t, gz.Close())
	_, err = DecodeMesh(&buf)
	assert.ErrorIs(t, err, ErrBadCache)
}

func TestLoadCached(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	src := writeFile(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, old, old))

	first, err := LoadCached(src, cacheDir)
	require.NoError(t, err)
	assert.FileExists(t, CachePath(cacheDir, src))

	// A fresh cache is used instead of the source.
	marked := *first
	marked.Name = "from-cache"
	require.NoError(t, WriteCache(CachePath(cacheDir, src), &marked))
	second, err := LoadCached(src, cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "from-cache", second.Name)

	// A newer source invalidates it.
	now := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, now, now))
	third, err := LoadCached(src, cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "tri", third.Name)
}
