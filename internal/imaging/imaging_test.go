package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 200, B: 90, A: 255})
		}
	}
	return img
}

func TestPrepare_JPEGInput_StaysJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(120, 90), nil))

	asset, err := Prepare(buf.Bytes(), "photo")
	require.NoError(t, err)
	require.Equal(t, "JPG", asset.Format)
	require.Equal(t, 120, asset.PixelW)
	require.Equal(t, 90, asset.PixelH)
	require.NotEmpty(t, asset.Data)
}

func TestPrepare_PNGInput_KeepsPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(64, 64)))

	asset, err := Prepare(buf.Bytes(), "logo")
	require.NoError(t, err)
	require.Equal(t, "PNG", asset.Format)
}

func TestPrepare_Oversized_DownscalesToMaxEdge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(3200, 800), nil))

	asset, err := Prepare(buf.Bytes(), "wide")
	require.NoError(t, err)
	require.Equal(t, 1600, asset.PixelW)
	require.Equal(t, 400, asset.PixelH)
}

func TestPrepare_CorruptBytes_ReturnsError(t *testing.T) {
	_, err := Prepare([]byte("not an image at all"), "broken")
	require.Error(t, err)
}

func TestLoad_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(32, 24)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	asset, err := Load(path, "photo")
	require.NoError(t, err)
	require.Equal(t, 32, asset.PixelW)
	require.Equal(t, 24, asset.PixelH)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.jpg"), "photo")
	require.Error(t, err)
}
