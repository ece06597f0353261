package photo

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFitJPEG(t *testing.T) {
	t.Run("shrinks the longest edge", func(t *testing.T) {
		out, err := FitJPEG(pngFixture(t, 200, 100), 50, 85)
		require.NoError(t, err)

		img, err := imaging.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 50, img.Bounds().Dx())
		assert.Equal(t, 25, img.Bounds().Dy())
	})

	t.Run("keeps small images as is", func(t *testing.T) {
		out, err := FitJPEG(pngFixture(t, 40, 30), 1080, 85)
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 40, cfg.Width)
		assert.Equal(t, 30, cfg.Height)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := FitJPEG([]byte("not an image"), 1080, 85)
		assert.Error(t, err)
	})
}

func TestSquareJPEG(t *testing.T) {
	out, err := SquareJPEG(pngFixture(t, 120, 60), 32, 85)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestReadAll(t *testing.T) {
	data, err := ReadAll(strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = ReadAll(strings.NewReader("abcd"), 3)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = ReadAll(strings.NewReader(""), 3)
	assert.ErrorIs(t, err, ErrEmptyImage)
}
