package uploads

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"Backend-Feedback-Portal/src/utils"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestStoreIDCard(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir, 2<<20)

	t.Run("png is normalised to jpeg", func(t *testing.T) {
		img, err := svc.StoreIDCard(pngBytes(t, 64, 40))
		require.NoError(t, err)

		assert.Equal(t, ".jpg", filepath.Ext(img.Name))
		assert.Equal(t, []byte{0xFF, 0xD8}, img.Data[:2])
		_, err = os.Stat(img.Path)
		assert.NoError(t, err)

		svc.Remove(img)
		_, err = os.Stat(img.Path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("wide card is downscaled", func(t *testing.T) {
		img, err := svc.StoreIDCard(pngBytes(t, MaxIDCardWidth+400, 100))
		require.NoError(t, err)

		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		require.NoError(t, err)
		assert.Equal(t, MaxIDCardWidth, decoded.Bounds().Dx())
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := svc.StoreIDCard([]byte("%PDF-1.4 not a card"))
		require.Error(t, err)
		assert.Equal(t, 400, utils.StatusOf(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.StoreIDCard(nil)
		assert.Equal(t, 400, utils.StatusOf(err))
	})
}

func TestStoreIDCardTooLarge(t *testing.T) {
	data := pngBytes(t, 32, 32)
	svc := NewService(t.TempDir(), int64(len(data)-1))

	_, err := svc.StoreIDCard(data)
	require.Error(t, err)
	assert.Equal(t, 400, utils.StatusOf(err))
	assert.Contains(t, err.Error(), "at most")
}

func TestSaveIDCardRequiresFile(t *testing.T) {
	_, err := NewService(t.TempDir(), 1<<20).SaveIDCard(nil)
	require.Error(t, err)
	assert.Equal(t, "ID card image is required", err.Error())
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "2 MB", humanBytes(2<<20))
	assert.Equal(t, "1500 bytes", humanBytes(1500))
}
