package s3

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestDecodeImage(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(pngBase64)
	require.NoError(t, err)

	data, contentType, err := decodeImage("data:image/png;base64," + pngBase64)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, raw, data)

	data, contentType, err = decodeImage(pngBase64)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, raw, data)
}

func TestDecodeImage_Rejects(t *testing.T) {
	for name, input := range map[string]string{
		"empty":         "",
		"not base64":    "data:image/png;base64,%%%",
		"not encoded":   "data:image/png," + pngBase64,
		"not an image":  "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello")),
		"sniffed text":  base64.StdEncoding.EncodeToString([]byte("just some text")),
		"missing comma": "data:image/png;base64",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := decodeImage(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestObjectKeyFromURL(t *testing.T) {
	base := "http://localhost:9000/listing-images/"

	key, err := objectKeyFromURL(base, base+"listings/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "listings/abc.png", key)

	_, err = objectKeyFromURL(base, "https://res.cloudinary.com/x/abc.png")
	assert.Error(t, err)
	_, err = objectKeyFromURL(base, base)
	assert.Error(t, err)
}
