package service_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSaveDataURIToLocalStore(t *testing.T) {
	root := t.TempDir()
	images := service.NewImageService(service.NewLocalImageStore(root, "http://localhost:8080/media/"))
	ctx := context.Background()

	url, err := images.SaveDataURI(ctx, testhelpers.PNGDataURI)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/media/recipes/images/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	path := filepath.Join(root, "recipes", "images", filepath.Base(url))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))

	require.NoError(t, images.Delete(ctx, url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, images.Delete(ctx, url))
	assert.NoError(t, images.Delete(ctx, "https://elsewhere.example.com/a.png"))
}

func TestSaveDataURIRejectsBadInput(t *testing.T) {
	images := service.NewImageService(service.NewLocalImageStore(t.TempDir(), "/media"))
	oversized := "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, service.MaxImageSize+1))

	tests := []struct {
		name string
		uri  string
	}{
		{name: "plain url", uri: "https://example.com/a.png"},
		{name: "not base64", uri: "data:image/png;base64,@@@"},
		{name: "svg", uri: "data:image/svg+xml;base64,PHN2Zz48L3N2Zz4="},
		{name: "text payload", uri: "data:image/png;base64,aGVsbG8gd29ybGQ="},
		{name: "too large", uri: oversized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := images.SaveDataURI(context.Background(), tt.uri)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "image")
		})
	}
}
