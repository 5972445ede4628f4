package storage_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/maynagashev/gophtodo/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var assets = fstest.MapFS{
	"css/base.css": {Data: []byte("body{}")},
	"js/base.js":   {Data: []byte("console.log(1)")},
}

func TestFSStorage_DownloadFile(t *testing.T) {
	s := storage.NewFSStorage(assets)

	tests := []struct {
		name     string
		key      string
		wantData string
		wantErr  error
	}{
		{
			name:     "Существующий файл",
			key:      "css/base.css",
			wantData: "body{}",
		},
		{
			name:    "Отсутствующий файл",
			key:     "css/missing.css",
			wantErr: storage.ErrObjectNotFound,
		},
		{
			name:    "Каталог",
			key:     "css",
			wantErr: storage.ErrObjectNotFound,
		},
		{
			name:    "Выход за пределы каталога",
			key:     "../secret",
			wantErr: storage.ErrObjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := s.DownloadFile(context.Background(), tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, string(data))
		})
	}
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(r)
	return m.Called(ctx, key, string(data), size, contentType).Error(0)
}

func (m *mockStorage) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func TestPublishAssets(t *testing.T) {
	t.Run("Все файлы загружены", func(t *testing.T) {
		dst := new(mockStorage)
		dst.On("UploadFile", mock.Anything, "css/base.css", "body{}", int64(6), "text/css; charset=utf-8").Return(nil)
		dst.On("UploadFile", mock.Anything, "js/base.js", "console.log(1)", int64(14), mock.Anything).Return(nil)

		n, err := storage.PublishAssets(context.Background(), dst, assets, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		dst.AssertExpectations(t)
	})

	t.Run("Ошибка хранилища", func(t *testing.T) {
		dst := new(mockStorage)
		uploadErr := errors.New("bucket unavailable")
		dst.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(uploadErr)

		n, err := storage.PublishAssets(context.Background(), dst, assets, zerolog.Nop())
		require.ErrorIs(t, err, uploadErr)
		assert.Zero(t, n)
	})
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/css; charset=utf-8", storage.ContentType("css/base.css"))
	assert.Equal(t, "application/octet-stream", storage.ContentType("LICENSE"))
	assert.NotEmpty(t, storage.ContentType("js/base.js"))
}
