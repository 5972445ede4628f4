package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"

	"github.com/rs/zerolog"
)

// FSStorage отдает файлы из файловой системы только для чтения (встроенная статика).
type FSStorage struct {
	fsys fs.FS
}

// NewFSStorage создает хранилище поверх fsys.
func NewFSStorage(fsys fs.FS) *FSStorage {
	return &FSStorage{fsys: fsys}
}

// DownloadFile открывает файл по ключу. Каталоги и отсутствующие ключи дают ErrObjectNotFound.
func (s *FSStorage) DownloadFile(_ context.Context, objectKey string) (io.ReadCloser, error) {
	if !fs.ValidPath(objectKey) {
		return nil, ErrObjectNotFound
	}

	f, err := s.fsys.Open(objectKey)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", objectKey, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("ошибка получения информации о файле %s: %w", objectKey, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrObjectNotFound
	}
	return f, nil
}

// PublishAssets загружает все файлы из src в dst с сохранением относительных путей.
// Возвращает число загруженных файлов.
func PublishAssets(ctx context.Context, dst FileStorage, src fs.FS, logger zerolog.Logger) (int, error) {
	published := 0
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("ошибка получения информации о файле %s: %w", p, err)
		}
		f, err := src.Open(p)
		if err != nil {
			return fmt.Errorf("ошибка открытия файла %s: %w", p, err)
		}
		defer f.Close()

		if err = dst.UploadFile(ctx, p, f, info.Size(), ContentType(p)); err != nil {
			return fmt.Errorf("ошибка публикации %s: %w", p, err)
		}
		published++
		return nil
	})
	if err != nil {
		return published, err
	}

	logger.Info().Int("files", published).Msg("Статика опубликована в хранилище")
	return published, nil
}

// ContentType определяет MIME-тип по расширению файла.
func ContentType(objectKey string) string {
	if ct := mime.TypeByExtension(path.Ext(objectKey)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
