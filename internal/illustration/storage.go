package illustration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore сохраняет изображения на диск и отдает их публичные ссылки.
type FileStore struct {
	savePath      string
	publicBaseURL string
}

func NewFileStore(savePath, publicBaseURL string) *FileStore {
	return &FileStore{
		savePath:      savePath,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Save записывает байты в <savePath>/<uuid>.png и возвращает <publicBaseURL>/<uuid>.png.
func (s *FileStore) Save(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image data", ErrImageSaveFailed)
	}
	if err := os.MkdirAll(s.savePath, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageSaveFailed, err)
	}

	fileName := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(s.savePath, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageSaveFailed, err)
	}
	return s.publicBaseURL + "/" + fileName, nil
}

// LocalPath возвращает путь к файлу, если ref указывает на изображение из этого хранилища.
func (s *FileStore) LocalPath(ref string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if ref == "" || !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	path := filepath.Join(s.savePath, filepath.Base(strings.TrimPrefix(ref, prefix)))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
