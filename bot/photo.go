package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// downloadPhoto stores the photo in the temp dir and returns its path
func (b *Bot) downloadPhoto(ctx context.Context, photo tgbotapi.PhotoSize) (string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}
	link := fmt.Sprintf(b.fileEndpoint, b.api.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download photo: unexpected status %s", resp.Status)
	}
	if err := os.MkdirAll(b.tempDir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(file.FilePath))
	if ext == "" {
		ext = ".jpg"
	}
	path := filepath.Join(b.tempDir, uuid.NewString()+ext)
	fd, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fd, resp.Body); err != nil {
		fd.Close()
		os.Remove(path)
		return "", fmt.Errorf("download photo: %w", err)
	}
	if err := fd.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (b *Bot) removeFile(path string) {
	if err := os.Remove(path); err != nil {
		b.logger.Warn("remove temp image failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	b.logger.Info("deleted temporary file", slog.String("path", path))
}
