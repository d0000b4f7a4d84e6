package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyberio/backend/internal/core/ports"
)

type localPublisher struct {
	baseDir string
}

func NewLocalPublisher(baseDir string) ports.ReportPublisher {
	if baseDir == "" {
		baseDir = "./reports"
	}
	return &localPublisher{baseDir: baseDir}
}

func (l *localPublisher) Sink() string { return SinkLocal }

func (l *localPublisher) Publish(_ context.Context, name string, payload []byte) (string, error) {
	path := filepath.Join(l.baseDir, filepath.Base(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create dirs: %w", err)
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, payload, 0o640); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("move file: %w", err)
	}
	return path, nil
}
