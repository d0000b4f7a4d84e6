package report

import (
	"context"
	"fmt"
	"path"

	"github.com/cyberio/backend/internal/core/ports"
)

type uploader interface {
	Address() string
	Upload(ctx context.Context, remotePath string, data []byte) error
}

type sftpPublisher struct {
	client    uploader
	directory string
}

func NewSFTPPublisher(client uploader, directory string) ports.ReportPublisher {
	if directory == "" {
		directory = "/upload"
	}
	return &sftpPublisher{client: client, directory: directory}
}

func (s *sftpPublisher) Sink() string { return SinkSFTP }

func (s *sftpPublisher) Publish(ctx context.Context, name string, payload []byte) (string, error) {
	remotePath := path.Join(s.directory, path.Base(name))
	if err := s.client.Upload(ctx, remotePath, payload); err != nil {
		return "", err
	}
	return fmt.Sprintf("sftp://%s%s", s.client.Address(), remotePath), nil
}
