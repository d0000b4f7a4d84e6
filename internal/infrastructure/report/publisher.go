package report

import (
	"context"
	"fmt"
	"os"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/infrastructure/remote"
)

const (
	SinkLocal = "local"
	SinkS3    = "s3"
	SinkSFTP  = "sftp"
)

// New builds the publisher for the configured sink. It returns nil when
// report publishing is disabled.
func New(ctx context.Context, cfg config.ReportConfig, log *logger.Logger) (ports.ReportPublisher, error) {
	var publisher ports.ReportPublisher

	switch cfg.Sink {
	case "":
		return nil, nil
	case SinkLocal:
		publisher = NewLocalPublisher(cfg.LocalDir)
	case SinkS3:
		client, err := newS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		publisher = NewS3Publisher(client, cfg.S3.Bucket, cfg.S3.Prefix)
	case SinkSFTP:
		sshCfg := remote.SSHConfig{
			Host:     cfg.SFTP.Host,
			Port:     cfg.SFTP.Port,
			User:     cfg.SFTP.User,
			Password: cfg.SFTP.Password,
			HostKey:  cfg.SFTP.HostKey,
			Timeout:  cfg.SFTP.Timeout,
		}
		if cfg.SFTP.PrivateKeyPath != "" {
			key, err := os.ReadFile(cfg.SFTP.PrivateKeyPath)
			if err != nil {
				return nil, fmt.Errorf("report: failed to read sftp private key: %w", err)
			}
			sshCfg.PrivateKey = string(key)
		}
		publisher = NewSFTPPublisher(remote.NewSSHClient(sshCfg), cfg.SFTP.Directory)
	default:
		return nil, fmt.Errorf("report: unknown sink %q", cfg.Sink)
	}

	if cfg.EncryptionKey != "" {
		publisher = NewEncryptingPublisher(publisher, cfg.EncryptionKey)
	}

	log.Infow("report_publisher_ready", "sink", publisher.Sink(), "encrypted", cfg.EncryptionKey != "")
	return publisher, nil
}
