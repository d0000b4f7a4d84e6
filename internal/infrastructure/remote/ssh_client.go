package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

var (
	ErrSSHConnection     = errors.New("ssh: connection failed")
	ErrSSHAuthentication = errors.New("ssh: authentication failed")
	ErrSSHTimeout        = errors.New("ssh: connection timeout")
	ErrUploadFailed      = errors.New("sftp: upload failed")
)

type SSHConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	PrivateKey string
	// HostKey pins the server key (authorized_keys format). Empty accepts any key.
	HostKey    string
	Timeout    time.Duration
	MaxRetries int
}

type SSHClient struct {
	config SSHConfig
}

func NewSSHClient(cfg SSHConfig) *SSHClient {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &SSHClient{config: cfg}
}

func (c *SSHClient) Address() string {
	return net.JoinHostPort(c.config.Host, fmt.Sprint(c.config.Port))
}

func (c *SSHClient) getAuthMethods() ([]ssh.AuthMethod, error) {
	var authMethods []ssh.AuthMethod

	if c.config.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(c.config.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid private key", ErrSSHAuthentication)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	if c.config.Password != "" {
		authMethods = append(authMethods, ssh.Password(c.config.Password))
	}

	if len(authMethods) == 0 {
		return nil, fmt.Errorf("%w: no credentials provided", ErrSSHAuthentication)
	}

	return authMethods, nil
}

func (c *SSHClient) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.config.HostKey == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(c.config.HostKey))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid host key: %v", ErrSSHConnection, err)
	}
	return ssh.FixedHostKey(key), nil
}

// ConnectWithRetry dials the server, backing off linearly between attempts.
func (c *SSHClient) ConnectWithRetry(ctx context.Context) (*ssh.Client, error) {
	authMethods, err := c.getAuthMethods()
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.config.Timeout,
	}

	addr := c.Address()
	var connectErr error

	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		dialer := net.Dialer{
			Timeout:   c.config.Timeout,
			KeepAlive: 60 * time.Second,
		}

		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			connectErr = err
		} else {
			conn.SetDeadline(time.Now().Add(c.config.Timeout))

			sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
			if err != nil {
				conn.Close()
				connectErr = err
			} else {
				conn.SetDeadline(time.Time{})
				return ssh.NewClient(sshConn, chans, reqs), nil
			}
		}

		if attempt < c.config.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSSHTimeout, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	errType := "connection failed"
	if errors.Is(connectErr, context.DeadlineExceeded) || (connectErr != nil && (contains(connectErr.Error(), "timeout") || contains(connectErr.Error(), "deadline"))) {
		errType = "connection timed out"
	}

	return nil, fmt.Errorf("%w: %s: %v (after %d attempts)", ErrSSHConnection, errType, connectErr, c.config.MaxRetries)
}

func contains(s, substr string) bool {
	return len(s) > 0 && len(substr) > 0 && bytes.Contains([]byte(s), []byte(substr))
}

// Upload writes data to remotePath over SFTP. The file is written under a
// temporary name and renamed into place so readers never see a partial file.
func (c *SSHClient) Upload(ctx context.Context, remotePath string, data []byte) error {
	client, err := c.ConnectWithRetry(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("%w: failed to create sftp client: %v", ErrUploadFailed, err)
	}
	defer sftpClient.Close()

	done := make(chan error, 1)
	go func() {
		done <- writeRemoteFile(sftpClient, remotePath, data)
	}()

	select {
	case <-ctx.Done():
		sftpClient.Close()
		return fmt.Errorf("%w: %v", ErrUploadFailed, ctx.Err())
	case err := <-done:
		return err
	}
}

func writeRemoteFile(client *sftp.Client, remotePath string, data []byte) error {
	if err := client.MkdirAll(path.Dir(remotePath)); err != nil {
		return fmt.Errorf("%w: failed to create remote directory: %v", ErrUploadFailed, err)
	}

	tempPath := remotePath + ".part"
	remoteFile, err := client.Create(tempPath)
	if err != nil {
		return fmt.Errorf("%w: failed to create remote file: %v", ErrUploadFailed, err)
	}

	written, err := remoteFile.Write(data)
	if err != nil {
		remoteFile.Close()
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := remoteFile.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if written != len(data) {
		return fmt.Errorf("%w: upload incomplete: expected %d bytes, got %d", ErrUploadFailed, len(data), written)
	}

	if err := client.PosixRename(tempPath, remotePath); err != nil {
		if err := client.Rename(tempPath, remotePath); err != nil {
			return fmt.Errorf("%w: failed to move file into place: %v", ErrUploadFailed, err)
		}
	}
	return nil
}
