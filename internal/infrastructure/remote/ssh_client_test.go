package remote

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// startSFTPServer runs a password-protected SSH server that only speaks the
// sftp subsystem.
func startSFTPServer(t *testing.T, password string) (host string, port int, hostKey ssh.PublicKey) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	serverConfig := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if string(pass) == password {
				return nil, nil
			}
			return nil, errors.New("bad password")
		},
	}
	serverConfig.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(conn, serverConfig)
		}
	}()

	addrHost, addrPort, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(addrPort)
	require.NoError(t, err)
	return addrHost, p, signer.PublicKey()
}

func serveConn(conn net.Conn, config *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unsupported channel")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}
		go func(in <-chan *ssh.Request) {
			for req := range in {
				ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp"
				req.Reply(ok, nil)
			}
		}(requests)

		server, err := sftp.NewServer(channel)
		if err != nil {
			channel.Close()
			continue
		}
		go func() {
			server.Serve()
			server.Close()
		}()
	}
}

func TestSSHClient_Upload(t *testing.T) {
	host, port, hostKey := startSFTPServer(t, "secret")
	dir := t.TempDir()

	client := NewSSHClient(SSHConfig{
		Host:       host,
		Port:       port,
		User:       "reports",
		Password:   "secret",
		HostKey:    string(ssh.MarshalAuthorizedKey(hostKey)),
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	remotePath := filepath.ToSlash(filepath.Join(dir, "scans", "job-1.json"))
	require.NoError(t, client.Upload(ctx, remotePath, []byte(`{"status":"completed"}`)))

	data, err := os.ReadFile(filepath.Join(dir, "scans", "job-1.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed"}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "scans", "job-1.json.part"))
	assert.True(t, os.IsNotExist(err))
}

func TestSSHClient_WrongPassword(t *testing.T) {
	host, port, _ := startSFTPServer(t, "secret")

	client := NewSSHClient(SSHConfig{
		Host:       host,
		Port:       port,
		User:       "reports",
		Password:   "wrong",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	})

	err := client.Upload(context.Background(), "/tmp/never.json", []byte("x"))
	assert.ErrorIs(t, err, ErrSSHConnection)
}

func TestSSHClient_NoCredentials(t *testing.T) {
	client := NewSSHClient(SSHConfig{Host: "127.0.0.1", MaxRetries: 1})

	_, err := client.ConnectWithRetry(context.Background())
	assert.ErrorIs(t, err, ErrSSHAuthentication)
}
