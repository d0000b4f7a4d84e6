package report

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/pkg/utils/crypto"
)

func TestLocalPublisher(t *testing.T) {
	dir := t.TempDir()
	publisher := NewLocalPublisher(dir)

	location, err := publisher.Publish(context.Background(), "job-1.json", []byte(`{"ok":true}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job-1.json"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}

func TestLocalPublisher_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	publisher := NewLocalPublisher(dir)

	location, err := publisher.Publish(context.Background(), "../../escape.json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.json"), location)
}

func TestEncryptingPublisher(t *testing.T) {
	dir := t.TempDir()
	publisher := NewEncryptingPublisher(NewLocalPublisher(dir), "report-key")
	assert.Equal(t, SinkLocal, publisher.Sink())

	location, err := publisher.Publish(context.Background(), "job-1.json", []byte(`{"ok":true}`))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(location, "job-1.json.enc"))

	sealed, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "ok")

	plain, err := crypto.Open(string(sealed), "report-key", []byte("job-1.json.enc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(plain))
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher(t *testing.T) {
	client := &fakeS3{}
	publisher := NewS3Publisher(client, "reports", "scans/")

	location, err := publisher.Publish(context.Background(), "job-1.json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "s3://reports/scans/job-1.json", location)
	assert.Equal(t, "reports", *client.input.Bucket)
	assert.Equal(t, "scans/job-1.json", *client.input.Key)
	assert.Equal(t, "application/json", *client.input.ContentType)
	assert.Equal(t, []byte("{}"), client.body)

	client.err = errors.New("access denied")
	_, err = publisher.Publish(context.Background(), "job-2.json", []byte("{}"))
	assert.ErrorContains(t, err, "access denied")
}

type fakeUploader struct {
	path string
	data []byte
}

func (f *fakeUploader) Address() string { return "reports.internal:22" }

func (f *fakeUploader) Upload(_ context.Context, remotePath string, data []byte) error {
	f.path = remotePath
	f.data = data
	return nil
}

func TestSFTPPublisher(t *testing.T) {
	client := &fakeUploader{}
	publisher := NewSFTPPublisher(client, "/upload/scans")

	location, err := publisher.Publish(context.Background(), "job-1.json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "/upload/scans/job-1.json", client.path)
	assert.Equal(t, "sftp://reports.internal:22/upload/scans/job-1.json", location)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	publisher, err := New(ctx, config.ReportConfig{}, log)
	require.NoError(t, err)
	assert.Nil(t, publisher)

	publisher, err = New(ctx, config.ReportConfig{Sink: SinkLocal, LocalDir: t.TempDir(), EncryptionKey: "k"}, log)
	require.NoError(t, err)
	require.NotNil(t, publisher)
	assert.Equal(t, SinkLocal, publisher.Sink())

	_, err = New(ctx, config.ReportConfig{Sink: "ftp"}, log)
	assert.Error(t, err)

	_, err = New(ctx, config.ReportConfig{Sink: SinkSFTP, SFTP: config.SFTPConfig{Host: "h", PrivateKeyPath: filepath.Join(t.TempDir(), "missing")}}, log)
	assert.Error(t, err)
}
