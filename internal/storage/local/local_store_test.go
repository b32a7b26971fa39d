package local_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicepipe/internal/config"
	"invoicepipe/internal/port"
	"invoicepipe/internal/storage/local"
)

func newStore(t *testing.T, baseURL string) (*local.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := local.NewStore(&config.StorageConfig{Driver: "local", LocalDir: dir, PublicBaseURL: baseURL})
	require.NoError(t, err)
	return s, dir
}

func TestStore_UploadDownloadDelete(t *testing.T) {
	s, dir := newStore(t, "http://localhost:8080/files/")
	ctx := context.Background()

	out, err := s.Upload(ctx, port.UploadInput{
		Bucket:      "invoices",
		Key:         "abc/invoice one.pdf",
		Body:        bytes.NewReader([]byte("%PDF-1.4 body")),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/invoices/abc/invoice%20one.pdf", out.Location)
	assert.Equal(t, filepath.Join(dir, "invoices", "abc", "invoice one.pdf"), out.Path)

	data, err := s.Download(ctx, "invoices", "abc/invoice one.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	url, err := s.GetPresignedURL(ctx, "invoices", "abc/invoice one.pdf", 60)
	require.NoError(t, err)
	assert.Equal(t, out.Location, url)

	require.NoError(t, s.Delete(ctx, "invoices", "abc/invoice one.pdf"))
	_, err = os.Stat(out.Path)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "invoices", "abc/invoice one.pdf"))
}

func TestStore_NoPublicURL(t *testing.T) {
	s, _ := newStore(t, "")
	ctx := context.Background()

	out, err := s.Upload(ctx, port.UploadInput{Bucket: "b", Key: "k.pdf", Body: bytes.NewReader([]byte("x"))})
	require.NoError(t, err)
	assert.Contains(t, out.Location, "file://")

	_, err = s.GetPresignedURL(ctx, "b", "k.pdf", 60)
	assert.Error(t, err)
}

func TestStore_RejectsTraversal(t *testing.T) {
	s, _ := newStore(t, "")
	ctx := context.Background()

	_, err := s.Upload(ctx, port.UploadInput{Bucket: "b", Key: "../../etc/passwd", Body: bytes.NewReader(nil)})
	assert.Error(t, err)

	_, err = s.Download(ctx, "b", "../../etc/passwd")
	assert.Error(t, err)
}

func TestStore_DownloadMissing(t *testing.T) {
	s, _ := newStore(t, "")
	_, err := s.Download(context.Background(), "b", "missing.pdf")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
