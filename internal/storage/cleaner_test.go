package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasket/tasket-server/internal/models"
)

// recordingObjectStore captures delete calls instead of talking to a bucket.
type recordingObjectStore struct {
	configured bool
	deleted    []string
	deleteErr  error
}

func (r *recordingObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	return "", errors.New("not implemented")
}

func (r *recordingObjectStore) Delete(ctx context.Context, key string) error {
	r.deleted = append(r.deleted, key)
	return r.deleteErr
}

func (r *recordingObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (r *recordingObjectStore) Configured() bool { return r.configured }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestCleanerRoutesObjectStoreURLs(t *testing.T) {
	objects := &recordingObjectStore{configured: true}
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	cleaner := NewCleaner(objects, local, testLogger())

	url := "https://bucket.account.r2.cloudflarestorage.com/task-attachment-9-ff00.png"
	require.NoError(t, cleaner.DeleteByURL(context.Background(), url))
	assert.Equal(t, []string{"task-attachment-9-ff00.png"}, objects.deleted)
}

func TestCleanerRoutesLocalURLs(t *testing.T) {
	objects := &recordingObjectStore{configured: true}
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	cleaner := NewCleaner(objects, local, testLogger())

	url, err := local.Put(context.Background(), "task-attachment-3.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, cleaner.DeleteByURL(context.Background(), url))
	assert.False(t, local.Exists(url))
	assert.Empty(t, objects.deleted)
}

func TestCleanerLeavesExternalURLsAlone(t *testing.T) {
	objects := &recordingObjectStore{configured: true}
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	cleaner := NewCleaner(objects, local, testLogger())

	require.NoError(t, cleaner.DeleteByURL(context.Background(), "https://example.com/shared/doc.pdf"))
	assert.Empty(t, objects.deleted)
}

func TestCleanerSkipsUnconfiguredObjectStore(t *testing.T) {
	objects := &recordingObjectStore{configured: false}
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	cleaner := NewCleaner(objects, local, testLogger())

	url := "https://bucket.account.r2.cloudflarestorage.com/task-attachment-9.png"
	require.NoError(t, cleaner.DeleteByURL(context.Background(), url))
	assert.Empty(t, objects.deleted)
}

func TestCleanerDeleteAllCountsFailures(t *testing.T) {
	objects := &recordingObjectStore{configured: true, deleteErr: errors.New("boom")}
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	cleaner := NewCleaner(objects, local, testLogger())

	localURL, err := local.Put(context.Background(), "task-attachment-4.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)

	attachments := models.AttachmentList{
		{ID: "1", Type: models.AttachmentPhoto, URL: "https://b.a.r2.cloudflarestorage.com/one.png", Name: "one.png"},
		{ID: "2", Type: models.AttachmentDocument, URL: localURL, Name: "four.txt"},
		{ID: "3", Type: models.AttachmentDocument, URL: "https://b.a.r2.cloudflarestorage.com/two.pdf", Name: "two.pdf"},
		{ID: "4", Type: models.AttachmentDocument, URL: "", Name: "empty"},
	}

	failed := cleaner.DeleteAll(context.Background(), attachments)
	assert.Equal(t, 2, failed)
	// Every attachment was attempted despite the failures.
	assert.Len(t, objects.deleted, 2)
	assert.False(t, local.Exists(localURL))
}
