package blobstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studycards/internal/repository"
	"github.com/vytor/studycards/internal/repository/blobstore"
)

func TestBackupStore_UploadListDownload(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewBackupStore(t.TempDir())

	names := []string{
		"cards-manual-20261015T090000.000000000Z.json",
		"cards-audit-20261015T100000.000000000Z.json",
		"cards-safety-20261014T230000.000000000Z.json",
	}
	for _, name := range names {
		require.NoError(t, store.Upload(ctx, name, []byte(`[]`), blobstore.ContentTypeJSON))
	}

	listed, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"cards-audit-20261015T100000.000000000Z.json",
		"cards-manual-20261015T090000.000000000Z.json",
		"cards-safety-20261014T230000.000000000Z.json",
	}, listed)

	data, err := store.Download(ctx, names[0])
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestBackupStore_ListEmpty(t *testing.T) {
	listed, err := blobstore.NewBackupStore(t.TempDir()).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestBackupStore_BackupsAreImmutable(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewBackupStore(t.TempDir())
	name := "cards-manual-20261015T090000.000000000Z.json"

	require.NoError(t, store.Upload(ctx, name, []byte(`[{"id":"1"}]`), blobstore.ContentTypeJSON))
	assert.Error(t, store.Upload(ctx, name, []byte(`[]`), blobstore.ContentTypeJSON))

	data, err := store.Download(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(data))
}

func TestBackupStore_Rejections(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewBackupStore(t.TempDir())

	assert.Error(t, store.Upload(ctx, "cards-manual-1.json", []byte(`[]`), "text/plain"))

	for _, name := range []string{"", "../escape.json", "nested/cards.json", `win\cards.json`} {
		assert.Error(t, store.Upload(ctx, name, []byte(`[]`), blobstore.ContentTypeJSON), name)
		_, err := store.Download(ctx, name)
		assert.Error(t, err, name)
	}
}

func TestBackupStore_DownloadMissing(t *testing.T) {
	_, err := blobstore.NewBackupStore(t.TempDir()).Download(context.Background(), "cards-manual-missing.json")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
