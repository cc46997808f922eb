package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/repository"
)

// ContentTypeJSON is the only content type the bucket accepts.
const ContentTypeJSON = "application/json"

type backupStore struct {
	d        *diskv.Diskv
	basePath string
}

// NewBackupStore creates a BackupStore keeping one file per backup under basePath.
// Backups are immutable: uploading an existing name fails.
func NewBackupStore(basePath string) repository.BackupStore {
	return &backupStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 4 * 1024 * 1024,
		}),
		basePath: basePath,
	}
}

func (s *backupStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	log := logger.FromContext(ctx).WithPrefix("backup_store")

	if err := validName(name); err != nil {
		return err
	}
	if contentType != ContentTypeJSON {
		return fmt.Errorf("unsupported content type %q", contentType)
	}
	if s.d.Has(name) {
		return fmt.Errorf("backup %s already exists", name)
	}

	log.Debug("uploading backup: name=%s, size=%d", name, len(data))
	if err := s.d.Write(name, data); err != nil {
		log.Error("failed to write backup %s: %v", name, err)
		return err
	}
	return nil
}

func (s *backupStore) List(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("backup_store")

	var names []string
	for key := range s.d.Keys(ctx.Done()) {
		if strings.HasSuffix(key, ".json") {
			names = append(names, key)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Names embed a sortable UTC timestamp after the kind, so compare on that part.
	sort.Slice(names, func(i, j int) bool {
		si, sj := stampOf(names[i]), stampOf(names[j])
		if si != sj {
			return si > sj
		}
		return names[i] > names[j]
	})
	log.Debug("found %d backups in %s", len(names), s.basePath)
	return names, nil
}

func (s *backupStore) Download(ctx context.Context, name string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("backup_store")

	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := s.d.Read(name)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("backup not found: %s", name)
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to read backup %s: %v", name, err)
		return nil, err
	}
	return data, nil
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid backup name %q", name)
	}
	return nil
}

// stampOf returns the part of a backup name after its kind ("cards-<kind>-").
func stampOf(name string) string {
	parts := strings.SplitN(name, "-", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return name
}
