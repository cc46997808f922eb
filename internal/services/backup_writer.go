package services

import (
	"context"
	"time"

	"github.com/vytor/studycards/internal/backup"
	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/repository"
)

// BackupWriter snapshots the whole card set into the backup bucket.
type BackupWriter struct {
	cards   repository.CardRepository
	backups repository.BackupStore
	now     func() time.Time
}

// NewBackupWriter creates a new BackupWriter
func NewBackupWriter(cards repository.CardRepository, backups repository.BackupStore) *BackupWriter {
	return &BackupWriter{cards: cards, backups: backups, now: time.Now}
}

// WriteBackup fetches every card and uploads it under a new name of the given kind.
func (w *BackupWriter) WriteBackup(ctx context.Context, kind backup.Kind) (string, error) {
	cards, err := w.cards.List(ctx)
	if err != nil {
		return "", errors.NewConnectivityError(err)
	}
	return w.writeCards(ctx, kind, cards)
}

func (w *BackupWriter) writeCards(ctx context.Context, kind backup.Kind, cards []models.Card) (string, error) {
	log := logger.FromContext(ctx)

	data, err := backup.Encode(cards)
	if err != nil {
		log.Error("failed to encode backup: %v", err)
		return "", errors.NewInternalError(err)
	}

	name := backup.Name(kind, w.now())
	if err := w.backups.Upload(ctx, name, data, backup.ContentType); err != nil {
		log.Error("failed to upload backup %s: %v", name, err)
		return "", errors.NewWriteError("backup upload", err)
	}
	log.Info("wrote backup %s with %d cards", name, len(cards))
	return name, nil
}

// Auditor takes the best-effort audit copy that follows every successful mutation.
// A returned error is always a BEST_EFFORT_FAILURE.
type Auditor interface {
	Audit(ctx context.Context, reason string) error
}

type inlineAuditor struct {
	writer *BackupWriter
}

// NewInlineAuditor returns an Auditor that writes the audit backup before returning.
func NewInlineAuditor(writer *BackupWriter) Auditor {
	return &inlineAuditor{writer: writer}
}

func (a *inlineAuditor) Audit(ctx context.Context, reason string) error {
	log := logger.FromContext(ctx).WithField("reason", reason)
	if _, err := a.writer.WriteBackup(ctx, backup.KindAudit); err != nil {
		log.Warn("audit backup failed: %v", err)
		return errors.NewBestEffortError("audit backup", err)
	}
	return nil
}

type noopAuditor struct{}

// NoopAuditor returns an Auditor that does nothing, used when audit backups are off.
func NoopAuditor() Auditor { return noopAuditor{} }

func (noopAuditor) Audit(context.Context, string) error { return nil }
