package worker

import (
	"context"

	"github.com/vytor/studycards/internal/backup"
	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/logger"
)

// BackupWriter snapshots the card set into the backup bucket.
// This avoids import cycles by not importing the services package
type BackupWriter interface {
	WriteBackup(ctx context.Context, kind backup.Kind) (string, error)
}

// AuditBackupJob writes the audit copy that follows a mutation.
type AuditBackupJob struct {
	Writer BackupWriter
	Reason string
}

func (j *AuditBackupJob) Name() string { return "audit_backup" }

func (j *AuditBackupJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("reason", j.Reason)

	name, err := j.Writer.WriteBackup(ctx, backup.KindAudit)
	if err != nil {
		log.Warn("audit backup failed: %v", err)
		return err
	}
	log.Debug("audit backup written: %s", name)
	return nil
}

// PoolAuditor queues audit backups on a worker pool instead of writing them
// during the request. When the queue is full the audit is dropped.
type PoolAuditor struct {
	pool   *Pool
	writer BackupWriter
}

func NewPoolAuditor(pool *Pool, writer BackupWriter) *PoolAuditor {
	return &PoolAuditor{pool: pool, writer: writer}
}

// Audit reports only a failure to queue; the backup itself runs later and its
// outcome is logged by the pool.
func (a *PoolAuditor) Audit(ctx context.Context, reason string) error {
	if err := a.pool.TrySubmit(&AuditBackupJob{Writer: a.writer, Reason: reason}); err != nil {
		logger.FromContext(ctx).Warn("audit backup dropped: reason=%s: %v", reason, err)
		return errors.NewBestEffortError("audit backup", err)
	}
	return nil
}
