package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/vytor/studycards/internal/backup"
	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/repository"
	"github.com/vytor/studycards/internal/study"
)

// Confirmation is the explicit consent required to delete a whole category.
type Confirmation struct {
	Acknowledged bool   `json:"acknowledged"`
	Phrase       string `json:"phrase"`
}

// ConfirmationPhrase is the text that must be typed to delete category name.
func ConfirmationPhrase(name string) string {
	return "DELETE " + name
}

// RestoreReport describes a completed restore.
type RestoreReport struct {
	Backup       string   `json:"backup"`
	SafetyBackup string   `json:"safety_backup,omitempty"`
	Deleted      int64    `json:"deleted"`
	Restored     int      `json:"restored"`
	Skipped      int      `json:"skipped"`
	Warnings     []string `json:"warnings,omitempty"`
}

// RenameReport describes a category rename or merge.
type RenameReport struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Moved    int64    `json:"moved"`
	Merged   bool     `json:"merged"`
	Warnings []string `json:"warnings,omitempty"`
}

// DeleteCategoryReport describes a category deletion.
type DeleteCategoryReport struct {
	Category     string   `json:"category"`
	Deleted      int64    `json:"deleted"`
	SafetyBackup string   `json:"safety_backup,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// MaintenanceService runs whole-collection operations: backups, restore and
// category management. Each operation reads the full card set first.
type MaintenanceService interface {
	BackupNow(ctx context.Context) (string, error)
	ListBackups(ctx context.Context) ([]string, error)
	Restore(ctx context.Context, name string) (RestoreReport, error)
	RenameCategory(ctx context.Context, from, to string) (RenameReport, error)
	DeleteCategory(ctx context.Context, name string, confirm Confirmation) (DeleteCategoryReport, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
}

type maintenanceService struct {
	cards   repository.CardRepository
	backups repository.BackupStore
	writer  *BackupWriter
	auditor Auditor
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(cards repository.CardRepository, backups repository.BackupStore, auditor Auditor) MaintenanceService {
	if auditor == nil {
		auditor = NoopAuditor()
	}
	return &maintenanceService{
		cards:   cards,
		backups: backups,
		writer:  NewBackupWriter(cards, backups),
		auditor: auditor,
	}
}

func (s *maintenanceService) BackupNow(ctx context.Context) (string, error) {
	logger.FromContext(ctx).Info("manual backup requested")
	return s.writer.WriteBackup(ctx, backup.KindManual)
}

func (s *maintenanceService) ListBackups(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	names, err := s.backups.List(ctx)
	if err != nil {
		log.Error("failed to list backups: %v", err)
		return nil, errors.NewConnectivityError(err)
	}
	return names, nil
}

// Restore replaces the whole card set with the contents of a backup. Nothing is
// changed unless the backup holds at least one valid record.
func (s *maintenanceService) Restore(ctx context.Context, name string) (RestoreReport, error) {
	log := logger.FromContext(ctx).WithField("backup", name)
	report := RestoreReport{Backup: name}

	if strings.TrimSpace(name) == "" {
		return report, errors.NewValidationError("backup", "cannot be empty")
	}

	data, err := s.backups.Download(ctx, name)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return report, errors.NewNotFoundError("backup", name)
		}
		log.Error("failed to download backup: %v", err)
		return report, errors.NewConnectivityError(err)
	}

	decoded, err := backup.Decode(data)
	if err != nil {
		log.Warn("rejecting backup: %v", err)
		return report, err
	}
	report.Skipped = decoded.Skipped
	if decoded.Skipped > 0 {
		log.Warn("discarding %d malformed records", decoded.Skipped)
	}

	current, err := s.cards.List(ctx)
	if err != nil {
		log.Error("failed to fetch current cards: %v", err)
		return report, errors.NewConnectivityError(err)
	}

	report.SafetyBackup, report.Warnings = s.safetyBackup(ctx, current, report.Warnings)

	report.Deleted, err = s.cards.DeleteByIDs(ctx, study.IDs(current))
	if err != nil {
		log.Error("restore stopped while deleting: %d of %d deleted: %v", report.Deleted, len(current), err)
		return report, errors.NewWriteError(restoreProgress(report, len(current), len(decoded.Cards)), err)
	}

	report.Restored, err = s.cards.BulkInsert(ctx, decoded.Cards)
	if err != nil {
		log.Error("restore stopped while inserting: %d of %d inserted: %v", report.Restored, len(decoded.Cards), err)
		return report, errors.NewWriteError(restoreProgress(report, len(current), len(decoded.Cards)), err)
	}

	log.Info("restore completed: deleted=%d, restored=%d, skipped=%d", report.Deleted, report.Restored, report.Skipped)
	report.Warnings = s.audit(ctx, "restore", report.Warnings)
	return report, nil
}

// RenameCategory moves every card of from into to, merging when to already exists.
func (s *maintenanceService) RenameCategory(ctx context.Context, from, to string) (RenameReport, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	log := logger.FromContext(ctx).WithFields(map[string]any{"from": from, "to": to})
	report := RenameReport{From: from, To: to}

	if from == "" {
		return report, errors.NewValidationError("from", "cannot be empty")
	}
	if to == "" {
		return report, errors.NewValidationError("to", "cannot be empty")
	}

	cards, err := s.cards.List(ctx)
	if err != nil {
		log.Error("failed to fetch cards: %v", err)
		return report, errors.NewConnectivityError(err)
	}
	counts := countByCategory(cards)
	if counts[from] == 0 {
		return report, errors.NewNotFoundError("category", from)
	}
	if from == to {
		log.Debug("rename to the same category is a no-op")
		return report, nil
	}
	report.Merged = counts[to] > 0

	report.Moved, err = s.cards.UpdateCategory(ctx, from, to)
	if err != nil {
		log.Error("failed to rename category: %v", err)
		return report, errors.NewWriteError("rename category", err)
	}
	log.Info("category renamed: moved=%d, merged=%t", report.Moved, report.Merged)
	report.Warnings = s.audit(ctx, "rename_category", report.Warnings)
	return report, nil
}

// DeleteCategory removes every card in name once the deletion has been confirmed.
func (s *maintenanceService) DeleteCategory(ctx context.Context, name string, confirm Confirmation) (DeleteCategoryReport, error) {
	name = strings.TrimSpace(name)
	log := logger.FromContext(ctx).WithField("category", name)
	report := DeleteCategoryReport{Category: name}

	if name == "" {
		return report, errors.NewValidationError("category", "cannot be empty")
	}
	if !confirm.Acknowledged {
		return report, errors.NewValidationError("acknowledged", "deletion must be acknowledged")
	}
	if confirm.Phrase != ConfirmationPhrase(name) {
		return report, errors.NewValidationError("phrase", fmt.Sprintf("type %q to confirm", ConfirmationPhrase(name)))
	}

	cards, err := s.cards.List(ctx)
	if err != nil {
		log.Error("failed to fetch cards: %v", err)
		return report, errors.NewConnectivityError(err)
	}
	if countByCategory(cards)[name] == 0 {
		return report, errors.NewNotFoundError("category", name)
	}

	report.SafetyBackup, report.Warnings = s.safetyBackup(ctx, cards, report.Warnings)

	report.Deleted, err = s.cards.DeleteByCategory(ctx, name)
	if err != nil {
		log.Error("failed to delete category: %v", err)
		return report, errors.NewWriteError("delete category", err)
	}
	log.Info("category deleted: %d cards", report.Deleted)
	report.Warnings = s.audit(ctx, "delete_category", report.Warnings)
	return report, nil
}

func (s *maintenanceService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	log := logger.FromContext(ctx)

	counts, err := s.cards.CategoryCounts(ctx)
	if err != nil {
		log.Error("failed to count categories: %v", err)
		return nil, errors.NewConnectivityError(err)
	}
	return counts, nil
}

// safetyBackup snapshots cards before a destructive step. Failure is only a warning.
func (s *maintenanceService) safetyBackup(ctx context.Context, cards []models.Card, warnings []string) (string, []string) {
	name, err := s.writer.writeCards(ctx, backup.KindSafety, cards)
	if err != nil {
		logger.FromContext(ctx).Warn("safety backup failed, continuing: %v", err)
		return "", append(warnings, warningOf(errors.NewBestEffortError("safety backup", err)))
	}
	return name, warnings
}

func (s *maintenanceService) audit(ctx context.Context, reason string, warnings []string) []string {
	if err := s.auditor.Audit(ctx, reason); err != nil {
		return append(warnings, warningOf(err))
	}
	return warnings
}

func countByCategory(cards []models.Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.Category]++
	}
	return counts
}

func restoreProgress(r RestoreReport, current, valid int) string {
	safety := r.SafetyBackup
	if safety == "" {
		safety = "none"
	}
	return fmt.Sprintf("restore (deleted %d of %d, restored %d of %d, safety backup %s)",
		r.Deleted, current, r.Restored, valid, safety)
}
