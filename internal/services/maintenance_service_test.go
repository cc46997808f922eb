package services_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/studycards/internal/backup"
	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/repository"
	"github.com/vytor/studycards/internal/repository/rowstore"
	"github.com/vytor/studycards/internal/services"
	"github.com/vytor/studycards/internal/testutil"
	"github.com/vytor/studycards/internal/testutil/mocks"
)

type MaintenanceServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    repository.CardRepository
	backups repository.BackupStore
	service services.MaintenanceService
}

func (s *MaintenanceServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	database := testutil.NewTestDB(s.T())
	s.repo = rowstore.NewCardRepository(database.DB, rowstore.WithBatchSize(2))
	s.backups = testutil.NewBackupStore(s.T())
	s.service = services.NewMaintenanceService(s.repo, s.backups, nil)
}

func TestMaintenanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceServiceTestSuite))
}

func (s *MaintenanceServiceTestSuite) seed(category string, n int) {
	for i := 1; i <= n; i++ {
		_, err := s.repo.Insert(s.ctx, models.CardInput{
			Category: category,
			Front:    fmt.Sprintf("%s front %d", category, i),
			Back:     fmt.Sprintf("%s back %d", category, i),
		})
		s.Require().NoError(err)
	}
}

func (s *MaintenanceServiceTestSuite) counts() map[string]int {
	counts, err := s.service.Categories(s.ctx)
	s.Require().NoError(err)
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.Category] = c.Count
	}
	return out
}

func (s *MaintenanceServiceTestSuite) TestBackupNow_UploadsEveryCard() {
	s.seed("A", 3)

	name, err := s.service.BackupNow(s.ctx)
	s.Require().NoError(err)
	s.True(strings.HasPrefix(name, "cards-manual-"))

	names, err := s.service.ListBackups(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{name}, names)

	data, err := s.backups.Download(s.ctx, name)
	s.Require().NoError(err)
	decoded, err := backup.Decode(data)
	s.Require().NoError(err)
	s.Len(decoded.Cards, 3)
}

func (s *MaintenanceServiceTestSuite) TestRestore_IntoEmptyStore() {
	s.seed("A", 5)
	original, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	name, err := s.service.BackupNow(s.ctx)
	s.Require().NoError(err)

	_, err = s.repo.DeleteByIDs(s.ctx, []string{original[0].ID, original[1].ID, original[2].ID, original[3].ID, original[4].ID})
	s.Require().NoError(err)

	report, err := s.service.Restore(s.ctx, name)
	s.Require().NoError(err)
	s.Equal(5, report.Restored)
	s.Zero(report.Deleted)
	s.Zero(report.Skipped)
	s.NotEmpty(report.SafetyBackup)

	restored, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(restored, 5)
	for i := range original {
		s.Equal(original[i].ID, restored[i].ID)
		s.Equal(original[i].Category, restored[i].Category)
		s.Equal(original[i].Front, restored[i].Front)
		s.Equal(original[i].Back, restored[i].Back)
	}
}

func (s *MaintenanceServiceTestSuite) TestRestore_ReplacesCurrentCards() {
	s.seed("A", 2)
	name, err := s.service.BackupNow(s.ctx)
	s.Require().NoError(err)
	s.seed("B", 3)

	report, err := s.service.Restore(s.ctx, name)
	s.Require().NoError(err)
	s.Equal(int64(5), report.Deleted)
	s.Equal(2, report.Restored)
	s.Equal(map[string]int{"A": 2}, s.counts())

	safety, err := s.backups.Download(s.ctx, report.SafetyBackup)
	s.Require().NoError(err)
	decoded, err := backup.Decode(safety)
	s.Require().NoError(err)
	s.Len(decoded.Cards, 5, "the safety backup holds the cards before the restore")
}

func (s *MaintenanceServiceTestSuite) TestRestore_NoValidRecordsLeavesStoreUntouched() {
	s.seed("A", 2)
	bad := "cards-manual-20260101T000000.000000000Z.json"
	s.Require().NoError(s.backups.Upload(s.ctx, bad, []byte(`[{"front": "f"}, {"category": "A", "back": "b"}]`), backup.ContentType))

	_, err := s.service.Restore(s.ctx, bad)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeValidation))

	s.Equal(map[string]int{"A": 2}, s.counts())
	names, err := s.service.ListBackups(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{bad}, names, "no safety backup is taken for a rejected restore")
}

func (s *MaintenanceServiceTestSuite) TestRestore_SkipsMalformedRecords() {
	name := "cards-manual-20260101T000000.000000000Z.json"
	s.Require().NoError(s.backups.Upload(s.ctx, name, []byte(`[
		{"id": 1, "category": "A", "front": "one", "back": "1", "wrong_count": 3},
		{"category": "A", "front": "two"},
		{"id": 1, "category": "A", "front": "three", "back": "3", "wrong_count": "x"}
	]`), backup.ContentType))

	report, err := s.service.Restore(s.ctx, name)
	s.Require().NoError(err)
	s.Equal(2, report.Restored)
	s.Equal(1, report.Skipped)

	cards, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Equal("1", cards[0].ID)
	s.Equal(3, cards[0].WrongCount)
	s.NotEqual("1", cards[1].ID)
	s.NotEmpty(cards[1].ID)
	s.Zero(cards[1].WrongCount)
	s.Equal("three", cards[1].Front)
}

func (s *MaintenanceServiceTestSuite) TestRestore_UnknownBackup() {
	_, err := s.service.Restore(s.ctx, "cards-manual-missing.json")
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))
}

func (s *MaintenanceServiceTestSuite) TestRenameCategory_MergesIntoExisting() {
	s.seed("A", 3)
	s.seed("B", 2)

	report, err := s.service.RenameCategory(s.ctx, "A", " B ")
	s.Require().NoError(err)
	s.Equal(int64(3), report.Moved)
	s.True(report.Merged)
	s.Equal(map[string]int{"B": 5}, s.counts())
}

func (s *MaintenanceServiceTestSuite) TestRenameCategory_SameNameIsNoop() {
	s.seed("A", 3)
	s.seed("B", 2)

	report, err := s.service.RenameCategory(s.ctx, "A", "A")
	s.Require().NoError(err)
	s.Zero(report.Moved)
	s.Equal(map[string]int{"A": 3, "B": 2}, s.counts())

	names, err := s.service.ListBackups(s.ctx)
	s.Require().NoError(err)
	s.Empty(names)
}

func (s *MaintenanceServiceTestSuite) TestRenameCategory_Validation() {
	s.seed("A", 1)

	_, err := s.service.RenameCategory(s.ctx, "A", "  ")
	s.True(errors.HasCode(err, errors.ErrCodeValidation))
	_, err = s.service.RenameCategory(s.ctx, "", "B")
	s.True(errors.HasCode(err, errors.ErrCodeValidation))
	_, err = s.service.RenameCategory(s.ctx, "Z", "B")
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))
	s.Equal(map[string]int{"A": 1}, s.counts())
}

func (s *MaintenanceServiceTestSuite) TestDeleteCategory_RequiresConfirmation() {
	s.seed("A", 2)
	s.seed("B", 1)

	tests := []struct {
		name    string
		confirm services.Confirmation
	}{
		{name: "not acknowledged", confirm: services.Confirmation{Phrase: "DELETE A"}},
		{name: "wrong phrase", confirm: services.Confirmation{Acknowledged: true, Phrase: "delete A"}},
		{name: "phrase for another category", confirm: services.Confirmation{Acknowledged: true, Phrase: "DELETE B"}},
		{name: "empty", confirm: services.Confirmation{}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.DeleteCategory(s.ctx, "A", tt.confirm)
			s.True(errors.HasCode(err, errors.ErrCodeValidation))
		})
	}
	s.Equal(map[string]int{"A": 2, "B": 1}, s.counts())

	report, err := s.service.DeleteCategory(s.ctx, "A", services.Confirmation{Acknowledged: true, Phrase: services.ConfirmationPhrase("A")})
	s.Require().NoError(err)
	s.Equal(int64(2), report.Deleted)
	s.NotEmpty(report.SafetyBackup)
	s.Equal(map[string]int{"B": 1}, s.counts())
}

func TestMaintenanceService_RestoreFailureReportsProgress(t *testing.T) {
	ctx := context.Background()
	current := makeCards("A", 3)
	data, err := backup.Encode(makeCards("B", 2))
	require.NoError(t, err)

	repo := new(mocks.MockCardRepository)
	backups := new(mocks.MockBackupStore)
	repo.On("List", mock.Anything).Return(current, nil)
	repo.On("DeleteByIDs", mock.Anything, []string{"A-1", "A-2", "A-3"}).Return(int64(3), nil)
	repo.On("BulkInsert", mock.Anything, mock.Anything).Return(1, stderrors.New("statement too large"))
	backups.On("Download", mock.Anything, "cards-manual-x.json").Return(data, nil)
	backups.On("Upload", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "cards-safety-")
	}), mock.Anything, backup.ContentType).Return(nil)

	service := services.NewMaintenanceService(repo, backups, nil)
	report, err := service.Restore(ctx, "cards-manual-x.json")

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeWrite))
	assert.Contains(t, err.Error(), "deleted 3 of 3, restored 1 of 2")
	assert.Contains(t, err.Error(), report.SafetyBackup)
	assert.Equal(t, 1, report.Restored)
	repo.AssertExpectations(t)
	backups.AssertExpectations(t)
}

func TestMaintenanceService_SafetyBackupFailureDoesNotBlockDelete(t *testing.T) {
	ctx := context.Background()

	repo := new(mocks.MockCardRepository)
	backups := new(mocks.MockBackupStore)
	auditor := new(mocks.MockAuditor)
	repo.On("List", mock.Anything).Return(makeCards("A", 2), nil)
	repo.On("DeleteByCategory", mock.Anything, "A").Return(int64(2), nil)
	backups.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(stderrors.New("disk full"))
	auditor.On("Audit", mock.Anything, "delete_category").Return(nil)

	service := services.NewMaintenanceService(repo, backups, auditor)
	report, err := service.DeleteCategory(ctx, "A", services.Confirmation{Acknowledged: true, Phrase: "DELETE A"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Deleted)
	assert.Empty(t, report.SafetyBackup)
	assert.Equal(t, []string{"safety backup failed"}, report.Warnings)
	auditor.AssertExpectations(t)
}

func TestMaintenanceService_StoreUnreachable(t *testing.T) {
	ctx := context.Background()

	repo := new(mocks.MockCardRepository)
	backups := new(mocks.MockBackupStore)
	repo.On("List", mock.Anything).Return(nil, stderrors.New("dial tcp: refused"))
	repo.On("CategoryCounts", mock.Anything).Return(nil, stderrors.New("dial tcp: refused"))

	service := services.NewMaintenanceService(repo, backups, nil)

	_, err := service.BackupNow(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConnectivity))
	_, err = service.RenameCategory(ctx, "A", "B")
	assert.True(t, errors.HasCode(err, errors.ErrCodeConnectivity))
	_, err = service.Categories(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConnectivity))

	repo.AssertNotCalled(t, "UpdateCategory", mock.Anything, mock.Anything, mock.Anything)
	backups.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
