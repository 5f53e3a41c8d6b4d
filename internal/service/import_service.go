package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/supplenze/supplenze-api/internal/models"
	"github.com/supplenze/supplenze-api/internal/repository"
	"github.com/supplenze/supplenze-api/internal/timetable"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
	"github.com/supplenze/supplenze-api/pkg/jobs"
	"github.com/supplenze/supplenze-api/pkg/storage"
)

type importRepository interface {
	RunImport(ctx context.Context, userID string, batch repository.ImportBatch) (string, error)
	List(ctx context.Context, userID string) ([]models.Import, error)
	FindByID(ctx context.Context, id, userID string) (*models.Import, error)
	UpdateWindow(ctx context.Context, id, userID string, begin, end *time.Time) (int64, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
}

type fileArchive interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// ImportResult summarizes one import call for the caller. DryRun results
// report what would have been written.
type ImportResult struct {
	ImportID       string            `json:"import_id"`
	Mode           models.ImportMode `json:"mode"`
	Lessons        int               `json:"lessons"`
	Availabilities int               `json:"availabilities"`
	Rooms          int               `json:"rooms"`
	Groups         int               `json:"groups"`
	Teachers       int               `json:"teachers"`
}

// ImportService runs the full timetable ingestion pipeline: parse,
// normalize, dedupe, then the ordered transactional write.
type ImportService struct {
	repo      importRepository
	archive   fileArchive
	signer    *storage.SignedURLSigner
	cache     *CacheService
	metrics   *MetricsService
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
}

// NewImportService constructs an ImportService. Archive, signer, cache,
// metrics and queue are optional collaborators.
func NewImportService(repo importRepository, archive fileArchive, signer *storage.SignedURLSigner, cache *CacheService, metrics *MetricsService, queue *jobs.Queue, validate *validator.Validate, logger *zap.Logger) *ImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{repo: repo, archive: archive, signer: signer, cache: cache, metrics: metrics, queue: queue, validator: validate, logger: logger}
}

// ImportFile ingests one raw timetable export for the user. Every step
// runs in both modes; a dry run validates the full write path and rolls
// back, a write commits. A single malformed record aborts the whole
// call with nothing persisted.
func (s *ImportService) ImportFile(ctx context.Context, userID string, meta models.ImportMeta, payload []byte) (*ImportResult, error) {
	start := time.Now()
	if meta.Mode == "" {
		meta.Mode = models.ImportModeDryRun
	}
	if !meta.Mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown import mode %q", meta.Mode))
	}
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import metadata")
	}
	if !meta.EndTS.After(meta.BeginTS) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "validity window end must be after begin")
	}

	file, err := timetable.ParseScheduleFile(payload)
	if err != nil {
		s.metrics.RecordImport(meta.Mode, "parse_error", time.Since(start))
		return nil, err
	}

	batch, err := timetable.Normalize(file.Records)
	if err != nil {
		s.metrics.RecordImport(meta.Mode, "invalid", time.Since(start))
		return nil, err
	}
	entities := timetable.Dedupe(file.Records)

	hash := sha256.Sum256(payload)
	importID, err := s.repo.RunImport(ctx, userID, repository.ImportBatch{
		Meta:     meta,
		FileHash: hex.EncodeToString(hash[:]),
		Entities: entities,
		Records:  batch,
	})
	if err != nil {
		s.metrics.RecordImport(meta.Mode, "failed", time.Since(start))
		return nil, err
	}
	s.metrics.RecordImport(meta.Mode, "ok", time.Since(start))

	if meta.Mode == models.ImportModeWrite {
		s.afterCommit(ctx, userID, importID, meta.FileName, payload)
	}

	return &ImportResult{
		ImportID:       importID,
		Mode:           meta.Mode,
		Lessons:        len(batch.Lessons),
		Availabilities: len(batch.Availabilities),
		Rooms:          len(entities.Rooms),
		Groups:         len(entities.Groups),
		Teachers:       len(entities.Teachers),
	}, nil
}

// afterCommit archives the raw upload, drops stale cached views and
// schedules a dashboard refresh. Failures here are logged, not
// surfaced: the import itself already committed.
func (s *ImportService) afterCommit(ctx context.Context, userID, importID, fileName string, payload []byte) {
	if s.archive != nil {
		if _, err := s.archive.Save(archivePath(userID, importID), payload); err != nil {
			s.logger.Warn("failed to archive import file",
				zap.String("import_id", importID), zap.String("file_name", fileName), zap.Error(err))
		}
	}
	if err := s.cache.Invalidate(ctx, userCachePattern(userID)); err != nil {
		s.logger.Warn("failed to invalidate cache after import", zap.String("user_id", userID), zap.Error(err))
	}
	if s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{Type: "dashboard_refresh", Payload: userID}); err != nil {
			s.logger.Warn("failed to enqueue dashboard refresh", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// List returns the caller's import batches.
func (s *ImportService) List(ctx context.Context, userID string) ([]models.Import, error) {
	imports, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list imports")
	}
	return imports, nil
}

// UpdateWindowRequest patches an import's validity window.
type UpdateWindowRequest struct {
	BeginTS *time.Time `json:"begin_ts"`
	EndTS   *time.Time `json:"end_ts"`
}

// UpdateWindow modifies the validity window of an owned import.
func (s *ImportService) UpdateWindow(ctx context.Context, userID, importID string, req UpdateWindowRequest) error {
	if req.BeginTS == nil && req.EndTS == nil {
		return appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	affected, err := s.repo.UpdateWindow(ctx, importID, userID, req.BeginTS, req.EndTS)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update import")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "import not found")
	}
	if err := s.cache.Invalidate(ctx, userCachePattern(userID)); err != nil {
		s.logger.Warn("failed to invalidate cache after window update", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// Delete removes an owned import; the store cascades to every scoped
// entity.
func (s *ImportService) Delete(ctx context.Context, userID, importID string) error {
	affected, err := s.repo.Delete(ctx, importID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete import")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "import not found")
	}
	if s.archive != nil {
		if err := s.archive.Delete(archivePath(userID, importID)); err != nil {
			s.logger.Warn("failed to delete archived import file", zap.String("import_id", importID), zap.Error(err))
		}
	}
	if err := s.cache.Invalidate(ctx, userCachePattern(userID)); err != nil {
		s.logger.Warn("failed to invalidate cache after delete", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// ArchiveLink is a signed, expiring reference to an archived upload.
type ArchiveLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignArchiveLink issues a signed download token for an owned import's
// archived document.
func (s *ImportService) SignArchiveLink(ctx context.Context, userID, importID string) (*ArchiveLink, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "archive is disabled")
	}
	if _, err := s.repo.FindByID(ctx, importID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "import not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import")
	}

	token, expiresAt, err := s.signer.Generate(importID, archivePath(userID, importID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign archive link")
	}
	return &ArchiveLink{Token: token, ExpiresAt: expiresAt}, nil
}

// OpenArchive validates a signed token and opens the referenced file.
func (s *ImportService) OpenArchive(token string) (*os.File, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "archive is disabled")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid archive token")
	}
	file, err := s.archive.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "archived file not found")
	}
	return file, nil
}

func archivePath(userID, importID string) string {
	return fmt.Sprintf("%s/%s.xml", userID, importID)
}

func userCachePattern(userID string) string {
	return fmt.Sprintf("supplenze:%s:*", userID)
}
