package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"recruitportal_backend/database"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/repositories"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// RoleSource - роли одной услуги для прохода сверки индекса
type RoleSource interface {
	ServiceTag() models.ServiceTag
	AllRoles(ctx context.Context, db *gorm.DB) ([]models.ServiceRole, error)
	LookupRole(ctx context.Context, tx *gorm.DB, roleID string) (models.ServiceRole, error)
}

// RoleIndexService - общая таблица roles поверх ролей всех услуг.
// Парные операции вызываются внутри транзакции, меняющей саму роль.
type RoleIndexService interface {
	CreateEntry(ctx context.Context, tx *gorm.DB, userID string, tag models.ServiceTag, roleID string) (*models.RoleIndexEntry, error)
	DeletePair(ctx context.Context, tx *gorm.DB, tag models.ServiceTag, roleID string) error
	RestorePair(ctx context.Context, tx *gorm.DB, role models.ServiceRole) error
	PurgePair(ctx context.Context, tx *gorm.DB, tag models.ServiceTag, roleID string) error

	ListForUser(ctx context.Context, db *gorm.DB, userID string, includeDeleted bool) ([]dto.RoleIndexEntryResponse, error)
	ListByService(ctx context.Context, db *gorm.DB, tag models.ServiceTag, includeDeleted bool) ([]dto.RoleIndexEntryResponse, error)
	Reconcile(ctx context.Context, db *gorm.DB, sources []RoleSource) (*dto.IndexReconcileReport, error)
}

type roleIndexService struct {
	indexRepo   repositories.RoleIndexRepository
	lockTimeout time.Duration
}

func NewRoleIndexService(indexRepo repositories.RoleIndexRepository, lockTimeout time.Duration) RoleIndexService {
	return &roleIndexService{
		indexRepo:   indexRepo,
		lockTimeout: lockTimeout,
	}
}

// CreateEntry добавляет строку индекса для новой роли.
// clientNo повторяет номер, уже выданный паре (пользователь, услуга), иначе max+1 по услуге.
func (s *roleIndexService) CreateEntry(ctx context.Context, tx *gorm.DB, userID string, tag models.ServiceTag, roleID string) (*models.RoleIndexEntry, error) {
	if !tag.IsValid() {
		return nil, apperrors.ErrUnknownServiceTag
	}

	clientNo, err := s.allocateClientNo(tx, userID, tag)
	if err != nil {
		return nil, err
	}

	entry := &models.RoleIndexEntry{
		DisplayName: tag.DisplayName(),
		ClientNo:    clientNo,
		ServiceTag:  tag,
		UserID:      userID,
	}
	entry.SetRoleID(tag, roleID)

	if err := s.indexRepo.Create(tx, entry); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxDebug(ctx, "Role index entry created",
		"entry_id", entry.ID,
		"service", entry.DisplayName,
		"client_no", clientNo,
	)
	return entry, nil
}

func (s *roleIndexService) allocateClientNo(tx *gorm.DB, userID string, tag models.ServiceTag) (int, error) {
	if err := database.AdvisoryLock(tx, database.LockScopeClientNo, strconv.Itoa(int(tag)), s.lockTimeout); err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	existing, err := s.indexRepo.FindAnyForUser(tx, userID, tag)
	if err == nil {
		return existing.ClientNo, nil
	}
	if !errors.Is(err, repositories.ErrRoleIndexEntryNotFound) {
		return 0, apperrors.DatabaseError(err)
	}

	maxNo, err := s.indexRepo.MaxClientNo(tx, tag)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return maxNo + 1, nil
}

// DeletePair мягко удаляет строку индекса вместе с ролью.
// Отсутствующая строка не блокирует удаление роли: расхождение чинит сверка.
func (s *roleIndexService) DeletePair(ctx context.Context, tx *gorm.DB, tag models.ServiceTag, roleID string) error {
	entry, err := s.indexRepo.FindByRole(tx, tag, roleID)
	if errors.Is(err, repositories.ErrRoleIndexEntryNotFound) {
		logger.CtxWarn(ctx, "Role index entry missing on delete", "service", tag.DisplayName(), "role_id", roleID)
		return nil
	}
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if entry.IsDeleted() {
		return nil
	}
	if err := s.indexRepo.SoftDelete(tx, entry.ID); err != nil {
		return apperrors.ErrConsistencyGap(err, "Failed to delete role index entry")
	}
	return nil
}

// RestorePair восстанавливает строку индекса, а если ее нет - создает заново
func (s *roleIndexService) RestorePair(ctx context.Context, tx *gorm.DB, role models.ServiceRole) error {
	tag := role.ServiceTag()
	entry, err := s.indexRepo.FindByRole(tx, tag, role.GetID())
	if errors.Is(err, repositories.ErrRoleIndexEntryNotFound) {
		logger.CtxWarn(ctx, "Role index entry missing on restore, recreating", "service", tag.DisplayName(), "role_id", role.GetID())
		_, err := s.CreateEntry(ctx, tx, role.GetUserID(), tag, role.GetID())
		return err
	}
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if !entry.IsDeleted() {
		return nil
	}
	if err := s.indexRepo.Restore(tx, entry.ID); err != nil {
		return apperrors.ErrConsistencyGap(err, "Failed to restore role index entry")
	}
	return nil
}

// PurgePair физически удаляет строку индекса. Вызывается до удаления роли.
func (s *roleIndexService) PurgePair(ctx context.Context, tx *gorm.DB, tag models.ServiceTag, roleID string) error {
	entry, err := s.indexRepo.FindByRole(tx, tag, roleID)
	if errors.Is(err, repositories.ErrRoleIndexEntryNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if err := s.indexRepo.HardDelete(tx, entry.ID); err != nil {
		return apperrors.ErrConsistencyGap(err, "Failed to purge role index entry")
	}
	return nil
}

func (s *roleIndexService) ListForUser(ctx context.Context, db *gorm.DB, userID string, includeDeleted bool) ([]dto.RoleIndexEntryResponse, error) {
	entries, err := s.indexRepo.ListForUser(db.WithContext(ctx), userID, includeDeleted)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(entries, func(e models.RoleIndexEntry, _ int) dto.RoleIndexEntryResponse {
		return buildRoleIndexEntryResponse(&e)
	}), nil
}

func (s *roleIndexService) ListByService(ctx context.Context, db *gorm.DB, tag models.ServiceTag, includeDeleted bool) ([]dto.RoleIndexEntryResponse, error) {
	if !tag.IsValid() {
		return nil, apperrors.ErrUnknownServiceTag
	}
	entries, err := s.indexRepo.ListByService(db.WithContext(ctx), tag, includeDeleted)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(entries, func(e models.RoleIndexEntry, _ int) dto.RoleIndexEntryResponse {
		return buildRoleIndexEntryResponse(&e)
	}), nil
}

// =======================
// Сверка
// =======================

// Reconcile приводит индекс в соответствие с ролями услуг:
// создает недостающие строки, синхронизирует отметку удаления
// и убирает строки, чьи роли удалены физически.
// Строки индекса читаются раньше ролей, а каждое исправление идет в своей транзакции
// и перепроверяет роль: прочитанный список мог устареть.
func (s *roleIndexService) Reconcile(ctx context.Context, db *gorm.DB, sources []RoleSource) (*dto.IndexReconcileReport, error) {
	ctx = logger.WithOperation(ctx, "reconcile_role_index")
	db = db.WithContext(ctx)
	report := &dto.IndexReconcileReport{}

	for _, source := range sources {
		tag := source.ServiceTag()
		entries, err := s.indexRepo.ListByService(db, tag, true)
		if err != nil {
			return report, apperrors.DatabaseError(err)
		}
		roles, err := source.AllRoles(ctx, db)
		if err != nil {
			return report, err
		}

		for _, role := range roles {
			if err := s.reconcileRole(ctx, db, source, role.GetID(), report); err != nil {
				logger.CtxWithError(ctx, "Failed to reconcile role", err, "service", tag.DisplayName(), "role_id", role.GetID())
			}
		}

		known := lo.SliceToMap(roles, func(role models.ServiceRole) (string, struct{}) {
			return role.GetID(), struct{}{}
		})
		for _, entry := range entries {
			if _, ok := known[entry.RoleID()]; ok {
				continue
			}
			if err := s.removeOrphan(ctx, db, source, &entry, report); err != nil {
				logger.CtxWithError(ctx, "Failed to remove orphan index entry", err, "entry_id", entry.ID)
			}
		}
	}

	if report.Created+report.Restored+report.Deleted > 0 {
		logger.CtxInfo(ctx, "Role index reconciled",
			"created", report.Created,
			"restored", report.Restored,
			"deleted", report.Deleted,
		)
	}
	return report, nil
}

func (s *roleIndexService) reconcileRole(ctx context.Context, db *gorm.DB, source RoleSource, roleID string, report *dto.IndexReconcileReport) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	role, err := source.LookupRole(ctx, tx, roleID)
	if err != nil || role == nil {
		// Роль удалена физически после чтения списка, строку убрал PurgePair
		return err
	}
	tag := role.ServiceTag()

	entry, err := s.indexRepo.FindByRole(tx, tag, roleID)
	if err != nil && !errors.Is(err, repositories.ErrRoleIndexEntryNotFound) {
		return err
	}

	var counter *int
	switch {
	case entry == nil:
		created, err := s.CreateEntry(ctx, tx, role.GetUserID(), tag, roleID)
		if err != nil {
			return err
		}
		if role.IsDeleted() {
			if err := s.indexRepo.SoftDelete(tx, created.ID); err != nil {
				return err
			}
		}
		counter = &report.Created
	case role.IsDeleted() && !entry.IsDeleted():
		if err := s.indexRepo.SoftDelete(tx, entry.ID); err != nil {
			return err
		}
		counter = &report.Deleted
	case !role.IsDeleted() && entry.IsDeleted():
		if err := s.indexRepo.Restore(tx, entry.ID); err != nil {
			return err
		}
		counter = &report.Restored
	default:
		return nil
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit index repair: %w", err)
	}
	*counter++
	return nil
}

// removeOrphan удаляет строку индекса, только если ее роли действительно нет
func (s *roleIndexService) removeOrphan(ctx context.Context, db *gorm.DB, source RoleSource, entry *models.RoleIndexEntry, report *dto.IndexReconcileReport) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	role, err := source.LookupRole(ctx, tx, entry.RoleID())
	if err != nil {
		return err
	}
	if role != nil {
		logger.CtxDebug(ctx, "Index entry belongs to a role created after the scan", "entry_id", entry.ID, "role_id", entry.RoleID())
		return nil
	}

	if err := s.indexRepo.HardDelete(tx, entry.ID); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit orphan removal: %w", err)
	}
	report.Deleted++
	return nil
}

func buildRoleIndexEntryResponse(e *models.RoleIndexEntry) dto.RoleIndexEntryResponse {
	return dto.RoleIndexEntryResponse{
		ID:          e.ID,
		DisplayName: e.DisplayName,
		ClientNo:    e.ClientNo,
		ServiceTag:  e.ServiceTag,
		UserID:      e.UserID,
		RoleID:      e.RoleID(),
		IsDeleted:   e.IsDeleted(),
	}
}
