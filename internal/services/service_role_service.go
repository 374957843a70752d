package services

import (
	"context"
	"errors"
	"strings"

	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/repositories"
	"recruitportal_backend/pkg/apperrors"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// RoleModel - указатель на модель роли, реализующий общий протокол
type RoleModel[T any] interface {
	*T
	models.ServiceRole
}

// ServiceRoleService - операции над ролями одной услуги.
// Пустой userID означает административный доступ без проверки владельца.
type ServiceRoleService[T any, C any, U any] interface {
	ServiceTag() models.ServiceTag
	Create(ctx context.Context, db *gorm.DB, userID string, req *C) (*T, error)
	Get(ctx context.Context, db *gorm.DB, userID, roleID string) (*T, error)
	List(ctx context.Context, db *gorm.DB, userID string, includeDeleted bool) ([]T, error)
	Update(ctx context.Context, db *gorm.DB, userID, roleID string, req *U) (*T, error)
	SoftDelete(ctx context.Context, db *gorm.DB, userID, roleID string) error
	Restore(ctx context.Context, db *gorm.DB, userID, roleID string) (*T, error)
	HardDelete(ctx context.Context, db *gorm.DB, userID, roleID string) error
	UpdateCandidateCounts(ctx context.Context, db *gorm.DB, userID, roleID string, counts map[string]int) (*T, error)
	AddResult(ctx context.Context, db *gorm.DB, userID, roleID string, deltas map[string]int) (*T, error)
	AllRoles(ctx context.Context, db *gorm.DB) ([]models.ServiceRole, error)
	LookupRole(ctx context.Context, tx *gorm.DB, roleID string) (models.ServiceRole, error)
}

type roleService[T any, PT RoleModel[T], C any, U any] struct {
	tag        models.ServiceTag
	repo       *repositories.ServiceRoleRepository[T]
	index      RoleIndexService
	gatekeeper CreditGatekeeper
	build      func(userID string, req *C) (PT, error)
	patch      func(role PT, req *U) error
}

func newRoleService[T any, PT RoleModel[T], C any, U any](
	tag models.ServiceTag,
	index RoleIndexService,
	gatekeeper CreditGatekeeper,
	build func(userID string, req *C) (PT, error),
	patch func(role PT, req *U) error,
) *roleService[T, PT, C, U] {
	return &roleService[T, PT, C, U]{
		tag:        tag,
		repo:       repositories.NewServiceRoleRepository[T](),
		index:      index,
		gatekeeper: gatekeeper,
		build:      build,
		patch:      patch,
	}
}

func (s *roleService[T, PT, C, U]) ServiceTag() models.ServiceTag {
	return s.tag
}

// Create: сначала проверка данных, потом кредит, потом роль и строка индекса в одной транзакции
func (s *roleService[T, PT, C, U]) Create(ctx context.Context, db *gorm.DB, userID string, req *C) (*T, error) {
	ctx = logger.WithOperation(ctx, "create_role")

	role, err := s.build(userID, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(role.GetTitle()) == "" {
		return nil, apperrors.ValidationError(map[string]string{"title": "This field is required"})
	}
	role.RecalculateTotals()

	roleID, err := s.gatekeeper.WithCredit(ctx, db, userID, s.tag, role.GetTitle(), func(tx *gorm.DB) (string, error) {
		if err := s.repo.Create(tx, (*T)(role)); err != nil {
			return "", apperrors.DatabaseError(err)
		}
		if _, err := s.index.CreateEntry(ctx, tx, userID, s.tag, role.GetID()); err != nil {
			return "", err
		}
		return role.GetID(), nil
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Role created", "service", s.tag.DisplayName(), "role_id", roleID)
	return s.find(db.WithContext(ctx), roleID, false)
}

func (s *roleService[T, PT, C, U]) Get(ctx context.Context, db *gorm.DB, userID, roleID string) (*T, error) {
	role, err := s.find(db.WithContext(ctx), roleID, false)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(PT(role), userID); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService[T, PT, C, U]) List(ctx context.Context, db *gorm.DB, userID string, includeDeleted bool) ([]T, error) {
	roles, err := s.repo.ListByUser(db.WithContext(ctx), userID, includeDeleted)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return roles, nil
}

func (s *roleService[T, PT, C, U]) Update(ctx context.Context, db *gorm.DB, userID, roleID string, req *U) (*T, error) {
	return s.mutate(ctx, db, userID, roleID, func(role PT) error {
		return s.patch(role, req)
	})
}

func (s *roleService[T, PT, C, U]) UpdateCandidateCounts(ctx context.Context, db *gorm.DB, userID, roleID string, counts map[string]int) (*T, error) {
	return s.mutate(ctx, db, userID, roleID, func(role PT) error {
		return mapCounterError(models.ApplyCounts(role, counts))
	})
}

func (s *roleService[T, PT, C, U]) AddResult(ctx context.Context, db *gorm.DB, userID, roleID string, deltas map[string]int) (*T, error) {
	return s.mutate(ctx, db, userID, roleID, func(role PT) error {
		return mapCounterError(models.AddCounts(role, deltas))
	})
}

// mutate - чтение с блокировкой строки, изменение и сохранение в одной транзакции
func (s *roleService[T, PT, C, U]) mutate(ctx context.Context, db *gorm.DB, userID, roleID string, change func(role PT) error) (*T, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	found, err := s.repo.FindByIDForUpdate(tx, roleID)
	if err != nil {
		return nil, handleRoleError(err)
	}
	role := PT(found)
	if err := checkOwner(role, userID); err != nil {
		return nil, err
	}

	if err := change(role); err != nil {
		return nil, err
	}
	role.RecalculateTotals()

	if err := s.repo.Save(tx, found); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return found, nil
}

func (s *roleService[T, PT, C, U]) SoftDelete(ctx context.Context, db *gorm.DB, userID, roleID string) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	found, err := s.repo.FindByIDForUpdate(tx, roleID)
	if err != nil {
		return handleRoleError(err)
	}
	if err := checkOwner(PT(found), userID); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(tx, roleID); err != nil {
		return apperrors.DatabaseError(err)
	}
	if err := s.index.DeletePair(ctx, tx, s.tag, roleID); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	logger.CtxInfo(ctx, "Role deleted", "service", s.tag.DisplayName(), "role_id", roleID)
	return nil
}

func (s *roleService[T, PT, C, U]) Restore(ctx context.Context, db *gorm.DB, userID, roleID string) (*T, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	found, err := s.find(tx, roleID, true)
	if err != nil {
		return nil, err
	}
	role := PT(found)
	if err := checkOwner(role, userID); err != nil {
		return nil, err
	}

	if role.IsDeleted() {
		if err := s.repo.Restore(tx, roleID); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		if found, err = s.find(tx, roleID, false); err != nil {
			return nil, err
		}
	}
	if err := s.index.RestorePair(ctx, tx, PT(found)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	logger.CtxInfo(ctx, "Role restored", "service", s.tag.DisplayName(), "role_id", roleID)
	return found, nil
}

// HardDelete: строка индекса удаляется раньше роли
func (s *roleService[T, PT, C, U]) HardDelete(ctx context.Context, db *gorm.DB, userID, roleID string) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	found, err := s.find(tx, roleID, true)
	if err != nil {
		return err
	}
	if err := checkOwner(PT(found), userID); err != nil {
		return err
	}

	if err := s.index.PurgePair(ctx, tx, s.tag, roleID); err != nil {
		return err
	}
	if err := s.repo.HardDelete(tx, roleID); err != nil {
		return apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	logger.CtxInfo(ctx, "Role purged", "service", s.tag.DisplayName(), "role_id", roleID)
	return nil
}

func (s *roleService[T, PT, C, U]) AllRoles(ctx context.Context, db *gorm.DB) ([]models.ServiceRole, error) {
	roles, err := s.repo.ListAll(db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(roles, func(_ T, i int) models.ServiceRole {
		return PT(&roles[i])
	}), nil
}

// LookupRole перечитывает роль внутри транзакции сверки, включая мягко удаленную.
// nil без ошибки - строки роли больше нет.
func (s *roleService[T, PT, C, U]) LookupRole(ctx context.Context, tx *gorm.DB, roleID string) (models.ServiceRole, error) {
	role, err := s.repo.FindAnyForUpdate(tx.WithContext(ctx), roleID)
	if errors.Is(err, repositories.ErrServiceRoleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return PT(role), nil
}

func (s *roleService[T, PT, C, U]) find(db *gorm.DB, roleID string, includeDeleted bool) (*T, error) {
	role, err := s.repo.FindByID(db, roleID, includeDeleted)
	if err != nil {
		return nil, handleRoleError(err)
	}
	return role, nil
}

// Чужая роль неотличима от несуществующей
func checkOwner(role models.ServiceRole, userID string) error {
	if userID != "" && role.GetUserID() != userID {
		return apperrors.ErrRoleNotFound
	}
	return nil
}

func handleRoleError(err error) error {
	if errors.Is(err, repositories.ErrServiceRoleNotFound) {
		return apperrors.ErrRoleNotFound
	}
	return apperrors.DatabaseError(err)
}

func mapCounterError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrUnknownCounter):
		return apperrors.ErrUnknownCounter.WithError(err)
	case errors.Is(err, models.ErrNegativeCounter):
		return apperrors.ValidationError(map[string]string{"counts": err.Error()})
	default:
		return apperrors.InternalError(err)
	}
}
