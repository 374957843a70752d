package repositories

import (
	"errors"

	"recruitportal_backend/database"

	"gorm.io/gorm"
)

var ErrServiceRoleNotFound = errors.New("service role not found")

// ServiceRoleRepository - общий репозиторий для ролей всех четырех услуг.
// T - модель роли (CvSourcingRole, DirectRole, ...).
type ServiceRoleRepository[T any] struct{}

func NewServiceRoleRepository[T any]() *ServiceRoleRepository[T] {
	return &ServiceRoleRepository[T]{}
}

func (r *ServiceRoleRepository[T]) Create(db *gorm.DB, role *T) error {
	return db.Create(role).Error
}

// FindByID ищет живую роль, а с includeDeleted - и мягко удаленную
func (r *ServiceRoleRepository[T]) FindByID(db *gorm.DB, id string, includeDeleted bool) (*T, error) {
	var role T
	query := db
	if includeDeleted {
		query = query.Unscoped()
	}
	if err := query.First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindByIDForUpdate - живая роль с блокировкой строки до конца транзакции
func (r *ServiceRoleRepository[T]) FindByIDForUpdate(db *gorm.DB, id string) (*T, error) {
	return r.FindByID(database.ForUpdate(db), id, false)
}

// FindAnyForUpdate - роль в любом состоянии удаления, строка заблокирована
func (r *ServiceRoleRepository[T]) FindAnyForUpdate(db *gorm.DB, id string) (*T, error) {
	return r.FindByID(database.ForUpdate(db), id, true)
}

func (r *ServiceRoleRepository[T]) ListByUser(db *gorm.DB, userID string, includeDeleted bool) ([]T, error) {
	var roles []T
	query := db
	if includeDeleted {
		query = query.Unscoped()
	}
	err := query.Where("user_id = ?", userID).Order("created_at DESC").Find(&roles).Error
	return roles, err
}

// ListAll - все роли, включая удаленные (для сверки индекса)
func (r *ServiceRoleRepository[T]) ListAll(db *gorm.DB) ([]T, error) {
	var roles []T
	err := db.Unscoped().Order("created_at ASC").Find(&roles).Error
	return roles, err
}

func (r *ServiceRoleRepository[T]) Save(db *gorm.DB, role *T) error {
	return db.Save(role).Error
}

func (r *ServiceRoleRepository[T]) SoftDelete(db *gorm.DB, id string) error {
	return db.Delete(new(T), "id = ?", id).Error
}

// Restore снимает отметку удаления, не трогая updated_at
func (r *ServiceRoleRepository[T]) Restore(db *gorm.DB, id string) error {
	return db.Unscoped().Model(new(T)).
		Where("id = ?", id).
		UpdateColumn("deleted_at", nil).Error
}

func (r *ServiceRoleRepository[T]) HardDelete(db *gorm.DB, id string) error {
	return db.Unscoped().Delete(new(T), "id = ?", id).Error
}
