package repositories

import (
	"errors"

	"recruitportal_backend/database"
	"recruitportal_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRoleIndexEntryNotFound = errors.New("role index entry not found")

// RoleIndexRepository - таблица roles. Поиск по роли всегда идет с Unscoped,
// чтобы находить и мягко удаленные записи.
type RoleIndexRepository interface {
	Create(db *gorm.DB, entry *models.RoleIndexEntry) error
	FindByRole(db *gorm.DB, tag models.ServiceTag, roleID string) (*models.RoleIndexEntry, error)
	FindAnyForUser(db *gorm.DB, userID string, tag models.ServiceTag) (*models.RoleIndexEntry, error)
	MaxClientNo(db *gorm.DB, tag models.ServiceTag) (int, error)
	SoftDelete(db *gorm.DB, id string) error
	Restore(db *gorm.DB, id string) error
	HardDelete(db *gorm.DB, id string) error
	ListForUser(db *gorm.DB, userID string, includeDeleted bool) ([]models.RoleIndexEntry, error)
	ListByService(db *gorm.DB, tag models.ServiceTag, includeDeleted bool) ([]models.RoleIndexEntry, error)
}

type RoleIndexRepositoryImpl struct{}

func NewRoleIndexRepository() RoleIndexRepository {
	return &RoleIndexRepositoryImpl{}
}

func (r *RoleIndexRepositoryImpl) Create(db *gorm.DB, entry *models.RoleIndexEntry) error {
	return db.Create(entry).Error
}

func (r *RoleIndexRepositoryImpl) FindByRole(db *gorm.DB, tag models.ServiceTag, roleID string) (*models.RoleIndexEntry, error) {
	if !tag.IsValid() {
		return nil, ErrRoleIndexEntryNotFound
	}
	var entry models.RoleIndexEntry
	err := db.Unscoped().
		Where("service_tag = ?", tag).
		Where(tag.RoleFKColumn()+" = ?", roleID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleIndexEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAnyForUser - любая запись пары (пользователь, услуга), включая удаленные.
// Используется для повторного использования clientNo.
func (r *RoleIndexRepositoryImpl) FindAnyForUser(db *gorm.DB, userID string, tag models.ServiceTag) (*models.RoleIndexEntry, error) {
	var entry models.RoleIndexEntry
	err := db.Unscoped().
		Where("user_id = ? AND service_tag = ?", userID, tag).
		Order("created_at ASC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleIndexEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// MaxClientNo - наибольший выданный номер клиента по услуге, 0 если номеров нет.
// На MySQL FOR UPDATE держит next-key lock по индексу (service_tag, client_no),
// на Postgres вызывающий дополнительно берет advisory-блокировку.
func (r *RoleIndexRepositoryImpl) MaxClientNo(db *gorm.DB, tag models.ServiceTag) (int, error) {
	var entry models.RoleIndexEntry
	err := database.ForUpdate(db.Unscoped()).
		Where("service_tag = ?", tag).
		Order("client_no DESC").
		Limit(1).
		Find(&entry).Error
	if err != nil {
		return 0, err
	}
	return entry.ClientNo, nil
}

func (r *RoleIndexRepositoryImpl) SoftDelete(db *gorm.DB, id string) error {
	return db.Delete(&models.RoleIndexEntry{}, "id = ?", id).Error
}

// Restore снимает отметку удаления, не трогая updated_at
func (r *RoleIndexRepositoryImpl) Restore(db *gorm.DB, id string) error {
	return db.Unscoped().Model(&models.RoleIndexEntry{}).
		Where("id = ?", id).
		UpdateColumn("deleted_at", nil).Error
}

func (r *RoleIndexRepositoryImpl) HardDelete(db *gorm.DB, id string) error {
	return db.Unscoped().Delete(&models.RoleIndexEntry{}, "id = ?", id).Error
}

func (r *RoleIndexRepositoryImpl) ListForUser(db *gorm.DB, userID string, includeDeleted bool) ([]models.RoleIndexEntry, error) {
	var entries []models.RoleIndexEntry
	query := db
	if includeDeleted {
		query = query.Unscoped()
	}
	err := query.Where("user_id = ?", userID).
		Order("service_tag ASC").Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *RoleIndexRepositoryImpl) ListByService(db *gorm.DB, tag models.ServiceTag, includeDeleted bool) ([]models.RoleIndexEntry, error) {
	var entries []models.RoleIndexEntry
	query := db
	if includeDeleted {
		query = query.Unscoped()
	}
	err := query.Where("service_tag = ?", tag).
		Order("client_no ASC").Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
