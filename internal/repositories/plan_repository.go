package repositories

import (
	"errors"

	"recruitportal_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPlanNotFound = errors.New("plan not found")

type PlanRepository interface {
	Create(db *gorm.DB, plan *models.Plan) error
	FindByID(db *gorm.DB, id string) (*models.Plan, error)
	FindByTitle(db *gorm.DB, title string) (*models.Plan, error)
	FindAll(db *gorm.DB, activeOnly bool) ([]models.Plan, error)
	Update(db *gorm.DB, plan *models.Plan) error
}

type PlanRepositoryImpl struct{}

func NewPlanRepository() PlanRepository {
	return &PlanRepositoryImpl{}
}

func (r *PlanRepositoryImpl) Create(db *gorm.DB, plan *models.Plan) error {
	return db.Create(plan).Error
}

func (r *PlanRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Plan, error) {
	var plan models.Plan
	if err := db.First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepositoryImpl) FindByTitle(db *gorm.DB, title string) (*models.Plan, error) {
	var plan models.Plan
	if err := db.First(&plan, "title = ?", title).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepositoryImpl) FindAll(db *gorm.DB, activeOnly bool) ([]models.Plan, error) {
	var plans []models.Plan
	query := db.Order("sort_order ASC").Order("title ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&plans).Error
	return plans, err
}

func (r *PlanRepositoryImpl) Update(db *gorm.DB, plan *models.Plan) error {
	return db.Save(plan).Error
}
