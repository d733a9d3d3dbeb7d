package repository

import (
	"context"

	"gorm.io/gorm"

	"medexpenses/internal/models"
)

// LookupRepository reads the immutable reference tables.
type LookupRepository interface {
	Regions(ctx context.Context) ([]models.Region, error)
	Sexes(ctx context.Context) ([]models.Sex, error)
	Smokers(ctx context.Context) ([]models.Smoker, error)
	Roles(ctx context.Context) ([]models.UserRole, error)
	RegionExists(ctx context.Context, id uint) (bool, error)
	SexExists(ctx context.Context, id uint) (bool, error)
	SmokerExists(ctx context.Context, id uint) (bool, error)
	RoleExists(ctx context.Context, id uint) (bool, error)
}

type lookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) Regions(ctx context.Context) ([]models.Region, error) {
	var rows []models.Region
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, translate(err, "list regions")
}

func (r *lookupRepository) Sexes(ctx context.Context) ([]models.Sex, error) {
	var rows []models.Sex
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, translate(err, "list sexes")
}

func (r *lookupRepository) Smokers(ctx context.Context) ([]models.Smoker, error) {
	var rows []models.Smoker
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, translate(err, "list smokers")
}

func (r *lookupRepository) Roles(ctx context.Context) ([]models.UserRole, error) {
	var rows []models.UserRole
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, translate(err, "list roles")
}

func (r *lookupRepository) RegionExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Region{}, id)
}

func (r *lookupRepository) SexExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Sex{}, id)
}

func (r *lookupRepository) SmokerExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Smoker{}, id)
}

func (r *lookupRepository) RoleExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.UserRole{}, id)
}

func (r *lookupRepository) exists(ctx context.Context, model any, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, translate(err, "lookup %d", id)
}
