package repository

import (
	"context"

	"gorm.io/gorm"

	"medexpenses/internal/models"
)

type UserRepository interface {
	FindAll(ctx context.Context) ([]models.AppUser, error)
	FindByID(ctx context.Context, id uint) (*models.AppUser, error)
	FindByUsername(ctx context.Context, username string) (*models.AppUser, error)
	Create(ctx context.Context, user *models.AppUser) error
	Save(ctx context.Context, user *models.AppUser) error
	Delete(ctx context.Context, id uint) error
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindAll(ctx context.Context) ([]models.AppUser, error) {
	var users []models.AppUser
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, translate(err, "list users")
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.AppUser, error) {
	var user models.AppUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user %d", id)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.AppUser, error) {
	var user models.AppUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err, "user %q", username)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.AppUser) error {
	err := r.db.WithContext(ctx).Omit("Role").Create(user).Error
	return translate(err, "create user")
}

func (r *userRepository) Save(ctx context.Context, user *models.AppUser) error {
	err := r.db.WithContext(ctx).Omit("Role").Save(user).Error
	return translate(err, "update user %d", user.ID)
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.AppUser{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete user %d", id)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "user %d", id)
	}
	return nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return r.taken(ctx, "username", username, exceptID)
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.taken(ctx, "email", email, exceptID)
}

func (r *userRepository) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AppUser{}).
		Where(column+" = ? AND id <> ?", value, exceptID).
		Count(&count).Error
	return count > 0, translate(err, "check user %s", column)
}
