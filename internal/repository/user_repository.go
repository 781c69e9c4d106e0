package repository

import (
	"errors"
	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	var count int64
	r.DB.Model(&model.User{}).Where("email = ?", user.Email).Count(&count)
	if count > 0 {
		return util.ErrEmailRegistered
	}
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// SetXP 将排行榜用的 XP 镜像为档案中的最新值
func (r *UserRepository) SetXP(userID uint, xp int) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("xp", xp).Error
}

func (r *UserRepository) FindTopByXP(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("disabled = ?", false).Order("xp DESC").Limit(limit).Find(&users).Error
	return users, err
}

// ListIDs 全部启用用户的 ID，用于后台周计数清扫
func (r *UserRepository) ListIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.User{}).Where("disabled = ?", false).Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen", time.Now()).Error
}
