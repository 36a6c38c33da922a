package repository

import (
	"socialnet/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(profile *model.Profile) error
	FindByUserID(userID string) (*model.Profile, error)
	Update(profile *model.Profile) error
	Delete(id string) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *model.Profile) error {
	return r.db.Create(profile).Error
}

func (r *profileRepository) FindByUserID(userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(profile *model.Profile) error {
	return r.db.Save(profile).Error
}

func (r *profileRepository) Delete(id string) error {
	return r.db.Delete(&model.Profile{}, "id = ?", id).Error
}
