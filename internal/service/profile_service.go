package service

import (
	"errors"
	"fmt"

	"socialnet/internal/model"
	"socialnet/internal/repository"

	"gorm.io/gorm"
)

type ProfileService interface {
	GetProfile(userID string) (*model.Profile, error)
	UpdateProfile(userID string, req UpdateProfileRequest) (*model.Profile, error)
	UploadProfilePicture(userID string, data []byte, filename string) (*model.Profile, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	media       MediaStorage
}

type UpdateProfileRequest struct {
	Bio      *string `json:"bio" binding:"omitempty,max=1000"`
	Website  *string `json:"website" binding:"omitempty,max=500"`
	Location *string `json:"location" binding:"omitempty,max=255"`
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	media MediaStorage,
) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		media:       media,
	}
}

// GetProfile returns the user's profile, creating an empty one on first
// access so every existing user always has a profile to read
func (s *profileService) GetProfile(userID string) (*model.Profile, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	profile, err := s.profileRepo.FindByUserID(userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile = &model.Profile{UserID: userID}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return s.profileRepo.FindByUserID(userID)
}

// UpdateProfile updates only the fields present in the request
func (s *profileService) UpdateProfile(userID string, req UpdateProfileRequest) (*model.Profile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Website != nil {
		profile.Website = req.Website
	}
	if req.Location != nil {
		profile.Location = req.Location
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// UploadProfilePicture compresses and stores the image, then points the
// profile at it
func (s *profileService) UploadProfilePicture(userID string, data []byte, filename string) (*model.Profile, error) {
	if s.media == nil {
		return nil, errors.New("media storage not configured")
	}
	if len(data) == 0 {
		return nil, &ValidationError{Field: "file", Message: "file is empty"}
	}

	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	url, err := s.media.UploadImage(data, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}

	profile.PictureURL = &url
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}
