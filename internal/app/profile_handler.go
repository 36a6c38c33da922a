package app

import (
	"net/http"

	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
)

const maxPictureSize = 10 << 20 // 10 MB

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetMyProfile handles fetching the authenticated user's profile
// GET /api/v1/profiles/me
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", gin.H{"profile": profile})
}

// GetProfile handles fetching another user's profile
// GET /api/v1/profiles/:userID
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", gin.H{"profile": profile})
}

// UpdateProfile handles updating the authenticated user's profile fields
// PUT /api/v1/profiles/me
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile updated successfully", gin.H{"profile": profile})
}

// UploadPicture handles replacing the profile picture
// POST /api/v1/profiles/me/picture (multipart/form-data: file)
func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "File is required")
		return
	}
	if header.Size > maxPictureSize {
		util.BadRequest(c, "File too large (max 10MB)")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.BadRequest(c, "Failed to open file")
		return
	}
	defer file.Close()

	data, err := util.ReadFileFromReader(file, header.Filename)
	if err != nil {
		util.BadRequest(c, "Failed to read file")
		return
	}

	profile, err := h.profileService.UploadProfilePicture(userID, data, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile picture updated successfully", gin.H{"profile": profile})
}
