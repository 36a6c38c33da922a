package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService service.AuthService
	jwtSecret   string
}

func NewAuthHandler(authService service.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, bindingErrorMessage(err))
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Registration successful", resp)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		util.Unauthorized(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

// RefreshToken handles token refresh
// POST /api/v1/auth/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		util.Unauthorized(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", resp)
}

// GetMe handles getting current user info
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetMe(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// GetUser handles fetching a user by ID
// GET /api/v1/users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// SearchUsers handles searching users by keyword; the caller is excluded
// from the results
// GET /api/v1/users/search?q=keyword&limit=20&offset=0
func (h *AuthHandler) SearchUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	keyword := c.Query("q")
	if keyword == "" {
		util.BadRequest(c, "Search keyword is required")
		return
	}

	limit, offset := parsePagination(c)

	users, err := h.authService.SearchUsers(userID, keyword, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", gin.H{
		"users":  users,
		"limit":  limit,
		"offset": offset,
		"total":  len(users),
	})
}

// AuthMiddleware validates JWT token
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			util.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], h.jwtSecret)
		if err != nil {
			util.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// bindingErrorMessage turns validator failures into field-level messages
// instead of the struct-tag dump the library produces by default.
func bindingErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fieldErr.Field())
		case "email":
			return "invalid email format"
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fieldErr.Field(), fieldErr.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fieldErr.Field(), fieldErr.Param())
		}
	}
	return validationErrs.Error()
}

// parsePagination reads limit/offset query params with sane bounds
func parsePagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
