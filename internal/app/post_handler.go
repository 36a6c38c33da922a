package app

import (
	"net/http"

	"socialnet/internal/logger"
	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxAttachmentSize = 50 << 20 // 50 MB per file

type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePost handles creating a post with optional file attachments
// POST /api/v1/posts (multipart/form-data: title, content, files[])
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	files, err := readUploads(c)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	post, err := h.postService.CreatePost(userID, req, files)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Post created successfully", gin.H{"post": post})
}

// GetPost handles fetching a single post
// GET /api/v1/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPostByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post retrieved successfully", gin.H{"post": post})
}

// ListPosts handles the global newest-first feed
// GET /api/v1/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	limit, offset := parsePagination(c)

	posts, err := h.postService.ListPosts(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved successfully", gin.H{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
		"total":  len(posts),
	})
}

// GetMyPosts handles listing the authenticated user's posts
// GET /api/v1/posts/me
func (h *PostHandler) GetMyPosts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.listUserPosts(c, userID)
}

// GetUserPosts handles listing another user's posts
// GET /api/v1/posts/user/:userID
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	h.listUserPosts(c, c.Param("userID"))
}

func (h *PostHandler) listUserPosts(c *gin.Context, userID string) {
	limit, offset := parsePagination(c)

	posts, err := h.postService.GetPostsByUserID(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	total, err := h.postService.CountPostsByUserID(userID)
	if err != nil {
		total = int64(len(posts))
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved successfully", gin.H{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

// SearchPosts handles searching posts by title or content
// GET /api/v1/posts/search?q=keyword
func (h *PostHandler) SearchPosts(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		util.BadRequest(c, "Search keyword is required")
		return
	}

	limit, offset := parsePagination(c)

	posts, err := h.postService.SearchPosts(keyword, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved successfully", gin.H{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
		"total":  len(posts),
	})
}

// UpdatePost handles updating a post; new files replace all attachments
// PUT /api/v1/posts/:id (multipart/form-data: title, content, files[])
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.UpdatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	files, err := readUploads(c)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	post, err := h.postService.UpdatePost(userID, c.Param("id"), req, files)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post updated successfully", gin.H{"post": post})
}

// DeletePost handles deleting a post with its attachments, comments and
// reactions
// DELETE /api/v1/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post deleted successfully", nil)
}

// readUploads pulls the "files" multipart field into memory. Oversized or
// unreadable files are logged and dropped, matching the best-effort
// attachment contract.
func readUploads(c *gin.Context) ([]service.AttachmentUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}

	headers := form.File["files"]
	uploads := make([]service.AttachmentUpload, 0, len(headers))

	for _, header := range headers {
		if header.Size > maxAttachmentSize {
			logger.Warn("attachment too large, skipping",
				zap.String("filename", header.Filename),
				zap.Int64("size", header.Size),
			)
			continue
		}

		file, err := header.Open()
		if err != nil {
			logger.Warn("failed to open upload, skipping",
				zap.String("filename", header.Filename),
				zap.Error(err),
			)
			continue
		}

		data, err := util.ReadFileFromReader(file, header.Filename)
		file.Close()
		if err != nil {
			logger.Warn("failed to read upload, skipping",
				zap.String("filename", header.Filename),
				zap.Error(err),
			)
			continue
		}

		uploads = append(uploads, service.AttachmentUpload{
			Filename: header.Filename,
			Data:     data,
		})
	}

	return uploads, nil
}
