package app

import (
	"net/http"

	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment handles creating a comment or a reply
// POST /api/v1/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.CreateComment(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Comment created successfully", gin.H{"comment": comment})
}

// GetComment handles fetching a single comment
// GET /api/v1/comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, err := h.commentService.GetCommentByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment retrieved successfully", gin.H{"comment": comment})
}

// GetPostComments handles listing a post's top-level comments with one
// level of replies
// GET /api/v1/posts/:id/comments?include_deleted=true
func (h *CommentHandler) GetPostComments(c *gin.Context) {
	includeDeleted := c.Query("include_deleted") == "true"

	comments, err := h.commentService.GetCommentsForPost(c.Param("id"), includeDeleted)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comments retrieved successfully", gin.H{
		"comments": comments,
		"total":    len(comments),
	})
}

// GetReplies handles listing replies under a comment
// GET /api/v1/comments/:id/replies
func (h *CommentHandler) GetReplies(c *gin.Context) {
	limit, offset := parsePagination(c)

	replies, total, err := h.commentService.GetReplies(c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Replies retrieved successfully", gin.H{
		"replies": replies,
		"limit":   limit,
		"offset":  offset,
		"total":   total,
	})
}

// GetUserComments handles listing a user's comments
// GET /api/v1/comments/user/:userID
func (h *CommentHandler) GetUserComments(c *gin.Context) {
	includeDeleted := c.Query("include_deleted") == "true"

	comments, err := h.commentService.GetUserComments(c.Param("userID"), includeDeleted)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comments retrieved successfully", gin.H{
		"comments": comments,
		"total":    len(comments),
	})
}

// EditComment handles editing a comment's content
// PUT /api/v1/comments/:id
func (h *CommentHandler) EditComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.EditComment(userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment updated successfully", gin.H{"comment": comment})
}

// DeleteComment handles deleting a comment; soft by default, permanent
// with ?hard=true
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	soft := c.Query("hard") != "true"

	if err := h.commentService.DeleteComment(userID, c.Param("id"), soft); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment deleted successfully", nil)
}

// RestoreComment handles restoring a soft-deleted comment
// POST /api/v1/comments/:id/restore
func (h *CommentHandler) RestoreComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.RestoreComment(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment restored successfully", gin.H{"comment": comment})
}
