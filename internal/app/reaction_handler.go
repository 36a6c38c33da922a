package app

import (
	"net/http"

	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	reactionService service.ReactionService
}

func NewReactionHandler(reactionService service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// SetReaction handles setting or replacing the user's reaction on a post
// PUT /api/v1/posts/:id/reaction
func (h *ReactionHandler) SetReaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Reaction string `json:"reaction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	reaction, err := h.reactionService.SetReaction(userID, c.Param("id"), req.Reaction)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Reaction set successfully", gin.H{"reaction": reaction})
}

// DeleteReaction handles removing the user's reaction from a post
// DELETE /api/v1/posts/:id/reaction
func (h *ReactionHandler) DeleteReaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.reactionService.DeleteReaction(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Reaction removed successfully", nil)
}

// GetReactions handles listing every reaction on a post
// GET /api/v1/posts/:id/reactions
func (h *ReactionHandler) GetReactions(c *gin.Context) {
	reactions, err := h.reactionService.GetReactionsForPost(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Reactions retrieved successfully", gin.H{
		"reactions": reactions,
		"total":     len(reactions),
	})
}

// GetReactionCounts handles the per-kind reaction tally for a post
// GET /api/v1/posts/:id/reactions/counts
func (h *ReactionHandler) GetReactionCounts(c *gin.Context) {
	counts, err := h.reactionService.GetReactionCounts(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Reaction counts retrieved successfully", gin.H{"counts": counts})
}
