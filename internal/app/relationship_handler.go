package app

import (
	"net/http"

	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
)

type RelationshipHandler struct {
	relationshipService service.RelationshipService
}

func NewRelationshipHandler(relationshipService service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationshipService: relationshipService}
}

// SendRequest handles sending a friend request
// POST /api/v1/relationships/request
func (h *RelationshipHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	relationship, err := h.relationshipService.SendRequest(userID, req.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Friend request sent", gin.H{"relationship": relationship})
}

// Accept handles accepting a pending friend request
// POST /api/v1/relationships/:id/accept
func (h *RelationshipHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	relationship, err := h.relationshipService.Accept(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request accepted", gin.H{"relationship": relationship})
}

// Reject handles rejecting a pending friend request
// POST /api/v1/relationships/:id/reject
func (h *RelationshipHandler) Reject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.relationshipService.Reject(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request rejected", nil)
}

// Block handles blocking the other participant
// POST /api/v1/relationships/:id/block
func (h *RelationshipHandler) Block(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	relationship, err := h.relationshipService.Block(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User blocked", gin.H{"relationship": relationship})
}

// Unblock handles lifting a block, restoring the friendship
// POST /api/v1/relationships/:id/unblock
func (h *RelationshipHandler) Unblock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	relationship, err := h.relationshipService.Unblock(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User unblocked", gin.H{"relationship": relationship})
}

// Unfriend handles removing an accepted friendship
// DELETE /api/v1/relationships/:id
func (h *RelationshipHandler) Unfriend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.relationshipService.Unfriend(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend removed", nil)
}

// ListRelationships handles listing all relationships the user is part of
// GET /api/v1/relationships
func (h *RelationshipHandler) ListRelationships(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	relationships, err := h.relationshipService.ListForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Relationships retrieved successfully", gin.H{
		"relationships": relationships,
		"total":         len(relationships),
	})
}

// GetPendingRequests handles listing requests awaiting the user's answer
// GET /api/v1/relationships/pending
func (h *RelationshipHandler) GetPendingRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.relationshipService.GetPendingRequests(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Pending requests retrieved successfully", gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetFriends handles listing the user's friends
// GET /api/v1/relationships/friends
func (h *RelationshipHandler) GetFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	friends, err := h.relationshipService.GetFriends(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friends retrieved successfully", gin.H{
		"friends": friends,
		"total":   len(friends),
	})
}

// GetStatus handles checking the relationship status with another user
// GET /api/v1/relationships/status/:userID
func (h *RelationshipHandler) GetStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.relationshipService.GetStatus(userID, c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Status retrieved successfully", gin.H{"status": status})
}
