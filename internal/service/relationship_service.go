package service

import (
	"errors"
	"fmt"

	"socialnet/internal/logger"
	"socialnet/internal/model"
	"socialnet/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RelationshipService interface {
	SendRequest(senderID, receiverID string) (*model.Relationship, error)
	Accept(relationshipID, userID string) (*model.Relationship, error)
	Reject(relationshipID, userID string) error
	Block(relationshipID, userID string) (*model.Relationship, error)
	Unblock(relationshipID, userID string) (*model.Relationship, error)
	Unfriend(relationshipID, userID string) error
	GetByID(relationshipID string) (*model.Relationship, error)
	ListForUser(userID string) ([]*model.Relationship, error)
	GetPendingRequests(userID string) ([]*model.Relationship, error)
	CountPendingRequests(userID string) (int64, error)
	GetFriends(userID string) ([]*model.User, error)
	AreFriends(userID1, userID2 string) (bool, error)
	GetStatus(userID1, userID2 string) (string, error)
}

type relationshipService struct {
	relationshipRepo repository.RelationshipRepository
	userRepo         repository.UserRepository
}

func NewRelationshipService(
	relationshipRepo repository.RelationshipRepository,
	userRepo repository.UserRepository,
) RelationshipService {
	return &relationshipService{
		relationshipRepo: relationshipRepo,
		userRepo:         userRepo,
	}
}

// SendRequest creates a pending relationship from sender to receiver. When a
// row already exists between the pair, in either direction and any status, it
// is returned unchanged, so the operation is idempotent and never duplicates.
func (s *relationshipService) SendRequest(senderID, receiverID string) (*model.Relationship, error) {
	if senderID == receiverID {
		return nil, &ValidationError{Field: "receiver_id", Message: "cannot send a friend request to yourself"}
	}

	if _, err := s.userRepo.FindByID(senderID); err != nil {
		return nil, &NotFoundError{Resource: "sender"}
	}
	if _, err := s.userRepo.FindByID(receiverID); err != nil {
		return nil, &NotFoundError{Resource: "receiver"}
	}

	if existing, err := s.relationshipRepo.FindByPair(senderID, receiverID); err == nil && existing != nil {
		return existing, nil
	}

	relationship := &model.Relationship{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.RelationshipStatusPending,
	}

	if err := s.relationshipRepo.Create(relationship); err != nil {
		// A concurrent request for the same pair beat us to the unique
		// index; the winner's row is the canonical one.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.relationshipRepo.FindByPair(senderID, receiverID)
		}
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}

	logger.Info("friend request sent",
		zap.String("relationship_id", relationship.ID),
		zap.String("sender_id", senderID),
		zap.String("receiver_id", receiverID),
	)

	return s.relationshipRepo.FindByID(relationship.ID)
}

// Accept transitions pending to accepted. Only the receiver may accept.
func (s *relationshipService) Accept(relationshipID, userID string) (*model.Relationship, error) {
	relationship, err := s.relationshipRepo.FindByID(relationshipID)
	if err != nil {
		return nil, &NotFoundError{Resource: "relationship"}
	}

	if relationship.ReceiverID != userID {
		return nil, &AuthorizationError{Message: "only the receiver can accept a friend request"}
	}

	if relationship.Status != model.RelationshipStatusPending {
		return nil, fmt.Errorf("cannot accept a %s request: %w", relationship.Status, ErrStateConflict)
	}

	relationship.Status = model.RelationshipStatusAccepted
	if err := s.relationshipRepo.Update(relationship); err != nil {
		return nil, fmt.Errorf("failed to accept relationship: %w", err)
	}

	logger.Info("friend request accepted",
		zap.String("relationship_id", relationship.ID),
		zap.String("receiver_id", userID),
	)

	return relationship, nil
}

// Reject deletes a pending request. Only the receiver may reject.
func (s *relationshipService) Reject(relationshipID, userID string) error {
	relationship, err := s.relationshipRepo.FindByID(relationshipID)
	if err != nil {
		return &NotFoundError{Resource: "relationship"}
	}

	if relationship.ReceiverID != userID {
		return &AuthorizationError{Message: "only the receiver can reject a friend request"}
	}

	if relationship.Status != model.RelationshipStatusPending {
		return fmt.Errorf("cannot reject a %s request: %w", relationship.Status, ErrStateConflict)
	}

	if err := s.relationshipRepo.Delete(relationshipID); err != nil {
		return fmt.Errorf("failed to reject relationship: %w", err)
	}

	return nil
}

// Block sets the relationship to blocked from any prior status.
func (s *relationshipService) Block(relationshipID, userID string) (*model.Relationship, error) {
	relationship, err := s.relationshipRepo.FindByID(relationshipID)
	if err != nil {
		return nil, &NotFoundError{Resource: "relationship"}
	}

	if !relationship.Involves(userID) {
		return nil, &AuthorizationError{Message: "you are not part of this relationship"}
	}

	relationship.Status = model.RelationshipStatusBlocked
	if err := s.relationshipRepo.Update(relationship); err != nil {
		return nil, fmt.Errorf("failed to block relationship: %w", err)
	}

	logger.Info("relationship blocked",
		zap.String("relationship_id", relationship.ID),
		zap.String("blocked_by", userID),
	)

	return relationship, nil
}

// Unblock reverts a blocked relationship to accepted, never back to pending.
func (s *relationshipService) Unblock(relationshipID, userID string) (*model.Relationship, error) {
	relationship, err := s.relationshipRepo.FindByID(relationshipID)
	if err != nil {
		return nil, &NotFoundError{Resource: "relationship"}
	}

	if !relationship.Involves(userID) {
		return nil, &AuthorizationError{Message: "you are not part of this relationship"}
	}

	if relationship.Status != model.RelationshipStatusBlocked {
		return nil, fmt.Errorf("cannot unblock a %s relationship: %w", relationship.Status, ErrStateConflict)
	}

	relationship.Status = model.RelationshipStatusAccepted
	if err := s.relationshipRepo.Update(relationship); err != nil {
		return nil, fmt.Errorf("failed to unblock relationship: %w", err)
	}

	return relationship, nil
}

// Unfriend deletes an accepted relationship.
func (s *relationshipService) Unfriend(relationshipID, userID string) error {
	relationship, err := s.relationshipRepo.FindByID(relationshipID)
	if err != nil {
		return &NotFoundError{Resource: "relationship"}
	}

	if !relationship.Involves(userID) {
		return &AuthorizationError{Message: "you are not part of this relationship"}
	}

	if relationship.Status != model.RelationshipStatusAccepted {
		return fmt.Errorf("cannot unfriend a %s relationship: %w", relationship.Status, ErrStateConflict)
	}

	if err := s.relationshipRepo.Delete(relationshipID); err != nil {
		return fmt.Errorf("failed to unfriend: %w", err)
	}

	return nil
}

// GetByID gets a relationship by ID
func (s *relationshipService) GetByID(relationshipID string) (*model.Relationship, error) {
	relationship, err := s.relationshipRepo.FindByID(relationshipID)
	if err != nil {
		return nil, &NotFoundError{Resource: "relationship"}
	}
	return relationship, nil
}

// ListForUser returns every relationship the user participates in
func (s *relationshipService) ListForUser(userID string) ([]*model.Relationship, error) {
	return s.relationshipRepo.FindByUserID(userID)
}

// GetPendingRequests returns pending requests addressed to the user. Requests
// the user sent are deliberately not included; ListForUser surfaces those.
func (s *relationshipService) GetPendingRequests(userID string) ([]*model.Relationship, error) {
	return s.relationshipRepo.FindPendingByReceiverID(userID)
}

// CountPendingRequests counts pending requests addressed to the user
func (s *relationshipService) CountPendingRequests(userID string) (int64, error) {
	return s.relationshipRepo.CountPendingByReceiverID(userID)
}

// GetFriends resolves the counterpart of every accepted relationship the
// user is part of, regardless of which side sent the original request.
func (s *relationshipService) GetFriends(userID string) ([]*model.User, error) {
	relationships, err := s.relationshipRepo.FindAcceptedByUserID(userID)
	if err != nil {
		return nil, err
	}

	friends := make([]*model.User, 0, len(relationships))
	for _, relationship := range relationships {
		counterpart := relationship.Receiver
		if relationship.ReceiverID == userID {
			counterpart = relationship.Sender
		}
		if counterpart.ID == "" {
			// Row came without preloaded users (cache hit); resolve by ID.
			user, err := s.userRepo.FindByID(relationship.CounterpartID(userID))
			if err != nil {
				continue
			}
			counterpart = *user
		}
		friend := counterpart
		friends = append(friends, &friend)
	}

	return friends, nil
}

// AreFriends checks for an accepted relationship in either direction
func (s *relationshipService) AreFriends(userID1, userID2 string) (bool, error) {
	return s.relationshipRepo.ExistsAcceptedByPair(userID1, userID2)
}

// GetStatus returns the relationship status between two users, "none" when
// no row exists.
func (s *relationshipService) GetStatus(userID1, userID2 string) (string, error) {
	relationship, err := s.relationshipRepo.FindByPair(userID1, userID2)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "none", nil
		}
		return "", fmt.Errorf("failed to get relationship status: %w", err)
	}
	return relationship.Status, nil
}
