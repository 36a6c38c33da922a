package service

import (
	"fmt"

	"socialnet/internal/logger"
	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/util"

	"go.uber.org/zap"
)

// MediaStorage stores file bytes durably and derives video thumbnails from
// already-stored assets. UploadImage goes through a compression step before
// storing, UploadFile stores bytes as-is. *util.CloudinaryClient is the
// production implementation.
type MediaStorage interface {
	UploadFile(data []byte, filename string) (string, error)
	UploadImage(data []byte, filename string) (string, error)
	VideoThumbnailURL(videoURL string) string
}

type PostService interface {
	CreatePost(userID string, req CreatePostRequest, files []AttachmentUpload) (*model.Post, error)
	GetPostByID(postID string) (*model.Post, error)
	ListPosts(limit, offset int) ([]*model.Post, error)
	GetPostsByUserID(userID string, limit, offset int) ([]*model.Post, error)
	SearchPosts(query string, limit, offset int) ([]*model.Post, error)
	UpdatePost(userID, postID string, req UpdatePostRequest, files []AttachmentUpload) (*model.Post, error)
	DeletePost(userID, postID string) error
	CountPostsByUserID(userID string) (int64, error)
}

type postService struct {
	postRepo     repository.PostRepository
	userRepo     repository.UserRepository
	reactionRepo repository.ReactionRepository
	commentRepo  repository.CommentRepository
	media        MediaStorage
}

type CreatePostRequest struct {
	Title   string `form:"title" json:"title" binding:"required,max=50"`
	Content string `form:"content" json:"content" binding:"required"`
}

type UpdatePostRequest struct {
	Title   string `form:"title" json:"title" binding:"required,max=50"`
	Content string `form:"content" json:"content" binding:"required"`
}

// AttachmentUpload is one file taken off the wire, held in memory for the
// duration of the request.
type AttachmentUpload struct {
	Filename string
	Data     []byte
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	reactionRepo repository.ReactionRepository,
	commentRepo repository.CommentRepository,
	media MediaStorage,
) PostService {
	return &postService{
		postRepo:     postRepo,
		userRepo:     userRepo,
		reactionRepo: reactionRepo,
		commentRepo:  commentRepo,
		media:        media,
	}
}

// CreatePost creates a post and attaches the uploaded files. Attachments are
// persisted one by one: a file that fails to store or persist is logged and
// skipped, it never rolls back the post or the other attachments.
func (s *postService) CreatePost(userID string, req CreatePostRequest, files []AttachmentUpload) (*model.Post, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	post := &model.Post{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.createAttachments(post.ID, files)

	return s.GetPostByID(post.ID)
}

// GetPostByID returns the post with its attachments and the derived
// reaction-count and comment-count projections.
func (s *postService) GetPostByID(postID string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	s.backfillThumbnails(post)
	s.enrich(post)
	return post, nil
}

// ListPosts returns the newest posts with derived counts
func (s *postService) ListPosts(limit, offset int) ([]*model.Post, error) {
	posts, err := s.postRepo.FindAll(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	for _, post := range posts {
		s.enrich(post)
	}
	return posts, nil
}

// GetPostsByUserID returns a user's posts with derived counts
func (s *postService) GetPostsByUserID(userID string, limit, offset int) ([]*model.Post, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	posts, err := s.postRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}

	for _, post := range posts {
		s.enrich(post)
	}
	return posts, nil
}

// SearchPosts matches title and content by substring
func (s *postService) SearchPosts(query string, limit, offset int) ([]*model.Post, error) {
	posts, err := s.postRepo.Search(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	for _, post := range posts {
		s.enrich(post)
	}
	return posts, nil
}

// UpdatePost updates title and content. When new files are supplied the
// whole attachment set is replaced; there is no partial merge.
func (s *postService) UpdatePost(userID, postID string, req UpdatePostRequest, files []AttachmentUpload) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	if post.UserID != userID {
		return nil, &AuthorizationError{Message: "you can only update your own posts"}
	}

	post.Title = req.Title
	post.Content = req.Content
	post.Attachments = nil

	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if len(files) > 0 {
		if err := s.postRepo.DeleteAttachmentsByPostID(postID); err != nil {
			return nil, fmt.Errorf("failed to replace attachments: %w", err)
		}
		s.createAttachments(postID, files)
	}

	return s.GetPostByID(postID)
}

// DeletePost removes a post with everything hanging off it
func (s *postService) DeletePost(userID, postID string) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return &NotFoundError{Resource: "post"}
	}

	if post.UserID != userID {
		return &AuthorizationError{Message: "you can only delete your own posts"}
	}

	if err := s.postRepo.Delete(postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

// CountPostsByUserID counts a user's posts
func (s *postService) CountPostsByUserID(userID string) (int64, error) {
	return s.postRepo.CountByUserID(userID)
}

// createAttachments stores and persists each file independently, best-effort.
// The file type is sniffed from the stored bytes, never from the filename;
// videos get a best-effort first-frame thumbnail, and a failed derivation
// leaves the thumbnail unset rather than failing the attachment.
func (s *postService) createAttachments(postID string, files []AttachmentUpload) {
	if len(files) == 0 {
		return
	}
	if s.media == nil {
		logger.Warn("media storage not configured, skipping attachments",
			zap.String("post_id", postID),
			zap.Int("files", len(files)),
		)
		return
	}

	for _, file := range files {
		fileURL, err := s.media.UploadFile(file.Data, file.Filename)
		if err != nil {
			logger.Error("failed to store attachment",
				zap.String("post_id", postID),
				zap.String("filename", file.Filename),
				zap.Error(err),
			)
			continue
		}

		attachment := &model.Attachment{
			PostID:   postID,
			FileURL:  fileURL,
			FileType: util.DetectFileType(file.Data),
		}

		if attachment.FileType == model.FileTypeVideo {
			if thumb := s.media.VideoThumbnailURL(fileURL); thumb != "" {
				attachment.ThumbnailURL = &thumb
			}
		}

		if err := s.postRepo.CreateAttachment(attachment); err != nil {
			logger.Error("failed to persist attachment",
				zap.String("post_id", postID),
				zap.String("filename", file.Filename),
				zap.Error(err),
			)
			continue
		}
	}
}

// backfillThumbnails derives thumbnails for video attachments stored before
// thumbnail derivation was in place. Only the single-post read pays for this;
// list reads serve rows as stored. Best-effort, a row that cannot be
// backfilled is left alone.
func (s *postService) backfillThumbnails(post *model.Post) {
	if s.media == nil {
		return
	}
	for i := range post.Attachments {
		attachment := &post.Attachments[i]
		if attachment.FileType != model.FileTypeVideo || attachment.ThumbnailURL != nil {
			continue
		}
		thumb := s.media.VideoThumbnailURL(attachment.FileURL)
		if thumb == "" {
			continue
		}
		attachment.ThumbnailURL = &thumb
		if err := s.postRepo.UpdateAttachment(attachment); err != nil {
			logger.Error("failed to backfill attachment thumbnail",
				zap.String("attachment_id", attachment.ID),
				zap.Error(err),
			)
			attachment.ThumbnailURL = nil
		}
	}
}

// enrich fills the derived projections on a post
func (s *postService) enrich(post *model.Post) {
	if counts, err := s.reactionRepo.CountsByPostID(post.ID); err == nil {
		post.ReactionCounts = counts
	}
	if count, err := s.commentRepo.CountByPostID(post.ID); err == nil {
		post.CommentCount = count
	}
}
