package service

import (
	"testing"

	"socialnet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Real magic bytes so content sniffing runs against the actual detector.
var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
	mp4Bytes  = append([]byte{0, 0, 0, 0x18}, []byte("ftypisom\x00\x00\x02\x00isomiso2")...)
	textBytes = []byte("just some plain text, nothing binary about it")
)

type postFixture struct {
	svc   PostService
	repo  *fakePostRepo
	media *fakeMedia

	author *model.User
	other  *model.User
}

func setupPostService(t *testing.T) *postFixture {
	t.Helper()
	userRepo := newFakeUserRepo()
	postRepo := newFakePostRepo()
	reactionRepo := newFakeReactionRepo()
	commentRepo := newFakeCommentRepo()
	media := &fakeMedia{}

	author := userRepo.add(&model.User{Username: "author", Role: model.RoleUser})
	other := userRepo.add(&model.User{Username: "other", Role: model.RoleUser})

	return &postFixture{
		svc:    NewPostService(postRepo, userRepo, reactionRepo, commentRepo, media),
		repo:   postRepo,
		media:  media,
		author: author,
		other:  other,
	}
}

func TestCreatePost_NoAttachments(t *testing.T) {
	f := setupPostService(t)

	post, err := f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "hello", Content: "world"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "hello", post.Title)
	assert.Empty(t, post.Attachments)
	assert.Empty(t, post.ReactionCounts)
	assert.Zero(t, post.CommentCount)
}

func TestCreatePost_SniffsAttachmentTypes(t *testing.T) {
	f := setupPostService(t)

	// Extensions lie on purpose; classification must come from the bytes.
	files := []AttachmentUpload{
		{Filename: "photo.dat", Data: pngBytes},
		{Filename: "clip.dat", Data: mp4Bytes},
		{Filename: "notes.png", Data: textBytes},
	}

	post, err := f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "media", Content: "mixed"}, files)
	require.NoError(t, err)
	require.Len(t, post.Attachments, 3)

	types := map[string]string{}
	for _, a := range post.Attachments {
		types[a.FileURL] = a.FileType
	}
	assert.Equal(t, model.FileTypeImage, types["https://cdn.example.com/photo.dat"])
	assert.Equal(t, model.FileTypeVideo, types["https://cdn.example.com/clip.dat"])
	assert.Equal(t, model.FileTypeOther, types["https://cdn.example.com/notes.png"])
}

func TestCreatePost_VideoGetsThumbnail(t *testing.T) {
	f := setupPostService(t)

	post, err := f.svc.CreatePost(f.author.ID,
		CreatePostRequest{Title: "video", Content: "watch"},
		[]AttachmentUpload{{Filename: "clip.mp4", Data: mp4Bytes}})
	require.NoError(t, err)
	require.Len(t, post.Attachments, 1)

	require.NotNil(t, post.Attachments[0].ThumbnailURL)
	assert.Equal(t, "https://cdn.example.com/clip.mp4.jpg", *post.Attachments[0].ThumbnailURL)
}

func TestCreatePost_ThumbnailFailureLeavesAttachment(t *testing.T) {
	f := setupPostService(t)
	f.media.noThumbs = true

	post, err := f.svc.CreatePost(f.author.ID,
		CreatePostRequest{Title: "video", Content: "watch"},
		[]AttachmentUpload{{Filename: "clip.mp4", Data: mp4Bytes}})
	require.NoError(t, err)
	require.Len(t, post.Attachments, 1)
	assert.Nil(t, post.Attachments[0].ThumbnailURL)
}

func TestCreatePost_FailedUploadSkippedNotFatal(t *testing.T) {
	f := setupPostService(t)
	f.media.failUpload = true

	post, err := f.svc.CreatePost(f.author.ID,
		CreatePostRequest{Title: "resilient", Content: "still here"},
		[]AttachmentUpload{{Filename: "photo.png", Data: pngBytes}})
	require.NoError(t, err)

	assert.Empty(t, post.Attachments)
	assert.Len(t, f.repo.posts, 1)
}

func TestCreatePost_FailedPersistSkippedNotFatal(t *testing.T) {
	f := setupPostService(t)
	f.repo.failCreateAttachment = true

	post, err := f.svc.CreatePost(f.author.ID,
		CreatePostRequest{Title: "resilient", Content: "still here"},
		[]AttachmentUpload{{Filename: "photo.png", Data: pngBytes}})
	require.NoError(t, err)
	assert.Empty(t, post.Attachments)
}

func TestUpdatePost_OwnerOnly(t *testing.T) {
	f := setupPostService(t)

	post, err := f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "mine", Content: "original"}, nil)
	require.NoError(t, err)

	_, err = f.svc.UpdatePost(f.other.ID, post.ID, UpdatePostRequest{Title: "stolen", Content: "nope"}, nil)
	var authzErr *AuthorizationError
	require.ErrorAs(t, err, &authzErr)

	updated, err := f.svc.UpdatePost(f.author.ID, post.ID, UpdatePostRequest{Title: "mine v2", Content: "edited"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mine v2", updated.Title)
}

func TestUpdatePost_NewFilesReplaceAttachmentSet(t *testing.T) {
	f := setupPostService(t)

	post, err := f.svc.CreatePost(f.author.ID,
		CreatePostRequest{Title: "gallery", Content: "v1"},
		[]AttachmentUpload{
			{Filename: "a.png", Data: pngBytes},
			{Filename: "b.png", Data: pngBytes},
		})
	require.NoError(t, err)
	require.Len(t, post.Attachments, 2)

	updated, err := f.svc.UpdatePost(f.author.ID, post.ID,
		UpdatePostRequest{Title: "gallery", Content: "v2"},
		[]AttachmentUpload{{Filename: "c.png", Data: pngBytes}})
	require.NoError(t, err)

	require.Len(t, updated.Attachments, 1)
	assert.Equal(t, "https://cdn.example.com/c.png", updated.Attachments[0].FileURL)
}

func TestUpdatePost_NoFilesKeepsAttachments(t *testing.T) {
	f := setupPostService(t)

	post, err := f.svc.CreatePost(f.author.ID,
		CreatePostRequest{Title: "gallery", Content: "v1"},
		[]AttachmentUpload{{Filename: "a.png", Data: pngBytes}})
	require.NoError(t, err)

	updated, err := f.svc.UpdatePost(f.author.ID, post.ID,
		UpdatePostRequest{Title: "gallery", Content: "v2"}, nil)
	require.NoError(t, err)
	assert.Len(t, updated.Attachments, 1)
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	f := setupPostService(t)

	post, err := f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "doomed", Content: "bye"}, nil)
	require.NoError(t, err)

	err = f.svc.DeletePost(f.other.ID, post.ID)
	var authzErr *AuthorizationError
	require.ErrorAs(t, err, &authzErr)

	require.NoError(t, f.svc.DeletePost(f.author.ID, post.ID))
	assert.Empty(t, f.repo.posts)
}

func TestGetPostByID_BackfillsMissingVideoThumbnail(t *testing.T) {
	f := setupPostService(t)

	post, err := f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "old", Content: "clip"}, nil)
	require.NoError(t, err)

	// A video row stored before thumbnail derivation existed.
	require.NoError(t, f.repo.CreateAttachment(&model.Attachment{
		PostID:   post.ID,
		FileURL:  "https://cdn.example.com/legacy.mp4",
		FileType: model.FileTypeVideo,
	}))

	loaded, err := f.svc.GetPostByID(post.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Attachments, 1)
	require.NotNil(t, loaded.Attachments[0].ThumbnailURL)
	assert.Equal(t, "https://cdn.example.com/legacy.mp4.jpg", *loaded.Attachments[0].ThumbnailURL)

	// The derived thumbnail is persisted, not just projected.
	again, err := f.svc.GetPostByID(post.ID)
	require.NoError(t, err)
	require.NotNil(t, again.Attachments[0].ThumbnailURL)
	assert.Equal(t, "https://cdn.example.com/legacy.mp4.jpg", *again.Attachments[0].ThumbnailURL)
}

func TestGetPostByID_BackfillSkipsUnderivableThumbnail(t *testing.T) {
	f := setupPostService(t)
	f.media.noThumbs = true

	post, err := f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "old", Content: "clip"}, nil)
	require.NoError(t, err)
	require.NoError(t, f.repo.CreateAttachment(&model.Attachment{
		PostID:   post.ID,
		FileURL:  "https://cdn.example.com/legacy.mp4",
		FileType: model.FileTypeVideo,
	}))

	loaded, err := f.svc.GetPostByID(post.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Attachments, 1)
	assert.Nil(t, loaded.Attachments[0].ThumbnailURL)
}

func TestGetPostByID_CarriesDerivedCounts(t *testing.T) {
	userRepo := newFakeUserRepo()
	postRepo := newFakePostRepo()
	reactionRepo := newFakeReactionRepo()
	commentRepo := newFakeCommentRepo()

	author := userRepo.add(&model.User{Username: "author", Role: model.RoleUser})
	reader := userRepo.add(&model.User{Username: "reader", Role: model.RoleUser})

	postSvc := NewPostService(postRepo, userRepo, reactionRepo, commentRepo, &fakeMedia{})
	reactionSvc := NewReactionService(reactionRepo, userRepo, postRepo)
	commentSvc := NewCommentService(commentRepo, userRepo, postRepo)

	post, err := postSvc.CreatePost(author.ID, CreatePostRequest{Title: "popular", Content: "stuff"}, nil)
	require.NoError(t, err)

	_, err = reactionSvc.SetReaction(reader.ID, post.ID, model.ReactionLove)
	require.NoError(t, err)
	_, err = commentSvc.CreateComment(reader.ID, CreateCommentRequest{PostID: post.ID, Content: "nice"})
	require.NoError(t, err)

	loaded, err := postSvc.GetPostByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.ReactionCounts[model.ReactionLove])
	assert.Equal(t, int64(1), loaded.CommentCount)
}

func TestSearchPosts(t *testing.T) {
	f := setupPostService(t)

	_, err := f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "gophers at work", Content: "burrows"}, nil)
	require.NoError(t, err)
	_, err = f.svc.CreatePost(f.author.ID, CreatePostRequest{Title: "unrelated", Content: "nothing here"}, nil)
	require.NoError(t, err)

	results, err := f.svc.SearchPosts("gophers", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "gophers at work", results[0].Title)
}
