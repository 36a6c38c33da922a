package service

import (
	"errors"
	"strings"
	"time"

	"socialnet/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests. They mirror the
// storage contracts closely enough to exercise the state machines without a
// database: missing rows surface gorm.ErrRecordNotFound, the relationship
// fake enforces the unordered-pair uniqueness with gorm.ErrDuplicatedKey.

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) add(user *model.User) *model.User {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(user *model.User) error {
	f.add(user)
	return nil
}

func (f *fakeUserRepo) FindByID(id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Search(keyword string, limit, offset int) ([]*model.User, error) {
	var matches []*model.User
	for _, user := range f.users {
		if strings.Contains(user.Username, keyword) || strings.Contains(user.FullName, keyword) {
			matches = append(matches, user)
		}
	}
	return matches, nil
}

func (f *fakeUserRepo) Update(user *model.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeRelationshipRepo struct {
	relationships []*model.Relationship
	findByPairErr error
}

func newFakeRelationshipRepo() *fakeRelationshipRepo {
	return &fakeRelationshipRepo{}
}

func (f *fakeRelationshipRepo) Create(relationship *model.Relationship) error {
	if relationship.ID == "" {
		relationship.ID = uuid.New().String()
	}
	if relationship.PairKey == "" {
		relationship.PairKey = model.PairKey(relationship.SenderID, relationship.ReceiverID)
	}
	for _, existing := range f.relationships {
		if existing.PairKey == relationship.PairKey {
			return gorm.ErrDuplicatedKey
		}
	}
	f.relationships = append(f.relationships, relationship)
	return nil
}

func (f *fakeRelationshipRepo) FindByID(id string) (*model.Relationship, error) {
	for _, r := range f.relationships {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRelationshipRepo) FindByPair(userID1, userID2 string) (*model.Relationship, error) {
	if f.findByPairErr != nil {
		return nil, f.findByPairErr
	}
	key := model.PairKey(userID1, userID2)
	for _, r := range f.relationships {
		if r.PairKey == key {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRelationshipRepo) FindByUserID(userID string) ([]*model.Relationship, error) {
	var result []*model.Relationship
	for _, r := range f.relationships {
		if r.Involves(userID) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRelationshipRepo) FindPendingByReceiverID(receiverID string) ([]*model.Relationship, error) {
	var result []*model.Relationship
	for _, r := range f.relationships {
		if r.ReceiverID == receiverID && r.Status == model.RelationshipStatusPending {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRelationshipRepo) FindAcceptedByUserID(userID string) ([]*model.Relationship, error) {
	var result []*model.Relationship
	for _, r := range f.relationships {
		if r.Involves(userID) && r.Status == model.RelationshipStatusAccepted {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRelationshipRepo) ExistsAcceptedByPair(userID1, userID2 string) (bool, error) {
	key := model.PairKey(userID1, userID2)
	for _, r := range f.relationships {
		if r.PairKey == key && r.Status == model.RelationshipStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRelationshipRepo) Update(relationship *model.Relationship) error {
	for i, r := range f.relationships {
		if r.ID == relationship.ID {
			f.relationships[i] = relationship
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRelationshipRepo) Delete(id string) error {
	for i, r := range f.relationships {
		if r.ID == id {
			f.relationships = append(f.relationships[:i], f.relationships[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRelationshipRepo) CountPendingByReceiverID(receiverID string) (int64, error) {
	pending, _ := f.FindPendingByReceiverID(receiverID)
	return int64(len(pending)), nil
}

type fakeCommentRepo struct {
	comments []*model.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (f *fakeCommentRepo) Create(comment *model.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentRepo) FindByID(id string) (*model.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCommentRepo) FindTopLevelByPostID(postID string, includeDeleted bool) ([]*model.Comment, error) {
	var result []*model.Comment
	for _, c := range f.comments {
		if c.PostID != postID || c.ParentID != nil {
			continue
		}
		if c.Deleted && !includeDeleted {
			continue
		}
		top := *c
		top.Replies = nil
		for _, reply := range f.comments {
			if reply.ParentID != nil && *reply.ParentID == c.ID && !reply.Deleted {
				top.Replies = append(top.Replies, *reply)
			}
		}
		result = append(result, &top)
	}
	return result, nil
}

func (f *fakeCommentRepo) FindRepliesByParentID(parentID string, limit, offset int) ([]*model.Comment, error) {
	var result []*model.Comment
	for _, c := range f.comments {
		if c.ParentID != nil && *c.ParentID == parentID && !c.Deleted {
			result = append(result, c)
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeCommentRepo) FindByUserID(userID string, includeDeleted bool) ([]*model.Comment, error) {
	var result []*model.Comment
	for _, c := range f.comments {
		if c.UserID != userID {
			continue
		}
		if c.Deleted && !includeDeleted {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (f *fakeCommentRepo) Update(comment *model.Comment) error {
	for i, c := range f.comments {
		if c.ID == comment.ID {
			comment.UpdatedAt = time.Now()
			f.comments[i] = comment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCommentRepo) HardDelete(id string) error {
	if _, err := f.FindByID(id); err != nil {
		return err
	}

	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, c := range f.comments {
			if c.ParentID != nil && doomed[*c.ParentID] && !doomed[c.ID] {
				doomed[c.ID] = true
				changed = true
			}
		}
	}

	var kept []*model.Comment
	for _, c := range f.comments {
		if !doomed[c.ID] {
			kept = append(kept, c)
		}
	}
	f.comments = kept
	return nil
}

func (f *fakeCommentRepo) CountByPostID(postID string) (int64, error) {
	var count int64
	for _, c := range f.comments {
		if c.PostID == postID && !c.Deleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeCommentRepo) CountRepliesByParentID(parentID string) (int64, error) {
	var count int64
	for _, c := range f.comments {
		if c.ParentID != nil && *c.ParentID == parentID && !c.Deleted {
			count++
		}
	}
	return count, nil
}

type fakeReactionRepo struct {
	reactions map[string]*model.Reaction // keyed user:post
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{reactions: make(map[string]*model.Reaction)}
}

func reactionKey(userID, postID string) string {
	return userID + ":" + postID
}

func (f *fakeReactionRepo) Upsert(reaction *model.Reaction) error {
	key := reactionKey(reaction.UserID, reaction.PostID)
	if existing, ok := f.reactions[key]; ok {
		existing.Reaction = reaction.Reaction
		existing.UpdatedAt = time.Now()
		return nil
	}
	if reaction.ID == "" {
		reaction.ID = uuid.New().String()
	}
	reaction.CreatedAt = time.Now()
	reaction.UpdatedAt = reaction.CreatedAt
	f.reactions[key] = reaction
	return nil
}

func (f *fakeReactionRepo) FindByUserAndPost(userID, postID string) (*model.Reaction, error) {
	reaction, ok := f.reactions[reactionKey(userID, postID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reaction, nil
}

func (f *fakeReactionRepo) FindByPostID(postID string) ([]*model.Reaction, error) {
	var result []*model.Reaction
	for _, r := range f.reactions {
		if r.PostID == postID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeReactionRepo) DeleteByUserAndPost(userID, postID string) (bool, error) {
	key := reactionKey(userID, postID)
	if _, ok := f.reactions[key]; !ok {
		return false, nil
	}
	delete(f.reactions, key)
	return true, nil
}

func (f *fakeReactionRepo) CountsByPostID(postID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, r := range f.reactions {
		if r.PostID == postID {
			counts[r.Reaction]++
		}
	}
	return counts, nil
}

type fakePostRepo struct {
	posts       []*model.Post
	attachments []*model.Attachment

	failCreateAttachment bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{}
}

func (f *fakePostRepo) Create(post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakePostRepo) FindByID(id string) (*model.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			post := *p
			post.Attachments = nil
			for _, a := range f.attachments {
				if a.PostID == id {
					post.Attachments = append(post.Attachments, *a)
				}
			}
			return &post, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePostRepo) FindAll(limit, offset int) ([]*model.Post, error) {
	return f.page(f.posts, limit, offset), nil
}

func (f *fakePostRepo) FindByUserID(userID string, limit, offset int) ([]*model.Post, error) {
	var result []*model.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return f.page(result, limit, offset), nil
}

func (f *fakePostRepo) Search(query string, limit, offset int) ([]*model.Post, error) {
	var result []*model.Post
	for _, p := range f.posts {
		if strings.Contains(p.Title, query) || strings.Contains(p.Content, query) {
			result = append(result, p)
		}
	}
	return f.page(result, limit, offset), nil
}

func (f *fakePostRepo) page(posts []*model.Post, limit, offset int) []*model.Post {
	if offset >= len(posts) {
		return nil
	}
	posts = posts[offset:]
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts
}

func (f *fakePostRepo) Update(post *model.Post) error {
	for i, p := range f.posts {
		if p.ID == post.ID {
			post.UpdatedAt = time.Now()
			f.posts[i] = post
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakePostRepo) Delete(id string) error {
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return f.DeleteAttachmentsByPostID(id)
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakePostRepo) CountByUserID(userID string) (int64, error) {
	var count int64
	for _, p := range f.posts {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakePostRepo) CreateAttachment(attachment *model.Attachment) error {
	if f.failCreateAttachment {
		return errors.New("storage unavailable")
	}
	if attachment.ID == "" {
		attachment.ID = uuid.New().String()
	}
	attachment.CreatedAt = time.Now()
	f.attachments = append(f.attachments, attachment)
	return nil
}

func (f *fakePostRepo) UpdateAttachment(attachment *model.Attachment) error {
	for i, a := range f.attachments {
		if a.ID == attachment.ID {
			f.attachments[i] = attachment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakePostRepo) DeleteAttachmentsByPostID(postID string) error {
	var kept []*model.Attachment
	for _, a := range f.attachments {
		if a.PostID != postID {
			kept = append(kept, a)
		}
	}
	f.attachments = kept
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]*model.Profile // keyed by user ID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (f *fakeProfileRepo) Create(profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) FindByUserID(userID string) (*model.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) Update(profile *model.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) Delete(id string) error {
	for userID, p := range f.profiles {
		if p.ID == id {
			delete(f.profiles, userID)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeMedia implements MediaStorage without any network
type fakeMedia struct {
	failUpload   bool
	noThumbs     bool
	uploads      []string
	imageUploads []string
}

func (f *fakeMedia) UploadFile(data []byte, filename string) (string, error) {
	if f.failUpload {
		return "", errors.New("upload failed")
	}
	f.uploads = append(f.uploads, filename)
	return "https://cdn.example.com/" + filename, nil
}

func (f *fakeMedia) UploadImage(data []byte, filename string) (string, error) {
	if f.failUpload {
		return "", errors.New("upload failed")
	}
	f.imageUploads = append(f.imageUploads, filename)
	return "https://cdn.example.com/img/" + filename, nil
}

func (f *fakeMedia) VideoThumbnailURL(videoURL string) string {
	if f.noThumbs {
		return ""
	}
	return videoURL + ".jpg"
}
