package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rohanpratim/bookworms/models"
)

// pair is a composite key for the follow/like/bookmark sets.
type pair struct {
	a, b uint
}

// memStore is an in-memory Store for service tests. WithTx snapshots the
// whole state before running fn and restores it on error, so transactional
// rollback is observable. failOn injects an error into a named operation.
type memStore struct {
	users     map[uint]*models.User
	posts     map[uint]*models.Post
	comments  map[uint]*models.Comment
	replies   map[uint]*models.CommentReply
	follows   map[pair]bool
	likes     map[pair]bool
	bookmarks map[pair]bool

	nextUserID    uint
	nextPostID    uint
	nextCommentID uint
	nextReplyID   uint

	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint]*models.User{},
		posts:     map[uint]*models.Post{},
		comments:  map[uint]*models.Comment{},
		replies:   map[uint]*models.CommentReply{},
		follows:   map[pair]bool{},
		likes:     map[pair]bool{},
		bookmarks: map[pair]bool{},
		failOn:    map[string]error{},
	}
}

func (m *memStore) fail(op string) error {
	if err, ok := m.failOn[op]; ok {
		return err
	}
	return nil
}

func (m *memStore) seedUser(username, email string) *models.User {
	m.nextUserID++
	u := &models.User{
		ID:        m.nextUserID,
		Username:  username,
		Fullname:  username + " example",
		Email:     email,
		CreatedAt: time.Now(),
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) seedPost(creatorID uint, caption string) *models.Post {
	m.nextPostID++
	p := &models.Post{
		ID:        m.nextPostID,
		CreatorID: creatorID,
		Caption:   caption,
		CreatedAt: time.Now(),
	}
	m.posts[p.ID] = p
	if u, ok := m.users[creatorID]; ok {
		u.PostCount++
	}
	return p
}

func (m *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range m.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range m.posts {
		p := *v
		c.posts[k] = &p
	}
	for k, v := range m.comments {
		cm := *v
		c.comments[k] = &cm
	}
	for k, v := range m.replies {
		r := *v
		c.replies[k] = &r
	}
	for k := range m.follows {
		c.follows[k] = true
	}
	for k := range m.likes {
		c.likes[k] = true
	}
	for k := range m.bookmarks {
		c.bookmarks[k] = true
	}
	c.nextUserID = m.nextUserID
	c.nextPostID = m.nextPostID
	c.nextCommentID = m.nextCommentID
	c.nextReplyID = m.nextReplyID
	c.failOn = m.failOn
	return c
}

func (m *memStore) restore(s *memStore) {
	m.users = s.users
	m.posts = s.posts
	m.comments = s.comments
	m.replies = s.replies
	m.follows = s.follows
	m.likes = s.likes
	m.bookmarks = s.bookmarks
	m.nextUserID = s.nextUserID
	m.nextPostID = s.nextPostID
	m.nextCommentID = s.nextCommentID
	m.nextReplyID = s.nextReplyID
}

func (m *memStore) WithTx(ctx context.Context, fn func(Store) error) error {
	before := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(before)
		return err
	}
	return nil
}

func (m *memStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	if err := m.fail("GetUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	out := *u
	return &out, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: email %s", ErrNotFound, email)
}

func (m *memStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := m.fail("CreateUser"); err != nil {
		return err
	}
	m.nextUserID++
	user.ID = m.nextUserID
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) UpdateUserFields(ctx context.Context, id uint, fields map[string]any) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "username":
			u.Username = s
		case "fullname":
			u.Fullname = s
		case "image":
			u.Image = s
		case "bio":
			u.Bio = s
		}
	}
	return nil
}

func (m *memStore) SearchUsers(ctx context.Context, keyword string, excludeID uint) ([]models.User, error) {
	needle := strings.ToLower(keyword)
	var out []models.User
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), needle) ||
			strings.Contains(strings.ToLower(u.Fullname), needle) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) NewestUsers(ctx context.Context, excludeID uint, limit int) ([]models.User, error) {
	if err := m.fail("NewestUsers"); err != nil {
		return nil, err
	}
	var out []models.User
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if err := m.fail("Followers"); err != nil {
		return nil, err
	}
	var out []models.User
	for edge := range m.follows {
		if edge.b == userID {
			if u, ok := m.users[edge.a]; ok {
				out = append(out, *u)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var out []models.User
	for edge := range m.follows {
		if edge.a == userID {
			if u, ok := m.users[edge.b]; ok {
				out = append(out, *u)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) AddFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	k := pair{followerID, followingID}
	if m.follows[k] {
		return false, nil
	}
	m.follows[k] = true
	return true, nil
}

func (m *memStore) RemoveFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	k := pair{followerID, followingID}
	if !m.follows[k] {
		return false, nil
	}
	delete(m.follows, k)
	return true, nil
}

func (m *memStore) AddToPostCount(ctx context.Context, userID uint, delta int) error {
	if err := m.fail("AddToPostCount"); err != nil {
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	u.PostCount += delta
	return nil
}

func (m *memStore) AddToFollowerCount(ctx context.Context, userID uint, delta int) error {
	if err := m.fail("AddToFollowerCount"); err != nil {
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	u.FollowerCount += delta
	return nil
}

func (m *memStore) AddToFollowingCount(ctx context.Context, userID uint, delta int) error {
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	u.FollowingCount += delta
	return nil
}

func (m *memStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	out := *p
	return &out, nil
}

func (m *memStore) GetPostWithCreator(ctx context.Context, id uint) (*models.Post, error) {
	p, err := m.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if u, ok := m.users[p.CreatorID]; ok {
		p.Creator = *u
	}
	return p, nil
}

func (m *memStore) GetPostDetail(ctx context.Context, id uint) (*models.Post, error) {
	p, err := m.GetPostWithCreator(ctx, id)
	if err != nil {
		return nil, err
	}
	var comments []models.Comment
	for _, c := range m.comments {
		if c.PostID != id {
			continue
		}
		cm := *c
		if u, ok := m.users[cm.UserID]; ok {
			cm.User = *u
		}
		for _, r := range m.replies {
			if r.CommentID == cm.ID {
				rp := *r
				if u, ok := m.users[rp.UserID]; ok {
					rp.User = *u
				}
				cm.Replies = append(cm.Replies, rp)
			}
		}
		comments = append(comments, cm)
	}
	// newest first, matching the production ordering
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID > comments[j].ID })
	p.Comments = comments
	return p, nil
}

func (m *memStore) CreatePost(ctx context.Context, post *models.Post) error {
	if err := m.fail("CreatePost"); err != nil {
		return err
	}
	m.nextPostID++
	post.ID = m.nextPostID
	post.CreatedAt = time.Now()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *memStore) UpdatePostCaption(ctx context.Context, id uint, caption string) error {
	p, ok := m.posts[id]
	if !ok {
		return fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	p.Caption = caption
	return nil
}

func (m *memStore) DeletePost(ctx context.Context, id uint) error {
	if err := m.fail("DeletePost"); err != nil {
		return err
	}
	delete(m.posts, id)
	return nil
}

func (m *memStore) PurgePostRelations(ctx context.Context, postID uint) error {
	for id, c := range m.comments {
		if c.PostID == postID {
			for rid, r := range m.replies {
				if r.CommentID == id {
					delete(m.replies, rid)
				}
			}
			delete(m.comments, id)
		}
	}
	for k := range m.likes {
		if k.a == postID {
			delete(m.likes, k)
		}
	}
	for k := range m.bookmarks {
		if k.a == postID {
			delete(m.bookmarks, k)
		}
	}
	return nil
}

func (m *memStore) AllPosts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	for _, p := range m.posts {
		cp := *p
		if u, ok := m.users[cp.CreatorID]; ok {
			cp.Creator = *u
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) PostsByCreator(ctx context.Context, creatorID uint) ([]models.Post, error) {
	var out []models.Post
	for _, p := range m.posts {
		if p.CreatorID == creatorID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) PostsBookmarkedBy(ctx context.Context, userID uint) ([]models.Post, error) {
	var out []models.Post
	for k := range m.bookmarks {
		if k.b != userID {
			continue
		}
		if p, ok := m.posts[k.a]; ok {
			cp := *p
			if u, uok := m.users[cp.CreatorID]; uok {
				cp.Creator = *u
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) IncrementViewCount(ctx context.Context, postID uint) error {
	if err := m.fail("IncrementViewCount"); err != nil {
		return err
	}
	p, ok := m.posts[postID]
	if !ok {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	p.ViewCount++
	return nil
}

func (m *memStore) AddLike(ctx context.Context, postID, userID uint) (bool, error) {
	k := pair{postID, userID}
	if m.likes[k] {
		return false, nil
	}
	m.likes[k] = true
	return true, nil
}

func (m *memStore) RemoveLike(ctx context.Context, postID, userID uint) (bool, error) {
	k := pair{postID, userID}
	if !m.likes[k] {
		return false, nil
	}
	delete(m.likes, k)
	return true, nil
}

func (m *memStore) AddBookmark(ctx context.Context, postID, userID uint) (bool, error) {
	k := pair{postID, userID}
	if m.bookmarks[k] {
		return false, nil
	}
	m.bookmarks[k] = true
	return true, nil
}

func (m *memStore) RemoveBookmark(ctx context.Context, postID, userID uint) (bool, error) {
	k := pair{postID, userID}
	if !m.bookmarks[k] {
		return false, nil
	}
	delete(m.bookmarks, k)
	return true, nil
}

func (m *memStore) AddToLikeCount(ctx context.Context, postID uint, delta int) error {
	if err := m.fail("AddToLikeCount"); err != nil {
		return err
	}
	p, ok := m.posts[postID]
	if !ok {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	p.LikeCount += delta
	return nil
}

func (m *memStore) AddToBookmarkCount(ctx context.Context, postID uint, delta int) error {
	p, ok := m.posts[postID]
	if !ok {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	p.BookmarkCount += delta
	return nil
}

func (m *memStore) AddToCommentCount(ctx context.Context, postID uint, delta int) error {
	if err := m.fail("AddToCommentCount"); err != nil {
		return err
	}
	p, ok := m.posts[postID]
	if !ok {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	p.CommentCount += delta
	return nil
}

func (m *memStore) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, fmt.Errorf("%w: comment %d", ErrNotFound, id)
	}
	out := *c
	return &out, nil
}

func (m *memStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := m.fail("CreateComment"); err != nil {
		return err
	}
	m.nextCommentID++
	comment.ID = m.nextCommentID
	comment.CreatedAt = time.Now()
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *memStore) DeleteComment(ctx context.Context, id uint) error {
	delete(m.comments, id)
	return nil
}

func (m *memStore) DeleteCommentReplies(ctx context.Context, commentID uint) error {
	for id, r := range m.replies {
		if r.CommentID == commentID {
			delete(m.replies, id)
		}
	}
	return nil
}

func (m *memStore) CreateReply(ctx context.Context, reply *models.CommentReply) error {
	m.nextReplyID++
	reply.ID = m.nextReplyID
	reply.CreatedAt = time.Now()
	cp := *reply
	m.replies[reply.ID] = &cp
	return nil
}

var _ Store = (*memStore)(nil)
