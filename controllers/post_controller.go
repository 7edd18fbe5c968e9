package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rohanpratim/bookworms/models"
	"github.com/rohanpratim/bookworms/services"
	"github.com/rohanpratim/bookworms/utils"
)

const (
	feedCacheKey = "cache:posts:feed"
	feedCacheTTL = 30 * time.Second
)

// PostController serves the post feed plus per-post mutations: captions,
// comments, replies, likes, and bookmarks.
type PostController struct {
	posts *services.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

// Feed returns every post newest first. The list is cached briefly; any
// post mutation invalidates it.
func (p *PostController) Feed(ctx *gin.Context) {
	if cached, ok := utils.CacheGetBytes(feedCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	posts, err := p.posts.Feed(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, 50020, err, "failed to load posts")
		return
	}

	payload := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"posts": posts}}
	utils.CacheSetJSON(feedCacheKey, payload, feedCacheTTL)
	ctx.JSON(http.StatusOK, payload)
}

// GetPost returns a single post with its creator and comment thread. The
// read also counts as a view, so this endpoint is never served from cache.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	post, err := p.posts.ByID(ctx.Request.Context(), postID)
	if err != nil {
		respondServiceError(ctx, 50021, err, "failed to load post")
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// ListUserPosts returns every post by the given creator, newest first.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	creatorID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("cache:user:%d:posts", creatorID)
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	posts, err := p.posts.ByCreator(ctx.Request.Context(), creatorID)
	if err != nil {
		respondServiceError(ctx, 50022, err, "failed to load posts")
		return
	}

	payload := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"posts": posts}}
	utils.CacheSetJSON(cacheKey, payload, feedCacheTTL)
	ctx.JSON(http.StatusOK, payload)
}

// Bookmarks returns the posts the caller has bookmarked, newest first.
func (p *PostController) Bookmarks(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	posts, err := p.posts.BookmarkedBy(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, 50023, err, "failed to load bookmarks")
		return
	}

	utils.Success(ctx, gin.H{"posts": posts})
}

// CreatePost creates a post owned by the caller.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Caption string `json:"caption" binding:"required,max=4096"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42220, "caption is required")
		return
	}

	post, err := p.posts.Create(ctx.Request.Context(), userID, utils.Sanitize(req.Caption))
	if err != nil {
		respondServiceError(ctx, 50024, err, "failed to create post")
		return
	}

	p.invalidatePostCaches(userID)
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// UpdatePost rewrites the caption. Only the creator may edit.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Caption string `json:"caption" binding:"required,max=4096"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42221, "caption is required")
		return
	}

	post, err := p.posts.UpdateCaption(ctx.Request.Context(), userID, postID, utils.Sanitize(req.Caption))
	if err != nil {
		respondServiceError(ctx, 50025, err, "failed to update post")
		return
	}

	p.invalidatePostCaches(userID)
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post together with its comments, likes, and
// bookmarks. Only the creator may delete.
func (p *PostController) DeletePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := p.posts.Delete(ctx.Request.Context(), userID, postID); err != nil {
		respondServiceError(ctx, 50026, err, "failed to delete post")
		return
	}

	p.invalidatePostCaches(userID)
	utils.Success(ctx, gin.H{"deleted": postID})
}

// CreateComment adds a comment to a post and returns the refreshed post.
func (p *PostController) CreateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required,max=2048"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42222, "comment text is required")
		return
	}

	post, err := p.posts.AddComment(ctx.Request.Context(), userID, postID, utils.Sanitize(req.Text))
	if err != nil {
		respondServiceError(ctx, 50027, err, "failed to add comment")
		return
	}

	// the creator's cached list carries comment counts, drop it too
	p.invalidatePostCaches(post.CreatorID)
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// DeleteComment removes a comment and its replies. Only the comment's
// author may delete.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	commentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	post, err := p.posts.DeleteComment(ctx.Request.Context(), userID, commentID)
	if err != nil {
		respondServiceError(ctx, 50028, err, "failed to delete comment")
		return
	}

	p.invalidatePostCaches(post.CreatorID)
	utils.Success(ctx, gin.H{"deleted": commentID})
}

// CreateReply adds a reply under an existing comment.
func (p *PostController) CreateReply(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	commentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required,max=2048"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42223, "reply text is required")
		return
	}

	reply, err := p.posts.AddReply(ctx.Request.Context(), userID, commentID, utils.Sanitize(req.Text))
	if err != nil {
		respondServiceError(ctx, 50029, err, "failed to add reply")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"reply": reply})
}

// Like records the caller's like. Liking twice is a no-op.
func (p *PostController) Like(ctx *gin.Context) {
	p.membership(ctx, p.posts.Like, "failed to like post", 50030)
}

// Unlike removes the caller's like if present.
func (p *PostController) Unlike(ctx *gin.Context) {
	p.membership(ctx, p.posts.Unlike, "failed to unlike post", 50031)
}

// Bookmark saves the post to the caller's bookmarks. Idempotent.
func (p *PostController) Bookmark(ctx *gin.Context) {
	p.membership(ctx, p.posts.Bookmark, "failed to bookmark post", 50032)
}

// Unbookmark removes the post from the caller's bookmarks if present.
func (p *PostController) Unbookmark(ctx *gin.Context) {
	p.membership(ctx, p.posts.Unbookmark, "failed to unbookmark post", 50033)
}

func (p *PostController) membership(ctx *gin.Context, op func(ctx context.Context, actorID, postID uint) (*models.Post, error), fallback string, code int) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	post, err := op(ctx.Request.Context(), userID, postID)
	if err != nil {
		respondServiceError(ctx, code, err, fallback)
		return
	}

	// like/bookmark counts show up in the creator's cached list as well
	p.invalidatePostCaches(post.CreatorID)
	utils.Success(ctx, gin.H{"post": postID})
}

func (p *PostController) invalidatePostCaches(userID uint) {
	utils.InvalidateByPrefix(feedCacheKey)
	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:%d:posts", userID))
	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:profile:%d", userID))
}
