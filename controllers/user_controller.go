package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rohanpratim/bookworms/services"
	"github.com/rohanpratim/bookworms/utils"
)

// UserController serves user lookup, search, suggestions, and the follow graph.
type UserController struct {
	users *services.UserService
}

// NewUserController creates a new UserController instance.
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// GetUser returns a user's profile with followers and following expanded.
func (u *UserController) GetUser(ctx *gin.Context) {
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("cache:user:profile:%d", targetID)
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	profile, err := u.users.Profile(ctx.Request.Context(), targetID)
	if err != nil {
		respondServiceError(ctx, 50010, err, "failed to load user")
		return
	}

	payload := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{
		"user":      profile.User,
		"followers": profile.Followers,
		"following": profile.Following,
	}}
	utils.CacheSetJSON(cacheKey, payload, 60*time.Second)
	ctx.JSON(http.StatusOK, payload)
}

// Search finds users by username or fullname, excluding the caller.
func (u *UserController) Search(ctx *gin.Context) {
	userID, _ := getUserID(ctx)
	keyword := strings.TrimSpace(ctx.Query("search"))
	if keyword == "" {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42210, "search keyword is required")
		return
	}

	users, err := u.users.Search(ctx.Request.Context(), userID, keyword)
	if err != nil {
		respondServiceError(ctx, 50011, err, "failed to search users")
		return
	}

	utils.Success(ctx, gin.H{"users": users})
}

// Suggestions returns the newest registered users the caller might follow.
func (u *UserController) Suggestions(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	users, err := u.users.Suggestions(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, 50012, err, "failed to load suggestions")
		return
	}

	utils.Success(ctx, gin.H{"suggestions": users})
}

// Follow makes the caller follow the target user. Re-following is a no-op.
func (u *UserController) Follow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := u.users.Follow(ctx.Request.Context(), userID, targetID); err != nil {
		respondServiceError(ctx, 50013, err, "failed to follow user")
		return
	}

	u.invalidateGraph(userID, targetID)
	utils.Success(ctx, gin.H{"following": targetID})
}

// Unfollow removes the caller's follow edge. Unfollowing a user the caller
// does not follow is a no-op.
func (u *UserController) Unfollow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := u.users.Unfollow(ctx.Request.Context(), userID, targetID); err != nil {
		respondServiceError(ctx, 50014, err, "failed to unfollow user")
		return
	}

	u.invalidateGraph(userID, targetID)
	utils.Success(ctx, gin.H{"unfollowed": targetID})
}

func (u *UserController) invalidateGraph(userID, targetID uint) {
	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:profile:%d", userID))
	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:profile:%d", targetID))
}
