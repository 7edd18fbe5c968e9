package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rohanpratim/bookworms/services"
	"github.com/rohanpratim/bookworms/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles signup, login, logout, and the authenticated
// bootstrap view.
type AuthController struct {
	users *services.UserService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Register handles local account registration with bcrypt hashing. The
// response embeds a suggestion list so a fresh client can render its
// follow prompts without a second round trip.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
		Fullname string `json:"fullname" binding:"required,min=1,max=128"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=64"`
		Image    string `json:"image"`
		Bio      string `json:"bio"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42201, "invalid request payload")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user, err := a.users.Register(ctx.Request.Context(), services.RegisterInput{
		Username:     utils.Sanitize(req.Username),
		Fullname:     utils.Sanitize(req.Fullname),
		Email:        req.Email,
		PasswordHash: hash,
		Image:        strings.TrimSpace(req.Image),
		Bio:          utils.Sanitize(req.Bio),
	})
	if err != nil {
		respondServiceError(ctx, 50002, err, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	// Suggestion failure never blocks a successful signup.
	suggestions, err := a.users.Suggestions(ctx.Request.Context(), user.ID)
	if err != nil {
		suggestions = nil
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{
		"token":       token,
		"expires_at":  time.Now().Add(tokenLifetime),
		"user":        user,
		"suggestions": suggestions,
	})
}

// Login verifies credentials and returns the full bootstrap view with token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42202, "invalid request payload")
		return
	}

	user, err := a.users.ByEmail(ctx.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	boot, err := a.users.Bootstrap(ctx.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(ctx, 50005, err, "failed to load profile")
		return
	}

	utils.Success(ctx, gin.H{
		"token":       token,
		"expires_at":  time.Now().Add(tokenLifetime),
		"user":        boot.Profile.User,
		"followers":   boot.Profile.Followers,
		"following":   boot.Profile.Following,
		"suggestions": boot.Suggestions,
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's bootstrap view: profile with
// follower/following expansion plus suggestions. A failed suggestion query
// degrades the payload instead of failing it.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	boot, err := a.users.Bootstrap(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, 50006, err, "failed to load profile")
		return
	}

	utils.Success(ctx, gin.H{
		"user":        boot.Profile.User,
		"followers":   boot.Profile.Followers,
		"following":   boot.Profile.Following,
		"suggestions": boot.Suggestions,
	})
}

// UpdateProfile allows the authenticated user to update basic profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
		Fullname string `json:"fullname" binding:"required,min=1,max=128"`
		Image    string `json:"image"`
		Bio      string `json:"bio"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42203, "invalid request payload")
		return
	}

	user, err := a.users.UpdateProfile(ctx.Request.Context(), userID, userID, services.ProfileUpdate{
		Username: utils.Sanitize(req.Username),
		Fullname: utils.Sanitize(req.Fullname),
		Image:    strings.TrimSpace(req.Image),
		Bio:      utils.Sanitize(req.Bio),
	})
	if err != nil {
		respondServiceError(ctx, 50007, err, "failed to update profile")
		return
	}

	utils.InvalidateByPrefix("cache:user:profile:" + strconv.Itoa(int(userID)))
	utils.Success(ctx, gin.H{"user": user})
}
