package handler

import (
	"errors"
	"net/http"

	"github.com/brightsite/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserKey = "user_id"

	// currentUserContextKey 缓存中间件加载过的用户，避免重复查询
	currentUserContextKey = "__current_user"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// SignUp 注册新账号并建立会话
func (a *API) SignUp(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "invalid signup payload") {
		return
	}

	user, err := a.auth.SignUp(payload.Email, payload.Password, payload.FullName)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrEmailTaken) {
			status = http.StatusConflict
		}
		respondError(c, status, err.Error())
		return
	}

	if !a.saveSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": serializeAuthUser(user)})
}

// Login 校验凭据并建立会话
func (a *API) Login(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "invalid login payload") {
		return
	}

	user, err := a.auth.SignIn(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !a.saveSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": serializeAuthUser(user)})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}

	a.auth.SignOut()
	c.Status(http.StatusNoContent)
}

// Me 返回当前会话用户；没有会话时返回 null 而不是错误
func (a *API) Me(c *gin.Context) {
	user := a.auth.CurrentUser(sessionUserID(c))
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": serializeAuthUser(user)})
}

// ResetPassword 触发重置邮件，跳转地址取自请求来源
func (a *API) ResetPassword(c *gin.Context) {
	var payload struct {
		Email string `json:"email"`
	}
	if !bindJSON(c, &payload, "invalid reset payload") {
		return
	}

	redirectURL := requestOrigin(c) + "/reset-password"
	if err := a.auth.ResetPassword(payload.Email, redirectURL); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		respondError(c, status, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// ConfirmResetPassword 用令牌改写密码
func (a *API) ConfirmResetPassword(c *gin.Context) {
	var payload struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &payload, "invalid reset payload") {
		return
	}

	if err := a.auth.CompleteReset(payload.Token, payload.Password); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrResetTokenInvalid) {
			status = http.StatusBadRequest
		}
		respondError(c, status, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

type profilePayload struct {
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

// UpdateOwnProfile 允许登录用户更新自己的展示信息。
// 角色与激活标记只能由管理员通过 UpdateUserProfile 修改。
func (a *API) UpdateOwnProfile(c *gin.Context) {
	var payload profilePayload
	if !bindJSON(c, &payload, "invalid profile payload") {
		return
	}

	update := service.ProfileUpdate{
		FullName:  payload.FullName,
		AvatarURL: payload.AvatarURL,
	}

	profile, err := a.auth.UpdateProfile(sessionUserID(c), update)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": serializeProfile(profile)})
}

// UpdateUserProfile 管理员修改任意用户的 profile，含角色与激活标记
func (a *API) UpdateUserProfile(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload profilePayload
	if !bindJSON(c, &payload, "invalid profile payload") {
		return
	}

	profile, err := a.auth.UpdateProfile(id, service.ProfileUpdate{
		FullName:  payload.FullName,
		AvatarURL: payload.AvatarURL,
		Role:      payload.Role,
		IsActive:  payload.IsActive,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		respondError(c, status, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": serializeProfile(profile)})
}

// AuthRequired 要求存在登录会话
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionUserID(c) == 0 {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireEditor 要求 admin 或 editor 角色
func (a *API) RequireEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := a.contextUser(c)
		if !service.CanEdit(user) {
			respondError(c, http.StatusForbidden, "editor access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin 要求 admin 角色
func (a *API) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := a.contextUser(c)
		if !service.IsAdmin(user) {
			respondError(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *API) saveSession(c *gin.Context, userID uint) bool {
	session := sessions.Default(c)
	session.Set(sessionUserKey, userID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return false
	}
	return true
}

func (a *API) contextUser(c *gin.Context) *service.AuthUser {
	if cached, exists := c.Get(currentUserContextKey); exists {
		if user, ok := cached.(*service.AuthUser); ok {
			return user
		}
	}

	user := a.auth.CurrentUser(sessionUserID(c))
	c.Set(currentUserContextKey, user)
	return user
}

func sessionUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	raw := session.Get(sessionUserKey)
	if raw == nil {
		return 0
	}
	if id, ok := raw.(uint); ok {
		return id
	}
	return 0
}

func serializeAuthUser(user *service.AuthUser) gin.H {
	payload := gin.H{
		"id":    user.ID,
		"email": user.Email,
	}
	if user.Profile != nil {
		payload["profile"] = serializeProfile(user.Profile)
	}
	return payload
}

func serializeProfile(profile *service.UserProfile) gin.H {
	return gin.H{
		"id":        profile.ID,
		"email":     profile.Email,
		"fullName":  profile.FullName,
		"avatarUrl": profile.AvatarURL,
		"role":      profile.Role,
		"isActive":  profile.IsActive,
		"createdAt": profile.CreatedAt,
		"updatedAt": profile.UpdatedAt,
	}
}
