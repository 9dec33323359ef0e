package service

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/brightsite/internal/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAuthNotConfigured  = errors.New("auth backend is not configured")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
)

// 角色取值
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

const resetTokenTTL = 2 * time.Hour

// AuthUser 表示一次已认证会话的主体
type AuthUser struct {
	ID      uint
	Email   string
	Profile *UserProfile
}

// UserProfile 是附加在账号上的展示信息与角色
type UserProfile struct {
	ID        uint
	Email     string
	FullName  string
	AvatarURL string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate 描述允许修改的 profile 字段，指针判断是否显式传入
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
	Role      *string
	IsActive  *bool
}

// Mailer 负责投递密码重置邮件
type Mailer interface {
	SendPasswordReset(email, link string) error
}

// AuthService wraps credential checks and profile augmentation. Unlike
// the blog read path, failures here surface as errors so login forms
// can show them.
type AuthService struct {
	db     *gorm.DB
	mailer Mailer
	logger zerolog.Logger

	mu          sync.Mutex
	subscribers map[int]func(*AuthUser)
	nextSubID   int
}

// NewAuthService creates an AuthService instance. A nil gdb marks the
// backend as not configured: reads return nil and writes fail fast.
func NewAuthService(gdb *gorm.DB, mailer Mailer, logger zerolog.Logger) *AuthService {
	return &AuthService{
		db:          gdb,
		mailer:      mailer,
		logger:      logger.With().Str("service", "auth").Logger(),
		subscribers: make(map[int]func(*AuthUser)),
	}
}

// Configured 报告后端是否可用
func (s *AuthService) Configured() bool {
	return s != nil && s.db != nil
}

// CurrentUser rebuilds the session subject from storage. A missing
// account, an unconfigured backend and a storage error all collapse to
// nil; only the error case is logged.
func (s *AuthService) CurrentUser(userID uint) *AuthUser {
	if !s.Configured() || userID == 0 {
		return nil
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("load current user")
		}
		return nil
	}

	return s.augment(user)
}

// SignIn 校验邮箱与密码，成功后返回附加 profile 的用户
func (s *AuthService) SignIn(email, password string) (*AuthUser, error) {
	if !s.Configured() {
		return nil, ErrAuthNotConfigured
	}

	var user db.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("sign in lookup")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	authUser := s.augment(user)
	s.notify(authUser)
	return authUser, nil
}

// SignUp 创建账号与 profile 行，fullName 作为附加资料写入
func (s *AuthService) SignUp(email, password, fullName string) (*AuthUser, error) {
	if !s.Configured() {
		return nil, ErrAuthNotConfigured
	}

	normalized := normalizeEmail(email)
	if normalized == "" || strings.TrimSpace(password) == "" {
		return nil, errors.New("email and password are required")
	}

	var existing db.User
	if err := s.db.Where("email = ?", normalized).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error().Err(err).Msg("sign up lookup")
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Email: normalized, Password: string(hashed)}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		active := true
		profile := db.Profile{
			ID:       user.ID,
			Email:    normalized,
			FullName: strings.TrimSpace(fullName),
			Role:     RoleUser,
			IsActive: &active,
		}
		return tx.Create(&profile).Error
	}); err != nil {
		s.logger.Error().Err(err).Msg("sign up")
		return nil, err
	}

	authUser := s.augment(user)
	s.notify(authUser)
	return authUser, nil
}

// SignOut 通知订阅方会话已结束；会话本身由 handler 层清除
func (s *AuthService) SignOut() {
	if !s.Configured() {
		return
	}
	s.notify(nil)
}

// ResetPassword issues a one-time token and hands the reset link to the
// mailer. The redirect target comes from the caller's origin.
func (s *AuthService) ResetPassword(email, redirectURL string) error {
	if !s.Configured() {
		return ErrAuthNotConfigured
	}

	var user db.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("reset password lookup")
		return err
	}

	reset := db.PasswordReset{
		UserID:      user.ID,
		Token:       uuid.NewString(),
		RedirectURL: redirectURL,
		ExpiresAt:   time.Now().Add(resetTokenTTL),
	}
	if err := s.db.Create(&reset).Error; err != nil {
		s.logger.Error().Err(err).Msg("create reset token")
		return err
	}

	if s.mailer == nil {
		return nil
	}
	return s.mailer.SendPasswordReset(user.Email, buildResetLink(redirectURL, reset.Token))
}

// CompleteReset 校验令牌并改写密码，令牌只能使用一次
func (s *AuthService) CompleteReset(token, newPassword string) error {
	if !s.Configured() {
		return ErrAuthNotConfigured
	}
	if strings.TrimSpace(newPassword) == "" {
		return errors.New("new password is required")
	}

	var reset db.PasswordReset
	if err := s.db.Where("token = ? AND used_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		s.logger.Error().Err(err).Msg("reset token lookup")
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.User{}).
			Where("id = ?", reset.UserID).
			Update("password", string(hashed)).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&db.PasswordReset{}).
			Where("id = ?", reset.ID).
			Update("used_at", &now).Error
	})
}

// UpdateProfile writes the allowed fields, creating the row when the
// account predates the profiles table.
func (s *AuthService) UpdateProfile(userID uint, update ProfileUpdate) (*UserProfile, error) {
	if !s.Configured() {
		return nil, ErrAuthNotConfigured
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("update profile lookup")
		return nil, err
	}

	var profile db.Profile
	if err := s.db.First(&profile, userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("load profile")
			return nil, err
		}
		profile = db.Profile{ID: user.ID, Email: user.Email}
	}

	if update.FullName != nil {
		profile.FullName = strings.TrimSpace(*update.FullName)
	}
	if update.AvatarURL != nil {
		profile.AvatarURL = strings.TrimSpace(*update.AvatarURL)
	}
	if update.Role != nil {
		profile.Role = *update.Role
	}
	if update.IsActive != nil {
		active := *update.IsActive
		profile.IsActive = &active
	}

	if err := s.db.Save(&profile).Error; err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("save profile")
		return nil, err
	}

	return transformProfile(profile), nil
}

// OnAuthChange registers a callback invoked with the new subject on
// sign-in and nil on sign-out. The returned func removes the
// subscription. A no-op pair is returned when unconfigured.
func (s *AuthService) OnAuthChange(fn func(*AuthUser)) func() {
	if !s.Configured() || fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) notify(user *AuthUser) {
	s.mu.Lock()
	callbacks := make([]func(*AuthUser), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(user)
	}
}

// augment 组合账号与 profile 行；profile 缺失时仅返回账号信息
func (s *AuthService) augment(user db.User) *AuthUser {
	authUser := &AuthUser{ID: user.ID, Email: user.Email}

	var profile db.Profile
	if err := s.db.First(&profile, user.ID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("load profile")
		}
		return authUser
	}

	authUser.Profile = transformProfile(profile)
	return authUser
}

// transformProfile 填充默认值：角色缺省为 user，激活标记缺省为 true
func transformProfile(row db.Profile) *UserProfile {
	profile := &UserProfile{
		ID:        row.ID,
		Email:     row.Email,
		FullName:  row.FullName,
		AvatarURL: row.AvatarURL,
		Role:      row.Role,
		IsActive:  true,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if profile.Role == "" {
		profile.Role = RoleUser
	}
	if row.IsActive != nil {
		profile.IsActive = *row.IsActive
	}
	return profile
}

// HasRole 仅当 profile 存在且角色命中时为真
func HasRole(user *AuthUser, roles ...string) bool {
	if user == nil || user.Profile == nil {
		return false
	}
	for _, role := range roles {
		if user.Profile.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin 判断管理员角色
func IsAdmin(user *AuthUser) bool {
	return HasRole(user, RoleAdmin)
}

// CanEdit 判断是否具备内容编辑权限
func CanEdit(user *AuthUser) bool {
	return HasRole(user, RoleAdmin, RoleEditor)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func buildResetLink(redirectURL, token string) string {
	parsed, err := url.Parse(redirectURL)
	if err != nil {
		return redirectURL
	}
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
