package db

import "time"

// PasswordReset 记录一次性密码重置令牌。
type PasswordReset struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	Token       string `gorm:"uniqueIndex;not null;size:64"`
	RedirectURL string
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}
