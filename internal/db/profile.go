package db

import "time"

// Profile 为账号附加展示信息与角色。
// 主键与 users.id 一致。IsActive 使用指针以区分未设置与显式 false。
type Profile struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"not null"`
	FullName  string
	AvatarURL string
	Role      string `gorm:"size:20"`
	IsActive  *bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
