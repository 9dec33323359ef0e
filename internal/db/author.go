package db

import (
	"time"

	"gorm.io/datatypes"
)

// BlogAuthor 定义了作者模型
// SocialLinks 以 JSON 形式保存平台名到主页链接的映射
type BlogAuthor struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Bio         string `gorm:"type:text"`
	AvatarURL   string
	SocialLinks datatypes.JSONMap
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
