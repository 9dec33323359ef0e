package db

import "time"

// BlogTag 定义了标签模型
type BlogTag struct {
	ID        uint       `gorm:"primaryKey"`
	Name      string     `gorm:"uniqueIndex;not null"`
	Slug      string     `gorm:"uniqueIndex;not null"`
	Posts     []BlogPost `gorm:"many2many:blog_post_tags;"`
	CreatedAt time.Time
}
