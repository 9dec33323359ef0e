package db

import "time"

// BlogCategory 定义了单层级的文章分类
type BlogCategory struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string
	Color       string `gorm:"size:20"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
