package db

import "time"

// BlogPost 定义了文章模型，分类与作者均为可选关联。
type BlogPost struct {
	ID             uint   `gorm:"primaryKey"`
	Slug           string `gorm:"uniqueIndex;not null"`
	Title          string `gorm:"not null"`
	Excerpt        string
	Content        string `gorm:"type:text"`
	FeaturedImage  string
	Status         string `gorm:"size:20;not null;default:draft;index"`
	PublishedAt    *time.Time
	ReadTime       int
	ViewCount      int64 `gorm:"not null;default:0"`
	SEOTitle       string
	SEODescription string
	Featured       bool  `gorm:"not null;default:false"`
	CategoryID     *uint `gorm:"index"`
	Category       *BlogCategory
	AuthorID       *uint `gorm:"index"`
	Author         *BlogAuthor
	Tags           []BlogTag `gorm:"many2many:blog_post_tags;"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
