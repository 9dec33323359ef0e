package db

import "time"

// Page 表示独立内容页，如公司介绍、服务说明或法律条款。
// Kind 取值为 company、service 或 legal。
type Page struct {
	ID        uint   `gorm:"primaryKey"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Title     string `gorm:"not null"`
	Summary   string
	Content   string `gorm:"type:text"`
	Kind      string `gorm:"size:20;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
