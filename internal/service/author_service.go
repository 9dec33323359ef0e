package service

import (
	"errors"
	"fmt"

	"github.com/brightsite/internal/db"
	"gorm.io/gorm"
)

// ErrAuthorNotFound 在指定作者不存在时返回
var ErrAuthorNotFound = errors.New("author not found")

// Author 是面向调用方的作者结构，社交链接展开为映射
type Author struct {
	ID          uint
	Name        string
	Bio         string
	AvatarURL   string
	SocialLinks map[string]string
}

// AuthorService 负责维护作者信息
type AuthorService struct {
	db *gorm.DB
}

// NewAuthorService 构造 AuthorService
func NewAuthorService(gdb *gorm.DB) *AuthorService {
	return &AuthorService{db: gdb}
}

// List 返回全部作者，按名称升序
func (s *AuthorService) List() ([]Author, error) {
	var rows []db.BlogAuthor
	if err := s.db.Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	authors := make([]Author, 0, len(rows))
	for i := range rows {
		authors = append(authors, transformAuthor(rows[i]))
	}
	return authors, nil
}

// Get 根据主键获取作者
func (s *AuthorService) Get(id uint) (*Author, error) {
	var row db.BlogAuthor
	if err := s.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	author := transformAuthor(row)
	return &author, nil
}

func transformAuthor(row db.BlogAuthor) Author {
	author := Author{
		ID:          row.ID,
		Name:        row.Name,
		Bio:         row.Bio,
		AvatarURL:   row.AvatarURL,
		SocialLinks: map[string]string{},
	}
	for platform, link := range row.SocialLinks {
		if value, ok := link.(string); ok {
			author.SocialLinks[platform] = value
		}
	}
	return author
}
