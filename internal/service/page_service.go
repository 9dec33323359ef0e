package service

import (
	"errors"
	"strings"

	"github.com/brightsite/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrPageInvalidInput = errors.New("page slug, title and content are required")
	ErrPageKindUnknown  = errors.New("unknown page kind")
)

// 页面类型
const (
	PageKindCompany = "company"
	PageKindService = "service"
	PageKindLegal   = "legal"
)

// PageService provides access to standalone marketing pages.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// PageInput 描述创建或更新页面时可设置的字段
type PageInput struct {
	Slug    string
	Title   string
	Summary string
	Content string
	Kind    string
}

// GetBySlug fetches a page for a given slug.
func (s *PageService) GetBySlug(slug string) (*db.Page, error) {
	var page db.Page
	if err := s.db.Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// ListByKind returns pages of one kind ordered by title, or all pages
// when kind is empty.
func (s *PageService) ListByKind(kind string) ([]db.Page, error) {
	query := s.db.Model(&db.Page{})
	if kind != "" {
		if !validPageKind(kind) {
			return nil, ErrPageKindUnknown
		}
		query = query.Where("kind = ?", kind)
	}

	var pages []db.Page
	if err := query.Order("title asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Save creates or updates the page identified by the input slug.
func (s *PageService) Save(input PageInput) (*db.Page, error) {
	slug := strings.TrimSpace(input.Slug)
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if slug == "" || title == "" || content == "" {
		return nil, ErrPageInvalidInput
	}
	if input.Kind != "" && !validPageKind(input.Kind) {
		return nil, ErrPageKindUnknown
	}

	var page db.Page
	err := s.db.Where("slug = ?", slug).First(&page).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		page = db.Page{Slug: slug}
	}

	page.Title = title
	page.Summary = strings.TrimSpace(input.Summary)
	page.Content = content
	if input.Kind != "" {
		page.Kind = input.Kind
	}

	if err := s.db.Save(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func validPageKind(kind string) bool {
	switch kind {
	case PageKindCompany, PageKindService, PageKindLegal:
		return true
	}
	return false
}
