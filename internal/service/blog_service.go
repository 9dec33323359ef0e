package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/brightsite/internal/db"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrNotImplemented 由未开放的写入操作返回
var ErrNotImplemented = errors.New("post authoring is not implemented")

const (
	defaultPageSize = 10
	defaultReadTime = 5

	// StatusPublished 是列表查询的默认状态过滤值
	StatusPublished = "published"
)

// BlogService wraps blog post read operations. Storage failures are
// logged and degrade to empty results so public pages keep rendering.
type BlogService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewBlogService creates a BlogService instance.
func NewBlogService(gdb *gorm.DB, logger zerolog.Logger) *BlogService {
	return &BlogService{
		db:     gdb,
		logger: logger.With().Str("service", "blog").Logger(),
	}
}

// BlogPost 是返回给调用方的扁平文章结构
type BlogPost struct {
	ID             uint
	Slug           string
	Title          string
	Excerpt        string
	Content        string
	FeaturedImage  string
	Status         string
	PublishedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ReadTime       int
	ViewCount      int64
	SEOTitle       string
	SEODescription string
	Featured       bool
	Category       *CategoryRef
	Author         *AuthorRef
	Tags           []TagRef
}

// CategoryRef 是文章上内联的分类信息
type CategoryRef struct {
	ID    uint
	Name  string
	Slug  string
	Color string
}

// AuthorRef 是文章上内联的作者信息
type AuthorRef struct {
	ID          uint
	Name        string
	Bio         string
	AvatarURL   string
	SocialLinks map[string]string
}

// TagRef 是文章上内联的标签信息
type TagRef struct {
	ID   uint
	Name string
	Slug string
}

// Category 用于分类列表接口
type Category struct {
	ID          uint
	Name        string
	Slug        string
	Description string
	Color       string
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Status       string
	CategorySlug string
	Featured     *bool
	Search       string
	Limit        int
	Offset       int
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts   []BlogPost
	Total   int64
	HasMore bool
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Slug           string
	Title          string
	Excerpt        string
	Content        string
	FeaturedImage  string
	Status         string
	SEOTitle       string
	SEODescription string
	Featured       bool
	CategoryID     *uint
	AuthorID       *uint
	TagIDs         []uint
}

// ListPosts provides paginated posts based on filters. It never fails:
// any storage error is logged and an empty result is returned so callers
// treat it like a legitimately empty list.
func (s *BlogService) ListPosts(filter PostFilter) *PostListResult {
	status := filter.Status
	if status == "" {
		status = StatusPublished
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var total int64
	countQuery := s.applyFilters(s.db.Model(&db.BlogPost{}), status, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("count posts")
		return emptyListResult()
	}

	var ids []uint
	pageQuery := s.applyFilters(s.db.Model(&db.BlogPost{}), status, filter).
		Order("blog_posts.published_at desc, blog_posts.id desc").
		Limit(limit).
		Offset(offset)
	if err := pageQuery.Pluck("blog_posts.id", &ids).Error; err != nil {
		s.logger.Error().Err(err).Msg("select post page")
		return emptyListResult()
	}

	posts, err := s.collectPosts(ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("load post page")
		return emptyListResult()
	}

	return &PostListResult{
		Posts:   posts,
		Total:   total,
		HasMore: int64(offset+limit) < total,
	}
}

// GetPostBySlug fetches a single published post. Both a missing row and
// a storage error collapse to nil; the latter is logged.
func (s *BlogService) GetPostBySlug(slug string) *BlogPost {
	rows, err := s.postRows(func(query *gorm.DB) *gorm.DB {
		return query.Where("blog_posts.slug = ? AND blog_posts.status = ?", slug, StatusPublished)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("get post by slug")
		return nil
	}

	posts := groupPostRows(rows)
	if len(posts) == 0 {
		return nil
	}
	return &posts[0]
}

// ListCategories returns all categories ordered by name ascending.
func (s *BlogService) ListCategories() []Category {
	var rows []db.BlogCategory
	if err := s.db.Order("name asc").Find(&rows).Error; err != nil {
		s.logger.Error().Err(err).Msg("list categories")
		return []Category{}
	}

	categories := make([]Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, Category{
			ID:          row.ID,
			Name:        row.Name,
			Slug:        row.Slug,
			Description: row.Description,
			Color:       row.Color,
		})
	}
	return categories
}

// SearchPosts 对标题、摘要和正文做大小写不敏感的子串匹配
func (s *BlogService) SearchPosts(query string, limit int) []BlogPost {
	if limit <= 0 {
		limit = defaultPageSize
	}

	result := s.ListPosts(PostFilter{
		Search: strings.TrimSpace(query),
		Limit:  limit,
	})
	return result.Posts
}

// IncrementViewCount bumps the view counter atomically. It is
// fire-and-forget: failures are logged and never surfaced, so view
// counting cannot block content rendering.
func (s *BlogService) IncrementViewCount(slug string) {
	result := s.db.Model(&db.BlogPost{}).
		Where("slug = ?", slug).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Str("slug", slug).Msg("increment view count")
	}
}

// CreatePost 尚未开放，调用方会得到明确的未实现错误
func (s *BlogService) CreatePost(input PostInput) (*BlogPost, error) {
	return nil, ErrNotImplemented
}

// UpdatePost 尚未开放
func (s *BlogService) UpdatePost(id uint, input PostInput) (*BlogPost, error) {
	return nil, ErrNotImplemented
}

// DeletePost 尚未开放
func (s *BlogService) DeletePost(id uint) error {
	return ErrNotImplemented
}

func emptyListResult() *PostListResult {
	return &PostListResult{Posts: []BlogPost{}}
}

func (s *BlogService) applyFilters(query *gorm.DB, status string, filter PostFilter) *gorm.DB {
	query = query.Where("blog_posts.status = ?", status)

	if filter.CategorySlug != "" {
		subQuery := s.db.Model(&db.BlogCategory{}).
			Select("id").
			Where("slug = ?", filter.CategorySlug)
		query = query.Where("blog_posts.category_id IN (?)", subQuery)
	}

	if filter.Featured != nil {
		query = query.Where("blog_posts.featured = ?", *filter.Featured)
	}

	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"(LOWER(blog_posts.title) LIKE ? OR LOWER(blog_posts.excerpt) LIKE ? OR LOWER(blog_posts.content) LIKE ?)",
			needle, needle, needle,
		)
	}

	return query
}

// postRow 是连接查询的一行。标签连接会让同一篇文章出现多行，
// 之后由 groupPostRows 收敛。
type postRow struct {
	ID             uint
	Slug           string
	Title          string
	Excerpt        sql.NullString
	Content        string
	FeaturedImage  sql.NullString
	Status         string
	PublishedAt    sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ReadTime       sql.NullInt64
	ViewCount      sql.NullInt64
	SEOTitle       sql.NullString
	SEODescription sql.NullString
	Featured       bool
	CategoryID     sql.NullInt64
	CategoryName   sql.NullString
	CategorySlug   sql.NullString
	CategoryColor  sql.NullString
	AuthorID       sql.NullInt64
	AuthorName     sql.NullString
	AuthorBio      sql.NullString
	AuthorAvatar   sql.NullString
	AuthorSocials  sql.NullString
	TagID          sql.NullInt64
	TagName        sql.NullString
	TagSlug        sql.NullString
}

const postRowColumns = "blog_posts.id, blog_posts.slug, blog_posts.title, blog_posts.excerpt, " +
	"blog_posts.content, blog_posts.featured_image, blog_posts.status, blog_posts.published_at, " +
	"blog_posts.created_at, blog_posts.updated_at, blog_posts.read_time, blog_posts.view_count, " +
	"blog_posts.seo_title, blog_posts.seo_description, blog_posts.featured, " +
	"blog_categories.id AS category_id, blog_categories.name AS category_name, " +
	"blog_categories.slug AS category_slug, blog_categories.color AS category_color, " +
	"blog_authors.id AS author_id, blog_authors.name AS author_name, blog_authors.bio AS author_bio, " +
	"blog_authors.avatar_url AS author_avatar, blog_authors.social_links AS author_socials, " +
	"blog_tags.id AS tag_id, blog_tags.name AS tag_name, blog_tags.slug AS tag_slug"

func (s *BlogService) postRows(apply func(*gorm.DB) *gorm.DB) ([]postRow, error) {
	query := s.db.Table("blog_posts").
		Select(postRowColumns).
		Joins("LEFT JOIN blog_categories ON blog_categories.id = blog_posts.category_id").
		Joins("LEFT JOIN blog_authors ON blog_authors.id = blog_posts.author_id").
		Joins("LEFT JOIN blog_post_tags ON blog_post_tags.blog_post_id = blog_posts.id").
		Joins("LEFT JOIN blog_tags ON blog_tags.id = blog_post_tags.blog_tag_id").
		Order("blog_posts.published_at desc, blog_posts.id desc")

	var rows []postRow
	if err := apply(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BlogService) collectPosts(ids []uint) ([]BlogPost, error) {
	if len(ids) == 0 {
		return []BlogPost{}, nil
	}

	rows, err := s.postRows(func(query *gorm.DB) *gorm.DB {
		return query.Where("blog_posts.id IN ?", ids)
	})
	if err != nil {
		return nil, err
	}
	return groupPostRows(rows), nil
}

// groupPostRows 将标签连接产生的多行记录按文章 ID 收敛为单条记录，
// 单次线性遍历，保持行序。
func groupPostRows(rows []postRow) []BlogPost {
	order := make([]uint, 0, len(rows))
	grouped := make(map[uint]*BlogPost, len(rows))

	for i := range rows {
		row := rows[i]
		post, ok := grouped[row.ID]
		if !ok {
			post = transformPostRow(row)
			grouped[row.ID] = post
			order = append(order, row.ID)
		}
		if row.TagID.Valid {
			post.Tags = append(post.Tags, TagRef{
				ID:   uint(row.TagID.Int64),
				Name: row.TagName.String,
				Slug: row.TagSlug.String,
			})
		}
	}

	posts := make([]BlogPost, 0, len(order))
	for _, id := range order {
		posts = append(posts, *grouped[id])
	}
	return posts
}

func transformPostRow(row postRow) *BlogPost {
	post := &BlogPost{
		ID:             row.ID,
		Slug:           row.Slug,
		Title:          row.Title,
		Excerpt:        row.Excerpt.String,
		Content:        row.Content,
		FeaturedImage:  row.FeaturedImage.String,
		Status:         row.Status,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		ReadTime:       defaultReadTime,
		SEOTitle:       row.SEOTitle.String,
		SEODescription: row.SEODescription.String,
		Featured:       row.Featured,
		Tags:           []TagRef{},
	}

	if row.PublishedAt.Valid {
		publishedAt := row.PublishedAt.Time
		post.PublishedAt = &publishedAt
	}
	if row.ReadTime.Valid && row.ReadTime.Int64 > 0 {
		post.ReadTime = int(row.ReadTime.Int64)
	}
	if row.ViewCount.Valid {
		post.ViewCount = row.ViewCount.Int64
	}

	if row.CategoryID.Valid {
		post.Category = &CategoryRef{
			ID:    uint(row.CategoryID.Int64),
			Name:  row.CategoryName.String,
			Slug:  row.CategorySlug.String,
			Color: row.CategoryColor.String,
		}
	}

	if row.AuthorID.Valid {
		author := &AuthorRef{
			ID:        uint(row.AuthorID.Int64),
			Name:      row.AuthorName.String,
			Bio:       row.AuthorBio.String,
			AvatarURL: row.AuthorAvatar.String,
		}
		if row.AuthorSocials.Valid && row.AuthorSocials.String != "" {
			links := map[string]string{}
			if err := json.Unmarshal([]byte(row.AuthorSocials.String), &links); err == nil {
				author.SocialLinks = links
			}
		}
		post.Author = author
	}

	return post
}
