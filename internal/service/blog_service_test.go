package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brightsite/internal/db"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupBlogServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:blog-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.BlogAuthor{}, &db.BlogCategory{}, &db.BlogTag{}, &db.BlogPost{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func newTestBlogService(gdb *gorm.DB) *BlogService {
	return NewBlogService(gdb, zerolog.Nop())
}

func publishedAt(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return &parsed
}

func seedPost(t *testing.T, gdb *gorm.DB, post db.BlogPost) db.BlogPost {
	t.Helper()
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post %q: %v", post.Slug, err)
	}
	return post
}

func TestBlogService_ListPostsPaginatesNewestFirst(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	for i := 1; i <= 5; i++ {
		seedPost(t, gdb, db.BlogPost{
			Slug:        fmt.Sprintf("post-%d", i),
			Title:       fmt.Sprintf("Post %d", i),
			Content:     "content",
			Status:      "published",
			PublishedAt: publishedAt(t, fmt.Sprintf("2025-06-0%dT10:00:00Z", i)),
		})
	}

	result := svc.ListPosts(PostFilter{Limit: 2, Offset: 0})
	if result.Total != 5 {
		t.Fatalf("expected total 5, got %d", result.Total)
	}
	if !result.HasMore {
		t.Fatalf("expected hasMore true for offset 0 limit 2")
	}
	if len(result.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(result.Posts))
	}
	if result.Posts[0].Slug != "post-5" || result.Posts[1].Slug != "post-4" {
		t.Fatalf("expected newest posts first, got %s, %s", result.Posts[0].Slug, result.Posts[1].Slug)
	}

	lastPage := svc.ListPosts(PostFilter{Limit: 2, Offset: 4})
	if lastPage.HasMore {
		t.Fatalf("expected hasMore false when offset+limit >= total")
	}
	if len(lastPage.Posts) != 1 {
		t.Fatalf("expected 1 post on last page, got %d", len(lastPage.Posts))
	}

	exactEnd := svc.ListPosts(PostFilter{Limit: 2, Offset: 3})
	if exactEnd.HasMore {
		t.Fatalf("expected hasMore false when offset+limit == total")
	}
}

func TestBlogService_ListPostsDefaultsMissingFields(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	seedPost(t, gdb, db.BlogPost{
		Slug:        "bare-post",
		Title:       "Bare Post",
		Content:     "content",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-01T10:00:00Z"),
	})

	result := svc.ListPosts(PostFilter{})
	if len(result.Posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(result.Posts))
	}

	post := result.Posts[0]
	if post.Excerpt != "" {
		t.Fatalf("expected empty excerpt, got %q", post.Excerpt)
	}
	if post.ReadTime != 5 {
		t.Fatalf("expected read time default 5, got %d", post.ReadTime)
	}
	if post.ViewCount != 0 {
		t.Fatalf("expected view count 0, got %d", post.ViewCount)
	}
	if post.Tags == nil || len(post.Tags) != 0 {
		t.Fatalf("expected empty tag slice, got %#v", post.Tags)
	}
	if post.Category != nil {
		t.Fatalf("expected nil category, got %#v", post.Category)
	}
	if post.Author != nil {
		t.Fatalf("expected nil author, got %#v", post.Author)
	}
}

func TestBlogService_GroupsTagFanOutIntoSinglePost(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	tags := []db.BlogTag{
		{Name: "Go", Slug: "go"},
		{Name: "Web", Slug: "web"},
		{Name: "Design", Slug: "design"},
	}
	for i := range tags {
		if err := gdb.Create(&tags[i]).Error; err != nil {
			t.Fatalf("failed to seed tag: %v", err)
		}
	}

	post := seedPost(t, gdb, db.BlogPost{
		Slug:        "tagged-post",
		Title:       "Tagged Post",
		Content:     "content",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-02T10:00:00Z"),
	})
	if err := gdb.Model(&post).Association("Tags").Replace(tags); err != nil {
		t.Fatalf("failed to associate tags: %v", err)
	}

	seedPost(t, gdb, db.BlogPost{
		Slug:        "untagged-post",
		Title:       "Untagged Post",
		Content:     "content",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-01T10:00:00Z"),
	})

	result := svc.ListPosts(PostFilter{})
	if result.Total != 2 {
		t.Fatalf("expected total 2, got %d", result.Total)
	}
	if len(result.Posts) != 2 {
		t.Fatalf("expected fan-out rows collapsed to 2 posts, got %d", len(result.Posts))
	}

	tagged := result.Posts[0]
	if tagged.Slug != "tagged-post" {
		t.Fatalf("expected tagged-post first, got %s", tagged.Slug)
	}
	if len(tagged.Tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tagged.Tags))
	}
	seen := map[string]bool{}
	for _, tag := range tagged.Tags {
		seen[tag.Slug] = true
	}
	for _, slug := range []string{"go", "web", "design"} {
		if !seen[slug] {
			t.Fatalf("expected tag %q in %#v", slug, tagged.Tags)
		}
	}

	if len(result.Posts[1].Tags) != 0 {
		t.Fatalf("expected untagged post to have empty tags, got %#v", result.Posts[1].Tags)
	}
}

func TestBlogService_ListPostsFilters(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	category := db.BlogCategory{Name: "Engineering", Slug: "engineering", Color: "#0055ff"}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	seedPost(t, gdb, db.BlogPost{
		Slug:        "featured-engineering",
		Title:       "Featured Engineering",
		Content:     "content",
		Status:      "published",
		Featured:    true,
		CategoryID:  &category.ID,
		PublishedAt: publishedAt(t, "2025-06-03T10:00:00Z"),
	})
	seedPost(t, gdb, db.BlogPost{
		Slug:        "plain-engineering",
		Title:       "Plain Engineering",
		Content:     "content",
		Status:      "published",
		CategoryID:  &category.ID,
		PublishedAt: publishedAt(t, "2025-06-02T10:00:00Z"),
	})
	seedPost(t, gdb, db.BlogPost{
		Slug:        "uncategorized",
		Title:       "Uncategorized",
		Content:     "content",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-01T10:00:00Z"),
	})
	seedPost(t, gdb, db.BlogPost{
		Slug:    "draft-post",
		Title:   "Draft Post",
		Content: "content",
		Status:  "draft",
	})

	byCategory := svc.ListPosts(PostFilter{CategorySlug: "engineering"})
	if byCategory.Total != 2 {
		t.Fatalf("expected 2 posts in category, got %d", byCategory.Total)
	}
	if byCategory.Posts[0].Category == nil || byCategory.Posts[0].Category.Slug != "engineering" {
		t.Fatalf("expected inline category, got %#v", byCategory.Posts[0].Category)
	}

	featured := true
	byFeatured := svc.ListPosts(PostFilter{Featured: &featured})
	if byFeatured.Total != 1 || byFeatured.Posts[0].Slug != "featured-engineering" {
		t.Fatalf("unexpected featured filter result: %#v", byFeatured)
	}

	// 默认只返回 published
	all := svc.ListPosts(PostFilter{})
	if all.Total != 3 {
		t.Fatalf("expected drafts excluded by default, got total %d", all.Total)
	}

	drafts := svc.ListPosts(PostFilter{Status: "draft"})
	if drafts.Total != 1 || drafts.Posts[0].Slug != "draft-post" {
		t.Fatalf("unexpected draft filter result: %#v", drafts)
	}
}

func TestBlogService_SearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	seedPost(t, gdb, db.BlogPost{
		Slug:        "kubernetes-post",
		Title:       "Deploying Kubernetes",
		Content:     "cluster setup",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-03T10:00:00Z"),
	})
	seedPost(t, gdb, db.BlogPost{
		Slug:        "excerpt-match",
		Title:       "Another Post",
		Excerpt:     "All about OBSERVABILITY",
		Content:     "content",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-02T10:00:00Z"),
	})
	seedPost(t, gdb, db.BlogPost{
		Slug:        "content-match",
		Title:       "Quiet Title",
		Content:     "deep dive into GraphQL resolvers",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-01T10:00:00Z"),
	})

	byTitle := svc.SearchPosts("KUBERNETES", 10)
	if len(byTitle) != 1 || byTitle[0].Slug != "kubernetes-post" {
		t.Fatalf("expected title match via case folding, got %#v", byTitle)
	}

	byExcerpt := svc.SearchPosts("observability", 10)
	if len(byExcerpt) != 1 || byExcerpt[0].Slug != "excerpt-match" {
		t.Fatalf("expected excerpt match, got %#v", byExcerpt)
	}

	byContent := svc.SearchPosts("graphql", 10)
	if len(byContent) != 1 || byContent[0].Slug != "content-match" {
		t.Fatalf("expected content match, got %#v", byContent)
	}

	none := svc.SearchPosts("missing-term", 10)
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %#v", none)
	}
}

func TestBlogService_GetPostBySlugPublishedOnly(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	seedPost(t, gdb, db.BlogPost{
		Slug:        "live-post",
		Title:       "Live Post",
		Content:     "content",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-01T10:00:00Z"),
	})
	seedPost(t, gdb, db.BlogPost{
		Slug:    "hidden-draft",
		Title:   "Hidden Draft",
		Content: "content",
		Status:  "draft",
	})

	if post := svc.GetPostBySlug("live-post"); post == nil || post.Slug != "live-post" {
		t.Fatalf("expected live post, got %#v", post)
	}
	if post := svc.GetPostBySlug("hidden-draft"); post != nil {
		t.Fatalf("expected nil for draft slug, got %#v", post)
	}
	if post := svc.GetPostBySlug("missing-slug"); post != nil {
		t.Fatalf("expected nil for missing slug, got %#v", post)
	}
}

func TestBlogService_GetPostBySlugIncludesRelations(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	author := db.BlogAuthor{
		Name:      "Ada Wright",
		Bio:       "Platform engineer",
		AvatarURL: "/static/uploads/ada.png",
		SocialLinks: datatypes.JSONMap{
			"twitter": "https://twitter.com/adawright",
			"github":  "https://github.com/adawright",
		},
	}
	if err := gdb.Create(&author).Error; err != nil {
		t.Fatalf("failed to seed author: %v", err)
	}

	category := db.BlogCategory{Name: "Product", Slug: "product", Color: "#22cc88"}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	tag := db.BlogTag{Name: "Release", Slug: "release"}
	if err := gdb.Create(&tag).Error; err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}

	post := seedPost(t, gdb, db.BlogPost{
		Slug:        "release-notes",
		Title:       "Release Notes",
		Excerpt:     "What shipped",
		Content:     "everything that shipped",
		Status:      "published",
		ReadTime:    8,
		ViewCount:   42,
		CategoryID:  &category.ID,
		AuthorID:    &author.ID,
		PublishedAt: publishedAt(t, "2025-06-01T10:00:00Z"),
	})
	if err := gdb.Model(&post).Association("Tags").Replace([]db.BlogTag{tag}); err != nil {
		t.Fatalf("failed to associate tag: %v", err)
	}

	got := svc.GetPostBySlug("release-notes")
	if got == nil {
		t.Fatalf("expected post, got nil")
	}
	if got.ReadTime != 8 || got.ViewCount != 42 {
		t.Fatalf("expected stored read time and views preserved, got %d/%d", got.ReadTime, got.ViewCount)
	}
	if got.Category == nil || got.Category.Name != "Product" {
		t.Fatalf("expected category, got %#v", got.Category)
	}
	if got.Author == nil || got.Author.Name != "Ada Wright" {
		t.Fatalf("expected author, got %#v", got.Author)
	}
	if got.Author.SocialLinks["twitter"] != "https://twitter.com/adawright" {
		t.Fatalf("expected social links map, got %#v", got.Author.SocialLinks)
	}
	if len(got.Tags) != 1 || got.Tags[0].Slug != "release" {
		t.Fatalf("expected release tag, got %#v", got.Tags)
	}
}

func TestBlogService_ListCategoriesOrderedByName(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if err := gdb.Create(&db.BlogCategory{Name: name, Slug: name}).Error; err != nil {
			t.Fatalf("failed to seed category: %v", err)
		}
	}

	categories := svc.ListCategories()
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}
	if categories[0].Name != "Alpha" || categories[2].Name != "Zeta" {
		t.Fatalf("expected name ascending order, got %#v", categories)
	}
}

func TestBlogService_IncrementViewCount(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	seedPost(t, gdb, db.BlogPost{
		Slug:        "counted-post",
		Title:       "Counted Post",
		Content:     "content",
		Status:      "published",
		PublishedAt: publishedAt(t, "2025-06-01T10:00:00Z"),
	})

	svc.IncrementViewCount("counted-post")
	svc.IncrementViewCount("counted-post")

	// 未知 slug 不会抛出任何错误
	svc.IncrementViewCount("missing-slug")

	var post db.BlogPost
	if err := gdb.Where("slug = ?", "counted-post").First(&post).Error; err != nil {
		t.Fatalf("failed to reload post: %v", err)
	}
	if post.ViewCount != 2 {
		t.Fatalf("expected view count 2, got %d", post.ViewCount)
	}
}

func TestBlogService_AuthoringStubsFailFast(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	if _, err := svc.CreatePost(PostInput{Title: "New"}); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented from CreatePost, got %v", err)
	}
	if _, err := svc.UpdatePost(1, PostInput{Title: "New"}); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented from UpdatePost, got %v", err)
	}
	if err := svc.DeletePost(1); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented from DeletePost, got %v", err)
	}
}

func TestBlogService_DegradesToEmptyOnStorageFailure(t *testing.T) {
	gdb := setupBlogServiceTestDB(t)
	svc := newTestBlogService(gdb)

	if err := gdb.Migrator().DropTable(&db.BlogPost{}); err != nil {
		t.Fatalf("failed to drop posts table: %v", err)
	}
	if err := gdb.Migrator().DropTable(&db.BlogCategory{}); err != nil {
		t.Fatalf("failed to drop categories table: %v", err)
	}

	result := svc.ListPosts(PostFilter{})
	if result.Total != 0 || result.HasMore || len(result.Posts) != 0 {
		t.Fatalf("expected empty degraded result, got %#v", result)
	}

	if post := svc.GetPostBySlug("anything"); post != nil {
		t.Fatalf("expected nil on storage failure, got %#v", post)
	}

	if posts := svc.SearchPosts("anything", 10); len(posts) != 0 {
		t.Fatalf("expected empty search result, got %#v", posts)
	}

	if categories := svc.ListCategories(); len(categories) != 0 {
		t.Fatalf("expected empty categories, got %#v", categories)
	}

	// 计数失败也只记录日志
	svc.IncrementViewCount("anything")
}
