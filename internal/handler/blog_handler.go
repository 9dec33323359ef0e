package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/brightsite/internal/service"
	"github.com/gin-gonic/gin"
)

// GetPosts 返回过滤分页后的文章列表
func (a *API) GetPosts(c *gin.Context) {
	filter := service.PostFilter{
		Status:       strings.TrimSpace(c.Query("status")),
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Featured:     parseBoolQuery(c, "featured"),
		Search:       strings.TrimSpace(c.Query("search")),
		Limit:        parseIntQuery(c, "limit", 0),
		Offset:       parseIntQuery(c, "offset", 0),
	}

	result := a.blog.ListPosts(filter)
	c.JSON(http.StatusOK, gin.H{
		"posts":   serializePosts(result.Posts),
		"total":   result.Total,
		"hasMore": result.HasMore,
	})
}

// GetPostBySlug 返回单篇已发布文章，并附带渲染后的正文 HTML
func (a *API) GetPostBySlug(c *gin.Context) {
	slug := c.Param("slug")

	post := a.blog.GetPostBySlug(slug)
	if post == nil {
		respondError(c, http.StatusNotFound, "post not found")
		return
	}

	payload := serializePost(*post)
	payload["contentHtml"] = renderMarkdown(post.Content)
	c.JSON(http.StatusOK, gin.H{"post": payload})
}

// SearchPosts 执行全文子串搜索
func (a *API) SearchPosts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondError(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	posts := a.blog.SearchPosts(query, parseIntQuery(c, "limit", 0))
	c.JSON(http.StatusOK, gin.H{"posts": serializePosts(posts)})
}

// RecordPostView 触发浏览计数。计数失败只记录日志，接口始终成功。
func (a *API) RecordPostView(c *gin.Context) {
	a.blog.IncrementViewCount(c.Param("slug"))
	c.Status(http.StatusNoContent)
}

// GetCategories 返回全部分类
func (a *API) GetCategories(c *gin.Context) {
	categories := a.blog.ListCategories()

	payload := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		payload = append(payload, gin.H{
			"id":          category.ID,
			"name":        category.Name,
			"slug":        category.Slug,
			"description": category.Description,
			"color":       category.Color,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": payload})
}

// CreatePost 后台写入尚未开放
func (a *API) CreatePost(c *gin.Context) {
	var input service.PostInput
	if !bindJSON(c, &input, "invalid post payload") {
		return
	}

	if _, err := a.blog.CreatePost(input); err != nil {
		a.respondAuthoringError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// UpdatePost 后台写入尚未开放
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var input service.PostInput
	if !bindJSON(c, &input, "invalid post payload") {
		return
	}

	if _, err := a.blog.UpdatePost(id, input); err != nil {
		a.respondAuthoringError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// DeletePost 后台写入尚未开放
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.blog.DeletePost(id); err != nil {
		a.respondAuthoringError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) respondAuthoringError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotImplemented) {
		respondError(c, http.StatusNotImplemented, err.Error())
		return
	}
	respondError(c, http.StatusInternalServerError, err.Error())
}

func serializePosts(posts []service.BlogPost) []gin.H {
	payload := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		payload = append(payload, serializePost(post))
	}
	return payload
}

func serializePost(post service.BlogPost) gin.H {
	payload := gin.H{
		"id":             post.ID,
		"slug":           post.Slug,
		"title":          post.Title,
		"excerpt":        post.Excerpt,
		"content":        post.Content,
		"featuredImage":  post.FeaturedImage,
		"status":         post.Status,
		"publishedAt":    post.PublishedAt,
		"createdAt":      post.CreatedAt,
		"updatedAt":      post.UpdatedAt,
		"readTime":       post.ReadTime,
		"viewCount":      post.ViewCount,
		"seoTitle":       post.SEOTitle,
		"seoDescription": post.SEODescription,
		"featured":       post.Featured,
		"tags":           serializeTags(post.Tags),
	}

	if post.Category != nil {
		payload["category"] = gin.H{
			"id":    post.Category.ID,
			"name":  post.Category.Name,
			"slug":  post.Category.Slug,
			"color": post.Category.Color,
		}
	}
	if post.Author != nil {
		payload["author"] = gin.H{
			"id":          post.Author.ID,
			"name":        post.Author.Name,
			"bio":         post.Author.Bio,
			"avatarUrl":   post.Author.AvatarURL,
			"socialLinks": post.Author.SocialLinks,
		}
	}

	return payload
}

func serializeTags(tags []service.TagRef) []gin.H {
	payload := make([]gin.H, 0, len(tags))
	for _, tag := range tags {
		payload = append(payload, gin.H{
			"id":   tag.ID,
			"name": tag.Name,
			"slug": tag.Slug,
		})
	}
	return payload
}
