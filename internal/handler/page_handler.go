package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/brightsite/internal/db"
	"github.com/brightsite/internal/service"
	"github.com/gin-gonic/gin"
)

// GetPages 返回指定类型的页面列表，kind 为空时返回全部
func (a *API) GetPages(c *gin.Context) {
	kind := strings.TrimSpace(c.Query("kind"))

	pages, err := a.pages.ListByKind(kind)
	if err != nil {
		if errors.Is(err, service.ErrPageKindUnknown) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load pages")
		return
	}

	payload := make([]gin.H, 0, len(pages))
	for i := range pages {
		payload = append(payload, serializePage(pages[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"pages": payload})
}

// GetPage 返回单个页面及渲染后的 HTML
func (a *API) GetPage(c *gin.Context) {
	page, err := a.pages.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": serializePage(*page, true)})
}

// SavePage 后台创建或更新页面
func (a *API) SavePage(c *gin.Context) {
	var payload struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Content string `json:"content"`
		Kind    string `json:"kind"`
	}
	if !bindJSON(c, &payload, "invalid page payload") {
		return
	}

	page, err := a.pages.Save(service.PageInput{
		Slug:    c.Param("slug"),
		Title:   payload.Title,
		Summary: payload.Summary,
		Content: payload.Content,
		Kind:    payload.Kind,
	})
	if err != nil {
		if errors.Is(err, service.ErrPageInvalidInput) || errors.Is(err, service.ErrPageKindUnknown) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to save page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": serializePage(*page, false)})
}

func serializePage(page db.Page, includeHTML bool) gin.H {
	payload := gin.H{
		"id":        page.ID,
		"slug":      page.Slug,
		"title":     page.Title,
		"summary":   page.Summary,
		"content":   page.Content,
		"kind":      page.Kind,
		"updatedAt": page.UpdatedAt,
	}
	if includeHTML {
		payload["contentHtml"] = renderMarkdown(page.Content)
	}
	return payload
}
