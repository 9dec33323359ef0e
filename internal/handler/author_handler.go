package handler

import (
	"errors"
	"net/http"

	"github.com/brightsite/internal/service"
	"github.com/gin-gonic/gin"
)

// GetAuthors 返回全部作者
func (a *API) GetAuthors(c *gin.Context) {
	authors, err := a.authors.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load authors")
		return
	}

	payload := make([]gin.H, 0, len(authors))
	for i := range authors {
		payload = append(payload, serializeAuthor(authors[i]))
	}
	c.JSON(http.StatusOK, gin.H{"authors": payload})
}

// GetAuthor 返回单个作者
func (a *API) GetAuthor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	author, err := a.authors.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrAuthorNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load author")
		return
	}

	c.JSON(http.StatusOK, gin.H{"author": serializeAuthor(*author)})
}

func serializeAuthor(author service.Author) gin.H {
	return gin.H{
		"id":          author.ID,
		"name":        author.Name,
		"bio":         author.Bio,
		"avatarUrl":   author.AvatarURL,
		"socialLinks": author.SocialLinks,
	}
}
