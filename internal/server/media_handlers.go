package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/niteshj11/kudoboard/internal/gifs"
	"github.com/niteshj11/kudoboard/internal/uploads"
	"go.uber.org/zap"
)

func (h *httpHandler) handleGifSearch(c *gin.Context) {
	result, err := h.gifs.Search(c.Request.Context(), c.Query("q"), intQuery(c, "limit", 20), intQuery(c, "offset", 0))
	if err != nil {
		if errors.Is(err, gifs.ErrQueryRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Search query is required"})
			return
		}
		h.logger.Error("gif search failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "GIF search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *httpHandler) handleGifTrending(c *gin.Context) {
	result, err := h.gifs.Trending(c.Request.Context(), intQuery(c, "limit", 20), intQuery(c, "offset", 0))
	if err != nil {
		h.logger.Error("gif trending failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "GIF search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *httpHandler) handleUploadImage(c *gin.Context) {
	if h.blobs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"message": "Uploads are not configured"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image file provided"})
		return
	}
	if file.Size > uploads.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Image exceeds the 10MB limit"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !uploads.AllowedType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only JPEG, PNG, GIF and WebP images are allowed"})
		return
	}

	source, err := file.Open()
	if err != nil {
		h.logger.Error("upload open failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	defer source.Close()

	data, err := io.ReadAll(io.LimitReader(source, uploads.MaxUploadBytes))
	if err != nil {
		h.logger.Error("upload read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	url, err := h.blobs.Save(uuid.NewString(), data, contentType)
	if err != nil {
		if errors.Is(err, uploads.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Only JPEG, PNG, GIF and WebP images are allowed"})
			return
		}
		h.logger.Error("upload save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
