package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niteshj11/kudoboard/internal/messages"
)

type createMessagePayload struct {
	BoardID     string   `json:"boardId"`
	AuthorName  string   `json:"authorName"`
	AuthorEmail string   `json:"authorEmail"`
	Content     string   `json:"content"`
	ImageURL    string   `json:"imageUrl"`
	GifURL      string   `json:"gifUrl"`
	CardColor   string   `json:"cardColor"`
	CardStyle   string   `json:"cardStyle"`
	PositionX   *float64 `json:"positionX"`
	PositionY   *float64 `json:"positionY"`
	Rotation    *float64 `json:"rotation"`
}

type updateMessagePayload struct {
	Content   *string  `json:"content"`
	ImageURL  *string  `json:"imageUrl"`
	GifURL    *string  `json:"gifUrl"`
	CardColor *string  `json:"cardColor"`
	CardStyle *string  `json:"cardStyle"`
	PositionX *float64 `json:"positionX"`
	PositionY *float64 `json:"positionY"`
	Rotation  *float64 `json:"rotation"`
}

type positionPayload struct {
	PositionX *float64 `json:"positionX"`
	PositionY *float64 `json:"positionY"`
	Rotation  *float64 `json:"rotation"`
}

func (h *httpHandler) handleListMessages(c *gin.Context) {
	list, err := h.messages.ListByBoard(c.Request.Context(), c.Param("boardId"))
	if err != nil {
		h.writeDomainError(c, err, "messages.list")
		return
	}
	if list == nil {
		list = []messages.Message{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) handleCreateMessage(c *gin.Context) {
	var payload createMessagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	identity, _ := currentIdentity(c)
	message, err := h.messages.Create(c.Request.Context(), messages.CreateInput{
		BoardID:     payload.BoardID,
		AuthorName:  payload.AuthorName,
		AuthorEmail: payload.AuthorEmail,
		Content:     payload.Content,
		ImageURL:    payload.ImageURL,
		GifURL:      payload.GifURL,
		CardColor:   payload.CardColor,
		CardStyle:   payload.CardStyle,
		PositionX:   payload.PositionX,
		PositionY:   payload.PositionY,
		Rotation:    payload.Rotation,
	}, identity.Email)
	if err != nil {
		h.writeDomainError(c, err, "messages.create")
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *httpHandler) handleUpdateMessage(c *gin.Context) {
	var payload updateMessagePayload
	if err := bindStrict(c, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	message, err := h.messages.Update(c.Request.Context(), c.Param("id"), messages.Update{
		Content:   payload.Content,
		ImageURL:  payload.ImageURL,
		GifURL:    payload.GifURL,
		CardColor: payload.CardColor,
		CardStyle: payload.CardStyle,
		PositionX: payload.PositionX,
		PositionY: payload.PositionY,
		Rotation:  payload.Rotation,
	})
	if err != nil {
		h.writeDomainError(c, err, "messages.update")
		return
	}
	c.JSON(http.StatusOK, message)
}

func (h *httpHandler) handleUpdateMessagePosition(c *gin.Context) {
	var payload positionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	message, err := h.messages.UpdatePosition(c.Request.Context(), c.Param("id"), payload.PositionX, payload.PositionY, payload.Rotation)
	if err != nil {
		h.writeDomainError(c, err, "messages.position")
		return
	}
	c.JSON(http.StatusOK, message)
}

func (h *httpHandler) handleDeleteMessage(c *gin.Context) {
	if err := h.messages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeDomainError(c, err, "messages.delete")
		return
	}
	c.Status(http.StatusNoContent)
}
