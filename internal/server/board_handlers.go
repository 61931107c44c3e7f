package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niteshj11/kudoboard/internal/boards"
)

type createBoardPayload struct {
	Title             string     `json:"title"`
	RecipientName     string     `json:"recipientName"`
	Occasion          string     `json:"occasion"`
	Description       string     `json:"description"`
	BackgroundColor   string     `json:"backgroundColor"`
	BackgroundPattern string     `json:"backgroundPattern"`
	IsPublic          *bool      `json:"isPublic"`
	Password          string     `json:"password"`
	ExpiresAt         *time.Time `json:"expiresAt"`
}

// updateBoardPayload is the allow-list of mutable board fields. Unknown
// fields are rejected outright so immutable fields can never ride along.
type updateBoardPayload struct {
	Title             *string    `json:"title"`
	RecipientName     *string    `json:"recipientName"`
	Occasion          *string    `json:"occasion"`
	Description       *string    `json:"description"`
	BackgroundColor   *string    `json:"backgroundColor"`
	BackgroundPattern *string    `json:"backgroundPattern"`
	IsPublic          *bool      `json:"isPublic"`
	Password          *string    `json:"password"`
	ExpiresAt         *time.Time `json:"expiresAt"`
}

// bindStrict decodes a JSON body, rejecting fields outside the payload's
// allow-list.
func bindStrict(c *gin.Context, dst any) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func (h *httpHandler) handleListBoards(c *gin.Context) {
	identity, _ := currentIdentity(c)

	list, err := h.boards.ListByOwner(c.Request.Context(), identity.UserID)
	if err != nil {
		h.writeDomainError(c, err, "boards.list")
		return
	}
	if list == nil {
		list = []boards.Board{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) handleCreateBoard(c *gin.Context) {
	identity, _ := currentIdentity(c)

	var payload createBoardPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	board, err := h.boards.Create(c.Request.Context(), identity.UserID, boards.CreateInput{
		Title:             payload.Title,
		RecipientName:     payload.RecipientName,
		Occasion:          payload.Occasion,
		Description:       payload.Description,
		BackgroundColor:   payload.BackgroundColor,
		BackgroundPattern: payload.BackgroundPattern,
		IsPublic:          payload.IsPublic,
		Password:          payload.Password,
		ExpiresAt:         payload.ExpiresAt,
	})
	if err != nil {
		h.writeDomainError(c, err, "boards.create")
		return
	}

	c.JSON(http.StatusCreated, board)
}

func (h *httpHandler) handleGetBoard(c *gin.Context) {
	identity, _ := currentIdentity(c)

	board, err := h.boards.GetForOwner(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		h.writeDomainError(c, err, "boards.get")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *httpHandler) handleBoardByShareCode(c *gin.Context) {
	board, err := h.boards.GetByShareCode(c.Request.Context(), c.Param("shareCode"), c.Query("password"))
	if err != nil {
		h.writeDomainError(c, err, "boards.share")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *httpHandler) handleUpdateBoard(c *gin.Context) {
	identity, _ := currentIdentity(c)

	var payload updateBoardPayload
	if err := bindStrict(c, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	board, err := h.boards.Update(c.Request.Context(), c.Param("id"), identity.UserID, boards.Update{
		Title:             payload.Title,
		RecipientName:     payload.RecipientName,
		Occasion:          payload.Occasion,
		Description:       payload.Description,
		BackgroundColor:   payload.BackgroundColor,
		BackgroundPattern: payload.BackgroundPattern,
		IsPublic:          payload.IsPublic,
		Password:          payload.Password,
		ExpiresAt:         payload.ExpiresAt,
	})
	if err != nil {
		h.writeDomainError(c, err, "boards.update")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *httpHandler) handleDeleteBoard(c *gin.Context) {
	identity, _ := currentIdentity(c)

	if err := h.boards.Delete(c.Request.Context(), c.Param("id"), identity.UserID); err != nil {
		h.writeDomainError(c, err, "boards.delete")
		return
	}
	c.Status(http.StatusNoContent)
}
