package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/niteshj11/kudoboard/internal/auth"
	"github.com/niteshj11/kudoboard/internal/boards"
	"github.com/niteshj11/kudoboard/internal/gifs"
	"github.com/niteshj11/kudoboard/internal/messages"
	"github.com/niteshj11/kudoboard/internal/realtime"
	"github.com/niteshj11/kudoboard/internal/uploads"
	"github.com/niteshj11/kudoboard/internal/users"
	"go.uber.org/zap"
)

const identityContextKey = "kudoboard_identity"

var (
	errMissingTokenManager    = errors.New("token manager dependency required")
	errMissingUserService     = errors.New("user service dependency required")
	errMissingBoardService    = errors.New("board service dependency required")
	errMissingMessageService  = errors.New("message service dependency required")
	errInvalidAuthorization   = errors.New("authorization header missing or invalid")
	errMissingRealtimeHandler = errors.New("realtime socket handler dependency required")
)

// TokenManager issues and validates bearer tokens.
type TokenManager interface {
	IssueToken(identity auth.Identity) (string, int64, error)
	ValidateToken(token string) (auth.Identity, error)
}

// Dependencies bundles everything the HTTP surface needs.
type Dependencies struct {
	TokenManager TokenManager
	Users        *users.Service
	Boards       *boards.Service
	Messages     *messages.Service
	Gifs         *gifs.Client
	Blobs        uploads.BlobStore
	UploadsDir   string
	Socket       *realtime.SocketHandler
	ClientOrigin string
	Logger       *zap.Logger
}

// NewHTTPHandler wires the REST routes and the realtime endpoint.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Users == nil {
		return nil, errMissingUserService
	}
	if deps.Boards == nil {
		return nil, errMissingBoardService
	}
	if deps.Messages == nil {
		return nil, errMissingMessageService
	}
	if deps.Socket == nil {
		return nil, errMissingRealtimeHandler
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allowOrigins := []string{"*"}
	if deps.ClientOrigin != "" {
		allowOrigins = []string{deps.ClientOrigin}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: deps.ClientOrigin != "",
		MaxAge:           12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:   deps.TokenManager,
		users:    deps.Users,
		boards:   deps.Boards,
		messages: deps.Messages,
		gifs:     deps.Gifs,
		blobs:    deps.Blobs,
		logger:   logger,
	}

	api := router.Group("/api")
	api.GET("/health", handler.handleHealth)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", handler.handleRegister)
	authRoutes.POST("/login", handler.handleLogin)
	authRoutes.POST("/google", handler.handleGoogleSignIn)
	authRoutes.GET("/me", handler.authorizeRequest, handler.handleCurrentUser)

	boardRoutes := api.Group("/boards")
	boardRoutes.GET("/share/:shareCode", handler.handleBoardByShareCode)
	boardRoutes.GET("", handler.authorizeRequest, handler.handleListBoards)
	boardRoutes.POST("", handler.authorizeRequest, handler.handleCreateBoard)
	boardRoutes.GET("/:id", handler.authorizeRequest, handler.handleGetBoard)
	boardRoutes.PUT("/:id", handler.authorizeRequest, handler.handleUpdateBoard)
	boardRoutes.DELETE("/:id", handler.authorizeRequest, handler.handleDeleteBoard)

	messageRoutes := api.Group("/messages")
	messageRoutes.GET("/board/:boardId", handler.handleListMessages)
	messageRoutes.POST("", handler.optionalAuth, handler.handleCreateMessage)
	messageRoutes.PUT("/:id", handler.optionalAuth, handler.handleUpdateMessage)
	messageRoutes.PATCH("/:id/position", handler.handleUpdateMessagePosition)
	messageRoutes.DELETE("/:id", handler.optionalAuth, handler.handleDeleteMessage)

	giphyRoutes := api.Group("/giphy")
	giphyRoutes.GET("/search", handler.handleGifSearch)
	giphyRoutes.GET("/trending", handler.handleGifTrending)

	api.POST("/upload/image", handler.optionalAuth, handler.handleUploadImage)
	if deps.UploadsDir != "" {
		router.Static("/uploads", deps.UploadsDir)
	}

	router.GET("/ws", deps.Socket.Handle)

	return router, nil
}

type httpHandler struct {
	tokens   TokenManager
	users    *users.Service
	boards   *boards.Service
	messages *messages.Service
	gifs     *gifs.Client
	blobs    uploads.BlobStore
	logger   *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// authorizeRequest rejects requests without a valid bearer token.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	identity, err := h.bearerIdentity(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errInvalidAuthorization.Error()})
		return
	}
	c.Set(identityContextKey, identity)
	c.Next()
}

// optionalAuth resolves the identity when a valid token is present and
// otherwise lets the request through anonymously.
func (h *httpHandler) optionalAuth(c *gin.Context) {
	if identity, err := h.bearerIdentity(c); err == nil {
		c.Set(identityContextKey, identity)
	}
	c.Next()
}

func (h *httpHandler) bearerIdentity(c *gin.Context) (auth.Identity, error) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return auth.Identity{}, errInvalidAuthorization
	}
	token := header[len(prefix):]
	identity, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		return auth.Identity{}, err
	}
	return identity, nil
}

func currentIdentity(c *gin.Context) (auth.Identity, bool) {
	value, ok := c.Get(identityContextKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}

// writeDomainError maps service errors onto stable HTTP failure shapes.
// Unexpected backend errors are logged with full detail and surfaced as a
// generic message so diagnostics never cross the trust boundary.
func (h *httpHandler) writeDomainError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, boards.ErrValidation),
		errors.Is(err, messages.ErrValidation),
		errors.Is(err, users.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, boards.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Board not found"})
	case errors.Is(err, messages.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, boards.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"message": "This board has expired"})
	case errors.Is(err, boards.ErrPasswordRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Password required", "requiresPassword": true})
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
	case errors.Is(err, users.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	default:
		h.logger.Error("request failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
