package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/chat"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

// SessionCookie carries the opaque per-client session token.
const SessionCookie = "gtm_session"

// ChatHandler exposes the conversational surface over HTTP.
type ChatHandler struct {
	coordinator *chat.Coordinator
	cookieTTL   time.Duration
	indexFile   string
}

// NewChatHandler creates the HTTP handler. indexFile is the chat page
// served at the root path.
func NewChatHandler(coordinator *chat.Coordinator, cookieTTL time.Duration, indexFile string) *ChatHandler {
	return &ChatHandler{
		coordinator: coordinator,
		cookieTTL:   cookieTTL,
		indexFile:   indexFile,
	}
}

// Chat handles POST /chat. Handled business failures still answer 200
// with the failure worded in the reply text; only a malformed request
// body gets a 4xx.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sid := h.sessionID(c)
	reply := h.coordinator.HandleMessage(c.Request.Context(), sid, strings.TrimSpace(req.Message), req.Params)
	c.JSON(http.StatusOK, reply)
}

// Index serves the chat page.
func (h *ChatHandler) Index(c *gin.Context) {
	c.File(h.indexFile)
}

// sessionID returns the client's session token, issuing a fresh one in a
// cookie on first contact.
func (h *ChatHandler) sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(SessionCookie); err == nil && sid != "" {
		return sid
	}

	sid := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sid, int(h.cookieTTL.Seconds()), "/", "", false, true)
	return sid
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "gtm-chat",
	})
}
