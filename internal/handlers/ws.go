package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/guestsnap/guestsnap/internal/middleware"
	"github.com/guestsnap/guestsnap/internal/models"
	"gorm.io/gorm"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// wsClient pairs a connection with the mutex that serializes writes to it.
// gorilla/websocket allows at most one concurrent writer per connection,
// and both broadcasts and the ping loop write from their own goroutines.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Hub tracks the photographer dashboards connected per project so upload
// handlers can push a refresh instead of making the client poll.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]bool
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*wsClient]bool),
		logger:  logger,
	}
}

func (h *Hub) register(projectID string, client *wsClient) {
	h.mu.Lock()
	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*wsClient]bool)
	}
	h.clients[projectID][client] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(projectID string, client *wsClient) {
	h.mu.Lock()
	if clients, exists := h.clients[projectID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
	h.mu.Unlock()
}

// BroadcastRefresh tells every dashboard watching projectID that new media
// landed. Safe to call from any number of goroutines; writes to each
// connection are serialized by its client mutex. Failed connections are
// dropped from the hub.
func (h *Hub) BroadcastRefresh(projectID string) {
	h.mu.RLock()
	clients, exists := h.clients[projectID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy so the lock isn't held while writing to sockets.
	targets := make([]*wsClient, 0, len(clients))
	for client := range clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		err := client.writeJSON(map[string]string{
			"type":       "refresh",
			"message":    "New media uploaded",
			"project_id": projectID,
		})

		if err != nil {
			h.logger.Warn("broadcasting refresh", "error", err, "project_id", projectID)
			h.unregister(projectID, client)
			client.conn.Close()
		}
	}
}

type WSHandler struct {
	gdb     *gorm.DB
	hub     *Hub
	origins []string
	logger  *slog.Logger
}

func NewWSHandler(gdb *gorm.DB, hub *Hub, origins []string, logger *slog.Logger) *WSHandler {
	return &WSHandler{gdb: gdb, hub: hub, origins: origins, logger: logger}
}

// Connect upgrades an owner's dashboard connection for one project. Only
// the project's owner may subscribe; like delete, a foreign project id
// answers 404.
func (h *WSHandler) Connect(ctx *gin.Context) {
	userID, err := middleware.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID := ctx.Param("project_id")

	var project models.Project

	if err := h.gdb.Where("public_id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			h.logger.Error("fetching project", "error", err, "project_id", projectID)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range h.origins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "project_id", projectID)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Warn("setting initial read deadline", "error", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	client := &wsClient{conn: conn}

	h.hub.register(project.PublicID, client)

	defer func() {
		h.hub.unregister(project.PublicID, client)
		conn.Close()
	}()

	err = client.writeJSON(map[string]string{
		"type":       "connected",
		"message":    "WebSocket connection established",
		"project_id": project.PublicID,
	})

	if err != nil {
		h.logger.Warn("sending welcome message", "error", err, "project_id", projectID)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := client.ping(); err != nil {
				return
			}
		}
	}()

	// Drain client messages until the connection closes; the dashboard
	// never sends anything meaningful upstream. Reads stay on this one
	// goroutine, so they need no locking.
	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read", "error", err, "project_id", projectID)
			}
			break
		}
	}
}
