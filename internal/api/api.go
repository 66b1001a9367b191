// Package api holds the gin handlers of the mentordesk daemon.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/internal/profiles"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

// PublishPath is the route the public site has always posted to.
const PublishPath = "/.netlify/functions/update-profiles"

type Handler struct {
	Publisher sdk.ProfilePublisher
	Profiles  profiles.Repository
	Store     sdk.KeyValueStore
	Log       logging.Logger
}

// Register mounts every route on r.
func Register(r *gin.Engine, h *Handler) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed)
	r.Use(CORS())

	r.POST(PublishPath, h.Publish)
	r.GET("/health", h.Health)
	r.GET("/data/:file", h.Collection)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/profiles", h.Publish)
		apiGroup.GET("/profiles/:role", h.ListProfiles)
		apiGroup.GET("/state", h.Keys)
		apiGroup.GET("/state/:key", h.Get)
		apiGroup.PUT("/state/:key", h.Set)
		apiGroup.DELETE("/state/:key", h.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}

// CORS lets the static site call the daemon from any origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, schema.ErrorResponse{Error: "Method not allowed"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Publish(c *gin.Context) {
	var req schema.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, schema.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	res, err := h.Publisher.Apply(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrBadRequest) {
			c.JSON(http.StatusBadRequest, schema.ErrorResponse{Error: err.Error()})
			return
		}
		h.Log.Error(c.Request.Context(), "error updating profiles", "role", req.Role, "action", req.Action, "error", err)
		c.JSON(http.StatusInternalServerError, schema.ErrorResponse{Error: "Internal server error", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	role, ok := schema.ParseRole(c.Param("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, schema.ErrorResponse{Error: "Role must be mentor or mentee"})
		return
	}
	h.list(c, role)
}

// Collection serves mentors.json and mentees.json the way the static site
// fetches them.
func (h *Handler) Collection(c *gin.Context) {
	name := c.Param("file")
	for _, role := range []schema.Role{schema.RoleMentor, schema.RoleMentee} {
		if strings.EqualFold(name, role.FileName()) {
			h.list(c, role)
			return
		}
	}
	c.JSON(http.StatusNotFound, schema.ErrorResponse{Error: "Collection not found"})
}

func (h *Handler) list(c *gin.Context, role schema.Role) {
	list, err := h.Profiles.List(c.Request.Context(), role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, schema.ErrorResponse{Error: "Internal server error", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Keys(c *gin.Context) {
	keys, err := h.Store.Keys()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, keys)
}

func (h *Handler) Get(c *gin.Context) {
	val, err := h.Store.Get(c.Param("key"))
	if errors.Is(err, sdk.ErrKeyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": val})
}

func (h *Handler) Set(c *gin.Context) {
	var val any
	if err := c.ShouldBindJSON(&val); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Set(c.Param("key"), val); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.Store.Delete(c.Param("key")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
