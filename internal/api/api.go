// Package api exposes the tracker over HTTP for the browser UI.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/celerix-dev/celerix-records/internal/tracker"
	"github.com/celerix-dev/celerix-records/pkg/entity"
	"github.com/celerix-dev/celerix-records/pkg/kv"
	"github.com/celerix-dev/celerix-records/pkg/schema"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	App *tracker.App
	// Store is the raw backing store, browsed by the /store routes. Optional.
	Store kv.Backend
	Log   *zap.Logger
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/kinds", h.Kinds)
	r.GET("/records/:kind", h.List)
	r.GET("/records/:kind/:id", h.Get)
	r.POST("/records/:kind", h.Save)
	r.DELETE("/records/:kind/:id", h.Delete)
	r.GET("/students/:id/name", h.StudentName)

	r.GET("/dashboard", h.Dashboard)
	r.GET("/progress", h.Progress)
	r.GET("/activity", h.Activity)

	r.GET("/export", h.Export)
	r.POST("/import", h.Import)
	r.POST("/clear", h.Clear)

	if h.Store != nil {
		r.GET("/store/personas", h.GetPersonas)
		r.GET("/store/personas/:persona/apps", h.GetApps)
		r.GET("/store/personas/:persona/apps/:app", h.GetAppStore)
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.L()
	}
	return h.Log
}

// fail writes err with the status its kind maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case entity.IsNotFound(err), errors.Is(err, schema.ErrUnknownKind):
		status = http.StatusNotFound
	case entity.IsValidation(err):
		status = http.StatusBadRequest
	case entity.IsPersistence(err):
		// The change is live in memory but did not reach disk.
		h.logger().Error("persistence failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "persisted": false})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func kindParam(c *gin.Context) (schema.Kind, error) {
	return schema.ParseKind(c.Param("kind"))
}

func (h *Handler) Kinds(c *gin.Context) {
	c.JSON(http.StatusOK, schema.Kinds)
}

func (h *Handler) List(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, err := h.App.Search(kind, c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	item, err := h.App.Find(kind, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Save creates the posted entity, or updates it when the body carries an id.
func (h *Handler) Save(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := schema.DecodeDraft(kind, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.App.Save(draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if draft.DraftID() == "" {
		status = http.StatusCreated
	}
	c.JSON(status, saved)
}

// Delete removes an entity and its dependents. Deleting an absent id succeeds
// with removed=false.
func (h *Handler) Delete(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	report, err := h.App.Delete(kind, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) StudentName(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": h.App.StudentName(c.Param("id"))})
}

func (h *Handler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.App.Dashboard())
}

func (h *Handler) Progress(c *gin.Context) {
	c.JSON(http.StatusOK, h.App.Progress())
}

func (h *Handler) Activity(c *gin.Context) {
	limit := tracker.RecentLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.App.RecentActivity(limit))
}

// Export downloads every collection as one JSON document.
func (h *Handler) Export(c *gin.Context) {
	doc, err := h.App.Export()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="records-export.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}

// Import replaces the collections present in the posted document.
func (h *Handler) Import(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.App.Import(body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Clear(c *gin.Context) {
	if err := h.App.ClearAll(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetPersonas(c *gin.Context) {
	personas, err := h.Store.GetPersonas()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, personas)
}

func (h *Handler) GetApps(c *gin.Context) {
	apps, err := h.Store.GetApps(c.Param("persona"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *Handler) GetAppStore(c *gin.Context) {
	data, err := h.Store.GetAppStore(c.Param("persona"), c.Param("app"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func storeError(c *gin.Context, err error) {
	if errors.Is(err, kv.ErrPersonaNotFound) || errors.Is(err, kv.ErrAppNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
