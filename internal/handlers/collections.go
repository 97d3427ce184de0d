package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wavy/internal/collection"
	"wavy/pkg/models"
)

// CollectionHandler serves one collection kind of the caller
type CollectionHandler struct {
	store  *collection.Store
	parent *Handler
}

func (h *Handler) collectionHandler(kind collection.Kind) *CollectionHandler {
	store, _ := h.collections.Store(kind)
	return &CollectionHandler{store: store, parent: h}
}

type entryResponse struct {
	models.CollectionEntry
	ProgressPercent  float64                  `json:"progress_percent,omitempty"`
	RemainingMinutes float64                  `json:"remaining_minutes,omitempty"`
	Remaining        string                   `json:"remaining,omitempty"`
	State            collection.ProgressState `json:"state,omitempty"`
}

func (ch *CollectionHandler) view(e models.CollectionEntry) entryResponse {
	resp := entryResponse{CollectionEntry: e}
	if ch.store.Kind().Upserts() {
		resp.ProgressPercent = e.ProgressPercent()
		resp.RemainingMinutes = e.RemainingMinutes()
		resp.Remaining = collection.FormatRemaining(e.RemainingMinutes())
		resp.State = collection.StateOf(e)
	}
	return resp
}

// List handles GET /me/<collection>
func (ch *CollectionHandler) List(c *gin.Context) {
	entries, err := ch.store.List(c.Request.Context(), ownerID(c))
	if err != nil {
		ch.parent.fail(c, err, "failed to list collection")
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ch.view(e))
	}
	c.JSON(http.StatusOK, gin.H{
		"collection": ch.store.Kind(),
		"items":      out,
		"count":      len(out),
	})
}

// Add handles POST /me/<collection>
func (ch *CollectionHandler) Add(c *gin.Context) {
	var entry models.CollectionEntry
	if err := c.ShouldBindJSON(&entry); err != nil || entry.ItemID <= 0 {
		ch.parent.logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var saved *models.CollectionEntry
	var err error
	if ch.store.Kind().Upserts() {
		saved, err = ch.store.UpdateProgress(c.Request.Context(), ownerID(c), entry)
	} else {
		saved, err = ch.store.Add(c.Request.Context(), ownerID(c), entry)
	}
	if err != nil {
		ch.parent.fail(c, err, "failed to add to collection")
		return
	}

	status := http.StatusCreated
	if ch.store.Kind().Upserts() {
		status = http.StatusOK
	}
	c.JSON(status, ch.view(*saved))
}

// Get handles GET /me/<collection>/:itemId
func (ch *CollectionHandler) Get(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	entry, found, err := ch.store.Get(c.Request.Context(), ownerID(c), itemID)
	if err != nil {
		ch.parent.fail(c, err, "failed to read collection")
		return
	}

	body := gin.H{"item_id": itemID, "contains": found}
	if found {
		body["entry"] = ch.view(*entry)
	}
	c.JSON(http.StatusOK, body)
}

// Remove handles DELETE /me/<collection>/:itemId
func (ch *CollectionHandler) Remove(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	if err := ch.store.Remove(c.Request.Context(), ownerID(c), itemID); err != nil {
		ch.parent.fail(c, err, "failed to remove from collection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed successfully"})
}

// Clear handles DELETE /me/<collection>
func (ch *CollectionHandler) Clear(c *gin.Context) {
	n, err := ch.store.Clear(c.Request.Context(), ownerID(c))
	if err != nil {
		ch.parent.fail(c, err, "failed to clear collection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}
