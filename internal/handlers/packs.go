package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

type PackHandler struct {
	log   *logger.Logger
	packs store.PackStore
}

func NewPackHandler(baseLog *logger.Logger, packs store.PackStore) *PackHandler {
	return &PackHandler{log: baseLog.With("handler", "packs"), packs: packs}
}

// ListPacks returns a lightweight listing, newest first. Full pack bodies
// can be large, so the list carries summaries only.
func (h *PackHandler) ListPacks(c *gin.Context) {
	packs, err := h.packs.List(c.Request.Context())
	if err != nil {
		h.log.Error("Pack listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list packs"})
		return
	}
	summaries := make([]gin.H, 0, len(packs))
	for _, p := range packs {
		summaries = append(summaries, packSummary(p))
	}
	c.JSON(http.StatusOK, gin.H{"packs": summaries})
}

func (h *PackHandler) GetPack(c *gin.Context) {
	packID := c.Param("packId")
	pack, err := h.packs.Get(c.Request.Context(), packID)
	if err != nil {
		h.log.Error("Pack lookup failed", "pack_id", packID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load pack"})
		return
	}
	if pack == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pack not found"})
		return
	}
	c.JSON(http.StatusOK, pack)
}

func packSummary(p *domain.Pack) gin.H {
	verified := 0
	for _, n := range p.Notes {
		if n.Verified {
			verified++
		}
	}
	return gin.H{
		"id":             p.ID,
		"title":          p.Title,
		"created_at":     p.CreatedAt,
		"lecture_count":  len(p.Notes),
		"question_count": len(p.Questions),
		"verified_notes": verified,
	}
}
