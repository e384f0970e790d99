package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leolibre/leolibre-backend/internal/response"
	"github.com/leolibre/leolibre-backend/internal/service"
)

// RankingHandler handles ranking endpoints.
type RankingHandler struct {
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// ClubRanking godoc
// GET /api/v1/clubs/:club_id/ranking
// Members ordered by accumulated score.
func (h *RankingHandler) ClubRanking(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	entries, err := h.rankingService.ClubRanking(c.Request.Context(), clubID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"ranking": entries})
}

// ResourceRanking godoc
// GET /api/v1/clubs/:club_id/resources/:resource_id/ranking
// Everyone who answered the resource's quiz, best score first.
func (h *RankingHandler) ResourceRanking(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	resourceID, ok := pathID(c, "resource_id")
	if !ok {
		return
	}

	entries, err := h.rankingService.ResourceRanking(c.Request.Context(), clubID, resourceID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"ranking": entries})
}
