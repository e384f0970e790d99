package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leolibre/leolibre-backend/internal/middleware"
	"github.com/leolibre/leolibre-backend/internal/model"
	"github.com/leolibre/leolibre-backend/internal/response"
	"github.com/leolibre/leolibre-backend/internal/service"
	"github.com/leolibre/leolibre-backend/internal/validator"
)

// ClubHandler handles club and membership endpoints.
type ClubHandler struct {
	clubService *service.ClubService
}

// NewClubHandler creates a new ClubHandler.
func NewClubHandler(clubService *service.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// CreateClub godoc
// POST /api/v1/clubs
// Creates a club; the caller becomes its founder and receives a founder token.
func (h *ClubHandler) CreateClub(c *gin.Context) {
	userID, ok := userIDFromQueryOrClaims(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateClubRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	club, token, err := h.clubService.CreateClub(c.Request.Context(), userID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"club": club, "token": token})
}

// ListClubs godoc
// GET /api/v1/clubs
func (h *ClubHandler) ListClubs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	clubs, total, err := h.clubService.ListClubs(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"clubs": clubs}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// GetClub godoc
// GET /api/v1/clubs/:club_id
func (h *ClubHandler) GetClub(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	club, err := h.clubService.GetClub(c.Request.Context(), clubID)
	if err != nil {
		if errors.Is(err, service.ErrClubNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"club": club})
}

// UpdateClub godoc
// PATCH /api/v1/clubs/:club_id
// Founder only.
func (h *ClubHandler) UpdateClub(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	var req model.UpdateClubRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	club, err := h.clubService.UpdateClub(c.Request.Context(), clubID, &req)
	if err != nil {
		if errors.Is(err, service.ErrClubNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"club": club})
}

// DeleteClub godoc
// DELETE /api/v1/clubs/:club_id
// Founder only. Soft delete.
func (h *ClubHandler) DeleteClub(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	if err := h.clubService.DeleteClub(c.Request.Context(), clubID); err != nil {
		if errors.Is(err, service.ErrClubNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// JoinClub godoc
// POST /api/v1/clubs/:club_id/join
// Public clubs admit immediately and return a member token; private clubs
// file a pending request for the founder to resolve.
func (h *ClubHandler) JoinClub(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	userID, ok := userIDFromQueryOrClaims(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.JoinClubRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pending, token, err := h.clubService.JoinClub(c.Request.Context(), clubID, userID, req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClubNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAlreadyMember):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyMember)
		case errors.Is(err, service.ErrRequestPending):
			response.Fail(c, http.StatusConflict, response.ErrRequestPending)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	if pending {
		response.Success(c, http.StatusAccepted, gin.H{"pending": true})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pending": false, "token": token})
}

// ListMembers godoc
// GET /api/v1/clubs/:club_id/members
func (h *ClubHandler) ListMembers(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	members, err := h.clubService.ListMembers(c.Request.Context(), clubID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"members": members})
}

// ListRequests godoc
// GET /api/v1/clubs/:club_id/requests
// Founder only.
func (h *ClubHandler) ListRequests(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	requests, err := h.clubService.ListPendingRequests(c.Request.Context(), clubID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": requests})
}

// ApproveRequest godoc
// POST /api/v1/clubs/:club_id/requests/:user_id/approve
// Founder only.
func (h *ClubHandler) ApproveRequest(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var req model.JoinClubRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.clubService.ApproveRequest(c.Request.Context(), clubID, userID, req.Nickname); err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrRequestNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"approved": true})
}

// RejectRequest godoc
// POST /api/v1/clubs/:club_id/requests/:user_id/reject
// Founder only.
func (h *ClubHandler) RejectRequest(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.clubService.RejectRequest(c.Request.Context(), clubID, userID); err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrRequestNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rejected": true})
}

// RemoveMember godoc
// DELETE /api/v1/clubs/:club_id/members/:user_id
// Founder only. The founder cannot remove themselves.
func (h *ClubHandler) RemoveMember(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.clubService.RemoveMember(c.Request.Context(), clubID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotMember):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrFounderLeaving):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// pathID parses a positive integer path parameter, failing the request on
// bad input.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// userIDFromQueryOrClaims resolves the acting user: token claims when the
// route is authenticated, the user_id query param on the open enrollment
// routes.
func userIDFromQueryOrClaims(c *gin.Context) (int64, bool) {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UserID, true
	}
	id, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
