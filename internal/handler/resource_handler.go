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

// ResourceHandler handles reading resource endpoints.
type ResourceHandler struct {
	resourceService *service.ResourceService
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(resourceService *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

// UploadResource godoc
// POST /api/v1/clubs/:club_id/resources
// Founder only. Multipart form: the document file plus its metadata.
func (h *ResourceHandler) UploadResource(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	var req model.UploadResourceRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer file.Close()

	res, err := h.resourceService.Upload(c.Request.Context(), clubID, &req, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"resource": res})
}

// ListResources godoc
// GET /api/v1/clubs/:club_id/resources
func (h *ResourceHandler) ListResources(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	resources, total, err := h.resourceService.ListResources(c.Request.Context(), clubID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"resources": resources}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// GetResource godoc
// GET /api/v1/clubs/:club_id/resources/:resource_id
func (h *ResourceHandler) GetResource(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	resourceID, ok := pathID(c, "resource_id")
	if !ok {
		return
	}

	res, err := h.resourceService.GetResource(c.Request.Context(), clubID, resourceID)
	if err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

// DownloadResource godoc
// GET /api/v1/clubs/:club_id/resources/:resource_id/download
// Returns a time-limited link and counts the read for the caller.
func (h *ResourceHandler) DownloadResource(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	resourceID, ok := pathID(c, "resource_id")
	if !ok {
		return
	}

	url, err := h.resourceService.GetDownloadURL(c.Request.Context(), clubID, resourceID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// DeleteResource godoc
// DELETE /api/v1/clubs/:club_id/resources/:resource_id
// Founder only. Soft delete.
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	clubID, ok := pathID(c, "club_id")
	if !ok {
		return
	}
	resourceID, ok := pathID(c, "resource_id")
	if !ok {
		return
	}

	if err := h.resourceService.DeleteResource(c.Request.Context(), clubID, resourceID); err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
