package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leolibre/leolibre-backend/internal/generator"
	"github.com/leolibre/leolibre-backend/internal/middleware"
	"github.com/leolibre/leolibre-backend/internal/model"
	"github.com/leolibre/leolibre-backend/internal/response"
	"github.com/leolibre/leolibre-backend/internal/service"
	"github.com/leolibre/leolibre-backend/internal/validator"
)

// QuizHandler handles quiz lifecycle and submission endpoints.
type QuizHandler struct {
	quizService       *service.QuizService
	submissionService *service.SubmissionService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, submissionService *service.SubmissionService) *QuizHandler {
	return &QuizHandler{
		quizService:       quizService,
		submissionService: submissionService,
	}
}

// GetQuiz godoc
// GET /api/v1/clubs/:club_id/resources/:resource_id/quiz
// Founders get the full quiz, generating it on first access. Members get
// the answer-stripped view and never trigger generation.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
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

	if claims.Role == model.RoleFounder {
		quiz, created, err := h.quizService.GetOrCreate(c.Request.Context(), clubID, resourceID, claims.UserID)
		if err != nil {
			failQuizError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		response.Success(c, status, gin.H{"quiz": quiz})
		return
	}

	quiz, err := h.quizService.ViewForMember(c.Request.Context(), resourceID)
	if err != nil {
		failQuizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// RegenerateQuiz godoc
// POST /api/v1/clubs/:club_id/resources/:resource_id/quiz/regenerate
// Founder only. Replaces the quiz content; existing results stay attached.
func (h *QuizHandler) RegenerateQuiz(c *gin.Context) {
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

	quiz, err := h.quizService.Regenerate(c.Request.Context(), clubID, resourceID, claims.UserID)
	if err != nil {
		failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// SubmitQuiz godoc
// POST /api/v1/clubs/:club_id/resources/:resource_id/quiz/submit
// Grades the caller's answers. The first submission is stored; repeats
// return the stored outcome with already_answered set.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
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

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.submissionService.Submit(c.Request.Context(), claims.UserID, clubID, claims.Role, resourceID, &req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerCountMismatch) {
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerCountMismatch)
			return
		}
		failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": outcome})
}

// CheckAnswered godoc
// GET /api/v1/clubs/:club_id/resources/:resource_id/quiz/answered
// Reports whether the caller already has a stored result.
func (h *QuizHandler) CheckAnswered(c *gin.Context) {
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

	answered, err := h.submissionService.HasAnswered(c.Request.Context(), claims.UserID, clubID, resourceID)
	if err != nil {
		failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answered": answered})
}

// failQuizError maps quiz pipeline errors onto response codes. Generator
// transport failures and payloads the normalizer rejects both surface as
// upstream problems, never as stored data.
func failQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
	case errors.Is(err, service.ErrResourceNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, generator.ErrUpstreamInvalid):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamInvalid)
	case errors.Is(err, generator.ErrMissingKeys),
		errors.Is(err, generator.ErrInvalidShape),
		errors.Is(err, generator.ErrMalformedQuestion),
		errors.Is(err, generator.ErrInconsistentQuizShape):
		response.Fail(c, http.StatusBadGateway, response.ErrMalformedQuiz)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
