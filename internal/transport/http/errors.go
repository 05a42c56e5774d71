package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jerusalem-quest/internal/domain"
)

var errorMessages = map[error]string{
	domain.ErrPlayerNotFound:   "Player not found",
	domain.ErrSessionNotFound:  "Game session not found",
	domain.ErrQuestionNotFound: "Question not found",
	domain.ErrSessionCompleted: "Game session already completed",
	domain.ErrAlreadyAnswered:  "Question already answered",
	domain.ErrCatalogEmpty:     "No questions available",
}

// writeError maps domain errors onto status codes with a {"error": message} body.
func (h *Handler) writeError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": messageFor(err)})
	case domain.IsInvalidState(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": messageFor(err)})
	default:
		_ = c.Error(err)
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		msg := "Internal server error"
		if errors.Is(err, domain.ErrCatalogEmpty) {
			msg = errorMessages[domain.ErrCatalogEmpty]
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func messageFor(err error) string {
	for target, msg := range errorMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return err.Error()
}
