package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"jerusalem-quest/internal/domain"
)

type Handler struct {
	service QuizService
	log     *zap.Logger
	now     func() time.Time
}

func NewHandler(service QuizService, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log, now: time.Now}
}

type registerRequest struct {
	Name string `json:"name" binding:"required"`
}

type startGameRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type answerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	AnswerID   string `json:"answerId" binding:"required"`
	TimeMs     *int64 `json:"timeMs" binding:"required"`
}

type playerResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeSeconds    int       `json:"timeSeconds"`
	Badges         []string  `json:"badges"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toPlayerResponse(player domain.Player) playerResponse {
	var resp playerResponse
	_ = copier.Copy(&resp, &player)
	if resp.Badges == nil {
		resp.Badges = []string{}
	}
	return resp
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": h.now().UTC().Format(time.RFC3339)})
}

func (h *Handler) RegisterPlayer(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	player, err := h.service.RegisterPlayer(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPlayerResponse(player))
}

func (h *Handler) GetPlayer(c *gin.Context) {
	player, err := h.service.Player(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPlayerResponse(player))
}

func (h *Handler) Leaderboard(c *gin.Context) {
	players, err := h.service.Leaderboard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]playerResponse, 0, len(players))
	for _, p := range players {
		resp = append(resp, toPlayerResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) StartGame(c *gin.Context) {
	var req startGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId is required"})
		return
	}

	game, err := h.service.StartGame(c.Request.Context(), req.PlayerID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (h *Handler) SubmitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "questionId, answerId, and timeMs are required"})
		return
	}

	verdict, err := h.service.SubmitAnswer(c.Request.Context(), c.Param("id"), domain.AnswerSubmission{
		QuestionID: req.QuestionID,
		AnswerID:   req.AnswerID,
		TimeMs:     *req.TimeMs,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

func (h *Handler) CompleteGame(c *gin.Context) {
	result, err := h.service.CompleteGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if result.Badges == nil {
		result.Badges = []string{}
	}

	c.JSON(http.StatusOK, result)
}
