package gateway

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"campus-desk/domain"
	apperrors "campus-desk/errors"
	"campus-desk/search"
	"campus-desk/services"

	"github.com/gin-gonic/gin"
)

type RegisterBody struct {
	Username     string `json:"username" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Registration string `json:"registration"`
	Password     string `json:"password" binding:"required"`
}

type LoginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TaskBody struct {
	Title         string    `json:"title" binding:"required"`
	Type          string    `json:"type" binding:"required,oneof=individual group revision presentation"`
	Description   string    `json:"description"`
	Deadline      time.Time `json:"deadline"`
	Subject       string    `json:"subject" binding:"required"`
	Priority      string    `json:"priority"`
	EstimatedTime string    `json:"estimatedTime"`
	Status        string    `json:"status" binding:"omitempty,oneof=pending in_progress done"`
}

type RestHandler struct {
	log         *slog.Logger
	auth        services.IAuthService
	tasks       services.ITaskService
	desk        services.IDeskService
	index       search.IChatIndex
	searchLimit int
}

func NewRestHandler(log *slog.Logger, auth services.IAuthService,
	tasks services.ITaskService, desk services.IDeskService,
	index search.IChatIndex, searchLimit int) *RestHandler {
	return &RestHandler{
		log:         log,
		auth:        auth,
		tasks:       tasks,
		desk:        desk,
		index:       index,
		searchLimit: searchLimit,
	}
}

func (h *RestHandler) Register(c *gin.Context) {
	var body RegisterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.auth.Register(body.Username, body.Name, body.Registration, body.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *RestHandler) Login(c *gin.Context) {
	var body LoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, claims, err := h.auth.Login(body.Username, body.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"username": claims.Username,
			"name":     claims.Name,
			"role":     claims.Role,
		},
	})
}

func (h *RestHandler) ListTasks(c *gin.Context) {
	claims := MustClaims(c)
	tasks, err := h.tasks.ListForUser(claims.Username, c.Query("filter"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *RestHandler) ListAllTasks(c *gin.Context) {
	tasks, err := h.tasks.ListAll()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *RestHandler) CreateTask(c *gin.Context) {
	claims := MustClaims(c)
	var body TaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), claims.Username, toTask(body, ""))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *RestHandler) UpdateTask(c *gin.Context) {
	claims := MustClaims(c)
	var body TaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task := toTask(body, c.Param("id"))
	err := h.tasks.Update(c.Request.Context(), claims.Username, claims.Role == "admin", task)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *RestHandler) DeleteTask(c *gin.Context) {
	claims := MustClaims(c)
	if err := h.tasks.Delete(claims.Username, claims.Role == "admin", c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RestHandler) StudentOverview(c *gin.Context) {
	claims := MustClaims(c)
	overview, err := h.tasks.UserOverview(claims.Username, time.Now().UTC())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *RestHandler) AdminOverview(c *gin.Context) {
	overview, err := h.tasks.AdminOverviewStats(time.Now().UTC())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *RestHandler) Reports(c *gin.Context) {
	claims := MustClaims(c)
	reports, err := h.tasks.UserReports(claims.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *RestHandler) AdminReports(c *gin.Context) {
	reports, err := h.tasks.AllReports()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *RestHandler) StudentReport(c *gin.Context) {
	performances, err := h.tasks.StudentReport()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": performances})
}

func (h *RestHandler) Notifications(c *gin.Context) {
	claims := MustClaims(c)
	notifications, err := h.tasks.Notifications(claims.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// History pages through a room's stored messages, newest first.
func (h *RestHandler) History(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}
	messages, next, err := h.desk.History(domain.RoomID(roomID), cursor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "cursor": next})
}

func (h *RestHandler) SearchChats(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}
	hits, err := h.index.Search(c.Request.Context(), query, h.searchLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

func (h *RestHandler) fail(c *gin.Context, err error) {
	status := apperrors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func toTask(body TaskBody, id string) domain.Task {
	return domain.Task{
		ID:            id,
		Title:         body.Title,
		Type:          domain.TaskType(body.Type),
		Description:   body.Description,
		Deadline:      body.Deadline,
		Subject:       body.Subject,
		Priority:      body.Priority,
		EstimatedTime: body.EstimatedTime,
		Status:        domain.TaskStatus(body.Status),
	}
}
