package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"task-registry/internal/auth"
	"task-registry/internal/domain"
	"task-registry/internal/repository"
	"task-registry/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	tasks  service.TaskService
	users  service.UserService
	tokens *auth.TokenManager
}

func NewHandler(tasks service.TaskService, users service.UserService, tokens *auth.TokenManager) *Handler {
	return &Handler{
		tasks:  tasks,
		users:  users,
		tokens: tokens,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusAccepted, gin.H{"ok": "ok"})
		})
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
	}

	authed := api.Group("", h.requireSession())
	{
		authed.POST("/auth/logout", h.logout)
		authed.GET("/auth/me", h.me)
		authed.POST("/tasks", h.createTask)
		authed.GET("/tasks", h.listTasks)
		authed.GET("/tasks/search", h.searchTasks)
		authed.GET("/tasks/:title", h.getTask)
		authed.PATCH("/tasks/:title", h.updateTask)
		authed.DELETE("/tasks/:title", h.deleteTask)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Assignee    string `json:"assignee"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Assignee    *string `json:"assignee"`
	Completed   *bool   `json:"completed"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		req.Name = "New User"
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, session, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := h.tokens.Issue(session.Username, session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userToResponse(user),
	})
}

func (h *Handler) logout(c *gin.Context) {
	claims := sessionClaims(c)
	if claims != nil {
		h.users.Logout(c.Request.Context(), claims.ID)
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	user := sessionUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dueDate, ok := h.parseDueDate(c, req.DueDate)
	if !ok {
		return
	}
	if !h.resolveAssignee(c, req.Assignee) {
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), req.Title, req.Description, dueDate, req.Assignee)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.taskToResponse(c.Request.Context(), *task))
}

func (h *Handler) listTasks(c *gin.Context) {
	var completed *bool
	if raw := c.Query("completed"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag completed"})
			return
		}
		completed = &value
	}

	dueDate, ok := h.parseDueDate(c, c.Query("due_date"))
	if !ok {
		return
	}

	tasks, err := h.tasks.FilterTasks(c.Request.Context(), completed, dueDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.tasksToResponse(c.Request.Context(), tasks))
}

func (h *Handler) searchTasks(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search keyword is required"})
		return
	}

	tasks, err := h.tasks.SearchTasks(c.Request.Context(), keyword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.tasksToResponse(c.Request.Context(), tasks))
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.GetTask(c.Request.Context(), c.Param("title"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.taskToResponse(c.Request.Context(), *task))
}

func (h *Handler) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}

	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, ok := h.parseDueDate(c, *req.DueDate)
		if !ok {
			return
		}
		update.DueDate = dueDate
	}
	if req.Assignee != nil && *req.Assignee != "" {
		if !h.resolveAssignee(c, *req.Assignee) {
			return
		}
		update.Assignee = req.Assignee
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("title"), update)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.taskToResponse(c.Request.Context(), *task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	title := c.Param("title")

	deleted, err := h.tasks.DeleteTask(c.Request.Context(), title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": title})
}

// parseDueDate turns an optional YYYY-MM-DD string into a date, writing the
// 400 response itself when the format is wrong. The bool reports whether the
// caller may proceed.
func (h *Handler) parseDueDate(c *gin.Context, raw string) (*domain.Date, bool) {
	if raw == "" {
		return nil, true
	}
	dueDate, err := domain.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date format, expected YYYY-MM-DD"})
		return nil, false
	}
	return &dueDate, true
}

// resolveAssignee verifies an optional assignee username before it reaches
// the task store, writing the 400 response itself on an unknown user.
func (h *Handler) resolveAssignee(c *gin.Context, username string) bool {
	if username == "" {
		return true
	}
	if _, err := h.users.GetByUsername(c.Request.Context(), username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("user with username %q not found", username)})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}

type UserResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type AssigneeResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type TaskResponse struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *string           `json:"due_date,omitempty"`
	Assignee    *AssigneeResponse `json:"assignee,omitempty"`
	Completed   bool              `json:"completed"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		Username: user.Username,
		Name:     user.Name,
	}
}

func (h *Handler) taskToResponse(ctx context.Context, task domain.Task) TaskResponse {
	resp := TaskResponse{
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
	}
	if task.DueDate != nil {
		v := task.DueDate.String()
		resp.DueDate = &v
	}
	if task.Assignee != "" {
		assignee := &AssigneeResponse{Username: task.Assignee}
		if user, err := h.users.GetByUsername(ctx, task.Assignee); err == nil {
			assignee.Name = user.Name
		}
		resp.Assignee = assignee
	}
	return resp
}

func (h *Handler) tasksToResponse(ctx context.Context, tasks []domain.Task) []TaskResponse {
	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = h.taskToResponse(ctx, tasks[i])
	}
	return resp
}
