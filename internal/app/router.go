// Package app is the HTTP surface of the client application. It exposes the
// session endpoints plus the protected pages, which read and mutate through
// the cached API client.
package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contractpay/internal/apiclient"
	"contractpay/internal/model"
	"contractpay/internal/routeguard"
	"contractpay/internal/session"
)

type Handlers struct {
	store  *session.Store
	api    *apiclient.Client
	logger *zap.Logger
}

func NewHandlers(store *session.Store, api *apiclient.Client, logger *zap.Logger) *Handlers {
	return &Handlers{
		store:  store,
		api:    api,
		logger: logger,
	}
}

func NewRouter(h *Handlers) *gin.Engine {
	r := gin.Default()

	// Session
	r.GET("/session", h.Session)
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/logout", h.Logout)

	// Protected pages
	protected := r.Group("/")
	protected.Use(routeguard.Middleware(h.store))
	{
		protected.GET("/dashboard", h.Dashboard)
		protected.GET("/contracts", h.Contracts)
		protected.POST("/contracts", h.CreateContract)
		protected.GET("/contracts/:id", h.Contract)
		protected.PATCH("/contracts/:id/status", h.UpdateContractStatus)
		protected.GET("/contracts/:id/milestones", h.Milestones)
		protected.POST("/milestones", h.CreateMilestone)
		protected.PATCH("/milestones/:id/status", h.UpdateMilestoneStatus)
		protected.POST("/milestones/:id/complete", h.CompleteMilestone)
		protected.GET("/payments", h.Payments)
		protected.GET("/templates", h.Templates)
	}

	return r
}

// Session handles GET /session
func (h *Handlers) Session(c *gin.Context) {
	snap := h.store.Snapshot()
	resp := gin.H{"state": snap.State.String()}
	if snap.User != nil {
		resp["user"] = snap.User
	}
	c.JSON(http.StatusOK, resp)
}

// Login handles POST /login. The API verifies the credentials; the session
// store then adopts the returned account and the client keeps its token for
// the protected fetches.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.authenticate(c, req.Email, req.Password, http.StatusOK)
}

// Register handles POST /register. The account is created on the API, then
// signed in so the fresh session carries the API's identity and a token.
func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3"`
		Password string `json:"password" binding:"required,min=6"`
		Email    string `json:"email" binding:"required,email"`
		FullName string `json:"full_name" binding:"required,min=2"`
		UserType string `json:"user_type" binding:"omitempty,oneof=client freelancer business admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.api.RegisterUser(c.Request.Context(), apiclient.RegisterUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		UserType: req.UserType,
	}); err != nil {
		h.fail(c, "register account", err)
		return
	}
	h.authenticate(c, req.Email, req.Password, http.StatusCreated)
}

// authenticate signs in against the API and establishes the session.
func (h *Handlers) authenticate(c *gin.Context, email, password string, okStatus int) {
	account, token, err := h.api.LoginUser(c.Request.Context(), email, password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	h.api.SetToken(token)

	u, err := h.store.Establish(c.Request.Context(), sessionUser(account))
	if err != nil {
		h.api.SetToken("")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist session"})
		return
	}
	c.JSON(okStatus, u)
}

// Logout handles POST /logout
func (h *Handlers) Logout(c *gin.Context) {
	h.store.Logout(c.Request.Context())
	h.api.SetToken("")
	c.Status(http.StatusNoContent)
}

// Dashboard handles GET /dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	userID, ok := guardedUserID(c)
	if !ok {
		return
	}
	stats, err := h.api.Stats(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "load stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Contracts handles GET /contracts
func (h *Handlers) Contracts(c *gin.Context) {
	userID, ok := guardedUserID(c)
	if !ok {
		return
	}
	contracts, err := h.api.Contracts(c.Request.Context(), userID, routeguard.CurrentUser(c).UserType)
	if err != nil {
		h.fail(c, "load contracts", err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// CreateContract handles POST /contracts
func (h *Handlers) CreateContract(c *gin.Context) {
	userID, ok := guardedUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title              string  `json:"title" binding:"required,min=3"`
		Description        string  `json:"description" binding:"required,min=10"`
		ClientID           int     `json:"client_id" binding:"omitempty,gt=0"`
		FreelancerID       int     `json:"freelancer_id" binding:"omitempty,gt=0"`
		TotalAmount        float64 `json:"total_amount" binding:"required,gt=0"`
		ContractType       string  `json:"contract_type" binding:"required"`
		StartDate          string  `json:"start_date" binding:"required"`
		EndDate            string  `json:"end_date"`
		TermsAndConditions string  `json:"terms_and_conditions" binding:"required,min=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	in := apiclient.CreateContractInput{
		Title:              req.Title,
		Description:        req.Description,
		ClientID:           req.ClientID,
		FreelancerID:       req.FreelancerID,
		TotalAmount:        req.TotalAmount,
		ContractType:       req.ContractType,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		TermsAndConditions: req.TermsAndConditions,
	}
	// The caller fills their own side of the contract.
	if routeguard.CurrentUser(c).UserType == model.UserTypeClient {
		in.ClientID = userID
	} else if in.FreelancerID == 0 {
		in.FreelancerID = userID
	}

	contract, err := h.api.CreateContract(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create contract", err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// Contract handles GET /contracts/:id
func (h *Handlers) Contract(c *gin.Context) {
	id, ok := pathID(c, "invalid contract id")
	if !ok {
		return
	}
	contract, err := h.api.Contract(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "load contract", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract":     contract,
		"status_label": model.StatusLabel(string(contract.Status)),
		"badge":        model.BadgeColor(string(contract.Status)),
	})
}

// UpdateContractStatus handles PATCH /contracts/:id/status
func (h *Handlers) UpdateContractStatus(c *gin.Context) {
	id, ok := pathID(c, "invalid contract id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	contract, err := h.api.UpdateContractStatus(c.Request.Context(), id, model.ContractStatus(req.Status))
	if err != nil {
		h.fail(c, "update contract status", err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// Milestones handles GET /contracts/:id/milestones
func (h *Handlers) Milestones(c *gin.Context) {
	id, ok := pathID(c, "invalid contract id")
	if !ok {
		return
	}
	milestones, err := h.api.Milestones(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "load milestones", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"milestones": milestones,
		"progress":   model.Progress(milestones),
	})
}

// CreateMilestone handles POST /milestones
func (h *Handlers) CreateMilestone(c *gin.Context) {
	var req struct {
		ContractID  int     `json:"contract_id" binding:"required,gt=0"`
		Title       string  `json:"title" binding:"required,min=3"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount" binding:"required,gt=0"`
		DueDate     string  `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	m, err := h.api.CreateMilestone(c.Request.Context(), apiclient.CreateMilestoneInput{
		ContractID:  req.ContractID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.fail(c, "create milestone", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// UpdateMilestoneStatus handles PATCH /milestones/:id/status
func (h *Handlers) UpdateMilestoneStatus(c *gin.Context) {
	id, ok := pathID(c, "invalid milestone id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	m, err := h.api.UpdateMilestoneStatus(c.Request.Context(), id, model.MilestoneStatus(req.Status))
	if err != nil {
		h.fail(c, "update milestone status", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// CompleteMilestone handles POST /milestones/:id/complete
func (h *Handlers) CompleteMilestone(c *gin.Context) {
	id, ok := pathID(c, "invalid milestone id")
	if !ok {
		return
	}
	m, err := h.api.CompleteMilestone(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "complete milestone", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Payments handles GET /payments
func (h *Handlers) Payments(c *gin.Context) {
	userID, ok := guardedUserID(c)
	if !ok {
		return
	}
	payments, err := h.api.Payments(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "load payments", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// Templates handles GET /templates
func (h *Handlers) Templates(c *gin.Context) {
	templates, err := h.api.Templates(c.Request.Context())
	if err != nil {
		h.fail(c, "load templates", err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handlers) fail(c *gin.Context, action string, err error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}
	h.logger.Error("upstream call failed", zap.String("action", action), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
}

// sessionUser converts an API account into the session record shape. The
// session ID keeps the API's numeric identity so protected pages can key
// their queries by it.
func sessionUser(u *model.User) *session.User {
	return &session.User{
		ID:       strconv.Itoa(u.ID),
		Email:    u.Email,
		Name:     u.FullName,
		Username: u.Username,
		UserType: u.UserType,
	}
}

func pathID(c *gin.Context, msg string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return id, true
}

// guardedUserID parses the numeric id of the guard-attached session user.
func guardedUserID(c *gin.Context) (int, bool) {
	u := routeguard.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	id, err := strconv.Atoi(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid session user id"})
		return 0, false
	}
	return id, true
}
