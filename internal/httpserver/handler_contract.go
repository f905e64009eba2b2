package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"contractpay/internal/model"
	"contractpay/internal/service"
)

type ContractHandler struct {
	contractService *service.ContractService
}

func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// ListContracts handles GET /api/contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	contracts, err := h.contractService.ListContracts(c.Request.Context(), userID, currentUserType(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
		return
	}
	if contracts == nil {
		contracts = []model.Contract{}
	}
	c.JSON(http.StatusOK, contracts)
}

// GetContract handles GET /api/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	c.JSON(http.StatusOK, contract)
}

// CreateContract handles POST /api/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		Title              string     `json:"title" binding:"required,min=3"`
		Description        string     `json:"description" binding:"required,min=10"`
		ClientID           int        `json:"client_id" binding:"omitempty,gt=0"`
		FreelancerID       int        `json:"freelancer_id" binding:"omitempty,gt=0"`
		TotalAmount        float64    `json:"total_amount" binding:"required,gt=0"`
		Currency           string     `json:"currency"`
		ContractType       string     `json:"contract_type" binding:"required"`
		TermsAndConditions string     `json:"terms_and_conditions" binding:"required,min=10"`
		StartDate          time.Time  `json:"start_date" binding:"required"`
		EndDate            *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// The caller fills their own side of the contract.
	if currentUserType(c) == model.UserTypeClient {
		req.ClientID = userID
	} else if req.FreelancerID == 0 {
		req.FreelancerID = userID
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), service.CreateContractInput{
		Title:              req.Title,
		Description:        req.Description,
		ClientID:           req.ClientID,
		FreelancerID:       req.FreelancerID,
		TotalAmount:        req.TotalAmount,
		Currency:           req.Currency,
		ContractType:       req.ContractType,
		TermsAndConditions: req.TermsAndConditions,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contract"})
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// UpdateContractStatus handles PATCH /api/contracts/:id/status
func (h *ContractHandler) UpdateContractStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contract, err := h.contractService.UpdateContractStatus(c.Request.Context(), id, model.ContractStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrContractNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		}
		return
	}
	c.JSON(http.StatusOK, contract)
}

// ListMilestones handles GET /api/contracts/:id/milestones
func (h *ContractHandler) ListMilestones(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	milestones, err := h.contractService.ListMilestones(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list milestones"})
		return
	}
	if milestones == nil {
		milestones = []model.Milestone{}
	}
	c.JSON(http.StatusOK, milestones)
}

// CreateMilestone handles POST /api/milestones
func (h *ContractHandler) CreateMilestone(c *gin.Context) {
	var req struct {
		ContractID  int       `json:"contract_id" binding:"required,gt=0"`
		Title       string    `json:"title" binding:"required,min=3"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount" binding:"required,gt=0"`
		DueDate     time.Time `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	m, err := h.contractService.CreateMilestone(c.Request.Context(), service.CreateMilestoneInput{
		ContractID:  req.ContractID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create milestone"})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// UpdateMilestoneStatus handles PATCH /api/milestones/:id/status
func (h *ContractHandler) UpdateMilestoneStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	h.updateMilestone(c, id, model.MilestoneStatus(req.Status))
}

// CompleteMilestone handles POST /api/milestones/:id/complete
func (h *ContractHandler) CompleteMilestone(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}
	h.updateMilestone(c, id, model.MilestoneCompleted)
}

func (h *ContractHandler) updateMilestone(c *gin.Context, id int, status model.MilestoneStatus) {
	m, err := h.contractService.UpdateMilestoneStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "milestone not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// Payments handles GET /api/payments
func (h *ContractHandler) Payments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	p, err := h.contractService.ListPayments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Stats handles GET /api/stats
func (h *ContractHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	stats, err := h.contractService.Stats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
