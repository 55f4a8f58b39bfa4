package handlers

import (
	"net/http"
	"strconv"

	"srsgraph/scheduler/apperr"
	"srsgraph/scheduler/dao"
	"srsgraph/scheduler/models"
	"srsgraph/scheduler/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SRSHandler exposes the external interface described by §6.1: reviews,
// due queues, progress/stats, status transitions, sessions and
// prerequisite edges.
type SRSHandler struct {
	db          *gorm.DB
	srsService  *services.SRSService
	srsDao      *dao.SRSDao
	domainDAO   *dao.DomainDAO
	progressDAO *dao.ProgressDAO
}

// NewSRSHandler creates a new SRSHandler
func NewSRSHandler(db *gorm.DB, srsService *services.SRSService, domainDAO *dao.DomainDAO, progressDAO *dao.ProgressDAO) *SRSHandler {
	return &SRSHandler{
		db:          db,
		srsService:  srsService,
		srsDao:      dao.NewSRSDao(db),
		domainDAO:   domainDAO,
		progressDAO: progressDAO,
	}
}

func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		apperr.WriteJSON(c, apperr.Auth("user ID not found in context"))
		return 0, false
	}
	return userID.(uint), true
}

func isRequestAdmin(c *gin.Context) bool {
	isAdmin, exists := c.Get("isAdmin")
	return exists && isAdmin.(bool)
}

// requireDomainAccess enforces §6.3: a user may only read/write progress on
// domains they own or are enrolled in. Edge CRUD is stricter and passes
// ownershipOnly=true, since creating/deleting prerequisite edges reshapes
// the domain's graph for every enrolled user.
func (h *SRSHandler) requireDomainAccess(c *gin.Context, userID, domainID uint, ownershipOnly bool) bool {
	domain, err := h.domainDAO.FindByID(domainID)
	if err != nil {
		apperr.WriteJSON(c, apperr.NotFound("domain not found"))
		return false
	}

	if domain.OwnerID == userID || isRequestAdmin(c) {
		return true
	}
	if ownershipOnly {
		apperr.WriteJSON(c, apperr.Forbidden("only the domain owner may modify its prerequisite graph"))
		return false
	}

	enrolled, err := h.progressDAO.IsEnrolled(userID, domainID)
	if err != nil {
		apperr.WriteJSON(c, apperr.Transient("failed to check domain enrollment", err))
		return false
	}
	if !enrolled {
		apperr.WriteJSON(c, apperr.Forbidden("you don't have access to this domain"))
		return false
	}
	return true
}

// requireNodeDomainAccess resolves the domain a node belongs to and applies
// requireDomainAccess to it.
func (h *SRSHandler) requireNodeDomainAccess(c *gin.Context, userID, nodeID uint, nodeType string, ownershipOnly bool) bool {
	domainID, err := h.srsService.GetDomainIDForNode(nodeID, nodeType)
	if err != nil {
		apperr.WriteJSON(c, err)
		return false
	}
	return h.requireDomainAccess(c, userID, domainID, ownershipOnly)
}

// === Review Endpoints ===

// SubmitReview handles review submission
func (h *SRSHandler) SubmitReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.ReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperr.WriteJSON(c, apperr.Input(err.Error()))
		return
	}

	if request.NodeType != "definition" && request.NodeType != "exercise" {
		apperr.WriteJSON(c, apperr.Input("nodeType must be 'definition' or 'exercise'"))
		return
	}
	if request.Quality < 0 || request.Quality > 5 {
		apperr.WriteJSON(c, apperr.Input("quality must be between 0 and 5"))
		return
	}

	if !h.requireNodeDomainAccess(c, userID, request.NodeID, request.NodeType, false) {
		return
	}

	response, err := h.srsService.SubmitReview(userID, &request)
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetDueReviews gets nodes due for review
func (h *SRSHandler) GetDueReviews(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	domainID, err := strconv.ParseUint(c.Param("domainId"), 10, 32)
	if err != nil {
		apperr.WriteJSON(c, apperr.Input("invalid domain ID"))
		return
	}

	nodeType := c.Query("type")
	if nodeType == "" {
		nodeType = "mixed"
	}
	if nodeType != "definition" && nodeType != "exercise" && nodeType != "mixed" {
		apperr.WriteJSON(c, apperr.Input("type must be 'definition', 'exercise', or 'mixed'"))
		return
	}

	if !h.requireDomainAccess(c, userID, uint(domainID), false) {
		return
	}

	dueNodes, err := h.srsService.GetDueReviews(userID, uint(domainID), nodeType)
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dueNodes": dueNodes})
}

// GetReviewHistory gets review history for a user
func (h *SRSHandler) GetReviewHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var nodeID *uint
	var nodeType *string

	if nodeIDStr := c.Query("nodeId"); nodeIDStr != "" {
		if id, err := strconv.ParseUint(nodeIDStr, 10, 32); err == nil {
			nodeIDVal := uint(id)
			nodeID = &nodeIDVal
		}
	}
	if nodeTypeStr := c.Query("nodeType"); nodeTypeStr != "" {
		nodeType = &nodeTypeStr
	}

	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	history, err := h.srsService.GetReviewHistory(userID, nodeID, nodeType, limit)
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// === Progress Endpoints ===

// GetDomainProgress gets progress for all nodes in a domain
func (h *SRSHandler) GetDomainProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	domainID, err := strconv.ParseUint(c.Param("domainId"), 10, 32)
	if err != nil {
		apperr.WriteJSON(c, apperr.Input("invalid domain ID"))
		return
	}

	if !h.requireDomainAccess(c, userID, uint(domainID), false) {
		return
	}

	progress, err := h.srsService.GetDomainProgress(userID, uint(domainID))
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// GetDomainStats gets statistics for a domain
func (h *SRSHandler) GetDomainStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	domainID, err := strconv.ParseUint(c.Param("domainId"), 10, 32)
	if err != nil {
		apperr.WriteJSON(c, apperr.Input("invalid domain ID"))
		return
	}

	if !h.requireDomainAccess(c, userID, uint(domainID), false) {
		return
	}

	stats, err := h.srsService.GetDomainStats(userID, uint(domainID))
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UpdateNodeStatus updates the status of a node
func (h *SRSHandler) UpdateNodeStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperr.WriteJSON(c, apperr.Input(err.Error()))
		return
	}

	switch request.Status {
	case "fresh", "tackling", "grasped", "learned":
	default:
		apperr.WriteJSON(c, apperr.Input("status must be one of: fresh, tackling, grasped, learned"))
		return
	}

	if request.NodeType != "definition" && request.NodeType != "exercise" {
		apperr.WriteJSON(c, apperr.Input("nodeType must be 'definition' or 'exercise'"))
		return
	}

	if !h.requireNodeDomainAccess(c, userID, request.NodeID, request.NodeType, false) {
		return
	}

	if err := h.srsService.UpdateNodeStatus(userID, request.NodeID, request.NodeType, request.Status); err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "node status updated successfully"})
}

// === Session Endpoints ===

// StartSession starts a new study session
func (h *SRSHandler) StartSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.SessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperr.WriteJSON(c, apperr.Input(err.Error()))
		return
	}

	switch request.SessionType {
	case "definition", "exercise", "mixed":
	default:
		apperr.WriteJSON(c, apperr.Input("sessionType must be one of: definition, exercise, mixed"))
		return
	}

	if !h.requireDomainAccess(c, userID, request.DomainID, false) {
		return
	}

	session, err := h.srsService.StartSession(userID, request.DomainID, request.SessionType)
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	response := &models.SessionResponse{
		ID:                session.ID,
		DomainID:          session.DomainID,
		SessionType:       session.SessionType,
		StartTime:         session.StartTime,
		TotalReviews:      session.TotalReviews,
		SuccessfulReviews: session.SuccessfulReviews,
	}

	c.JSON(http.StatusCreated, response)
}

// EndSession ends a study session
func (h *SRSHandler) EndSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sessionID, err := strconv.ParseUint(c.Param("sessionId"), 10, 32)
	if err != nil {
		apperr.WriteJSON(c, apperr.Input("invalid session ID"))
		return
	}

	session, err := h.srsDao.GetSession(uint(sessionID))
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	if session.UserID != userID {
		isAdmin, adminExists := c.Get("isAdmin")
		if !adminExists || !isAdmin.(bool) {
			apperr.WriteJSON(c, apperr.Forbidden("you don't have access to this session"))
			return
		}
	}

	if err := h.srsService.EndSession(uint(sessionID)); err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session ended successfully"})
}

// GetUserSessions gets user's study sessions
func (h *SRSHandler) GetUserSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	sessions, err := h.srsService.GetUserSessions(userID, limit)
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	responses := make([]models.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		var duration *int
		if session.EndTime != nil {
			d := int(session.EndTime.Sub(session.StartTime).Seconds())
			duration = &d
		}

		responses = append(responses, models.SessionResponse{
			ID:                session.ID,
			DomainID:          session.DomainID,
			SessionType:       session.SessionType,
			StartTime:         session.StartTime,
			EndTime:           session.EndTime,
			TotalReviews:      session.TotalReviews,
			SuccessfulReviews: session.SuccessfulReviews,
			Duration:          duration,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": responses})
}

// === Prerequisites Endpoints ===

// CreatePrerequisite creates a prerequisite relationship
func (h *SRSHandler) CreatePrerequisite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request models.PrerequisiteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperr.WriteJSON(c, apperr.Input(err.Error()))
		return
	}

	if request.NodeType != "definition" && request.NodeType != "exercise" {
		apperr.WriteJSON(c, apperr.Input("nodeType must be 'definition' or 'exercise'"))
		return
	}
	if request.PrerequisiteType != "definition" && request.PrerequisiteType != "exercise" {
		apperr.WriteJSON(c, apperr.Input("prerequisiteType must be 'definition' or 'exercise'"))
		return
	}
	if request.Weight == 0 {
		request.Weight = 1.0
	}

	if !h.requireNodeDomainAccess(c, userID, request.NodeID, request.NodeType, true) {
		return
	}

	prerequisite := &models.NodePrerequisite{
		NodeID:           request.NodeID,
		NodeType:         request.NodeType,
		PrerequisiteID:   request.PrerequisiteID,
		PrerequisiteType: request.PrerequisiteType,
		Weight:           request.Weight,
		IsManual:         request.IsManual,
	}

	if err := h.srsService.CreatePrerequisite(prerequisite); err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, prerequisite)
}

// GetPrerequisites gets prerequisites for a domain
func (h *SRSHandler) GetPrerequisites(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("domainId"), 10, 32)
	if err != nil {
		apperr.WriteJSON(c, apperr.Input("invalid domain ID"))
		return
	}

	prerequisites, err := h.srsService.GetPrerequisitesByDomain(uint(domainID))
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prerequisites": prerequisites})
}

// DeletePrerequisite deletes a prerequisite relationship
func (h *SRSHandler) DeletePrerequisite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prerequisiteID, err := strconv.ParseUint(c.Param("prerequisiteId"), 10, 32)
	if err != nil {
		apperr.WriteJSON(c, apperr.Input("invalid prerequisite ID"))
		return
	}

	prerequisite, err := h.srsService.GetPrerequisiteByID(uint(prerequisiteID))
	if err != nil {
		apperr.WriteJSON(c, err)
		return
	}
	if !h.requireNodeDomainAccess(c, userID, prerequisite.NodeID, prerequisite.NodeType, true) {
		return
	}

	if err := h.srsService.DeletePrerequisite(uint(prerequisiteID)); err != nil {
		apperr.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "prerequisite deleted successfully"})
}
