package services

import (
	"fmt"
	"time"

	"srsgraph/scheduler/apperr"
	"srsgraph/scheduler/clock"
	"srsgraph/scheduler/dao"
	"srsgraph/scheduler/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SRSService is the main service for spaced repetition functionality: the
// Review Service (C7), Status Propagator (C6), Due-Queue Service (C8) and
// Session Tracker (C9) all live here, the way the teacher keeps its whole
// SRS surface in one service.
type SRSService struct {
	db                  *gorm.DB
	srsDao              *dao.SRSDao
	srAlgorithm         *SpacedRepetitionService
	creditService       *CreditPropagationService
	optimizationService *ReviewOptimizationService
	clock               clock.Clock
	log                 zerolog.Logger
}

// NewSRSService creates a new SRS service instance
func NewSRSService(db *gorm.DB, clk clock.Clock, logger zerolog.Logger) *SRSService {
	return &SRSService{
		db:                  db,
		srsDao:              dao.NewSRSDao(db),
		srAlgorithm:         NewSpacedRepetitionService(),
		creditService:       NewCreditPropagationService(),
		optimizationService: NewReviewOptimizationService(),
		clock:               clk,
		log:                 logger,
	}
}

func freshProgress(userID, nodeID uint, nodeType string) *models.UserNodeProgress {
	return &models.UserNodeProgress{
		UserID:            userID,
		NodeID:            nodeID,
		NodeType:          nodeType,
		Status:            "fresh",
		EasinessFactor:    2.5,
		IntervalDays:      0,
		Repetitions:       0,
		AccumulatedCredit: 0,
		CreditPostponed:   false,
		TotalReviews:      0,
		SuccessfulReviews: 0,
	}
}

func isScheduled(status string) bool {
	return status == "grasped" || status == "learned"
}

// SubmitReview processes an explicit review and handles credit propagation
// per §4.7's eight orchestration steps, all inside one transaction.
func (s *SRSService) SubmitReview(userID uint, request *models.ReviewRequest) (*models.ReviewResponse, error) {
	if request.NodeType != "definition" && request.NodeType != "exercise" {
		return nil, apperr.Input("nodeType must be 'definition' or 'exercise'")
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, apperr.Transient("failed to begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	srsDao := dao.NewSRSDao(tx)
	now := s.clock.Now()

	if request.ClientReviewID == nil {
		generated := uuid.NewString()
		request.ClientReviewID = &generated
	} else {
		existing, err := srsDao.FindReviewHistoryByClientID(tx, userID, *request.ClientReviewID)
		if err != nil {
			tx.Rollback()
			return nil, apperr.Transient("failed to check review idempotency", err)
		}
		if existing != nil {
			tx.Rollback()
			return &models.ReviewResponse{
				Success: existing.Success,
				Message: "review already recorded (idempotent replay)",
			}, nil
		}
	}

	progress, err := srsDao.GetUserProgressForUpdate(tx, userID, request.NodeID, request.NodeType)
	if err != nil {
		tx.Rollback()
		return nil, apperr.Transient("failed to load progress", err)
	}

	wasFresh := progress == nil
	if progress == nil {
		progress = freshProgress(userID, request.NodeID, request.NodeType)
	} else if progress.Status == "fresh" {
		wasFresh = true
	}

	efBefore := progress.EasinessFactor
	intervalBefore := progress.IntervalDays

	srResult := s.srAlgorithm.CalculateNextInterval(progress, request.Quality, request.Success, now)
	progress.EasinessFactor = srResult.EasinessFactor
	progress.IntervalDays = srResult.IntervalDays
	progress.Repetitions = srResult.Repetitions
	progress.LastReview = &now
	progress.NextReview = &srResult.NextReview
	progress.TotalReviews++
	if request.Success {
		progress.SuccessfulReviews++
	}

	if wasFresh {
		progress.Status = "grasped"
	}

	if err := srsDao.CreateOrUpdateProgressTx(tx, progress); err != nil {
		tx.Rollback()
		return nil, apperr.Transient("failed to save progress", err)
	}

	updatedNodes := []models.UserNodeProgress{*progress}
	credits := []models.CreditUpdate{{
		NodeID:   request.NodeID,
		NodeType: request.NodeType,
		Credit:   1.0,
		Type:     "explicit",
	}}

	if err := s.recordReviewHistory(tx, userID, request, efBefore, intervalBefore, progress, now); err != nil {
		tx.Rollback()
		return nil, apperr.Transient("failed to record review history", err)
	}

	domainID, err := s.getDomainIDForNode(tx, request.NodeID, request.NodeType)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	prerequisites, err := srsDao.GetPrerequisitesByDomain(domainID)
	if err != nil {
		tx.Rollback()
		return nil, apperr.Transient("failed to load prerequisite graph", err)
	}

	graph := s.creditService.BuildGraph(prerequisites)
	implicitCredits := s.creditService.PropagateCredit(request.NodeID, request.NodeType, request.Success, graph)

	neighborNodes, err := s.applyCredits(tx, userID, implicitCredits, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	updatedNodes = append(updatedNodes, neighborNodes...)
	for _, c := range implicitCredits {
		if c.Type == "implicit" {
			credits = append(credits, c)
		}
	}

	if wasFresh {
		prereqMap := buildPrereqMap(prerequisites)
		if err := s.cascadeGrasped(tx, userID, request.NodeID, request.NodeType, prereqMap, make(map[string]bool), now); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if request.SessionID != nil {
		if err := s.updateSessionStats(tx, *request.SessionID, request.Success); err != nil {
			tx.Rollback()
			return nil, apperr.Transient("failed to update session", err)
		}

		if err := s.recordSessionReview(tx, request, now); err != nil {
			tx.Rollback()
			return nil, apperr.Transient("failed to record session review", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Transient("failed to commit transaction", err)
	}

	s.log.Debug().Uint("nodeId", request.NodeID).Str("nodeType", request.NodeType).
		Int("creditFlow", len(credits)).Msg("review submitted")

	return &models.ReviewResponse{
		Success:      true,
		Message:      "Review submitted successfully",
		UpdatedNodes: updatedNodes,
		CreditFlow:   credits,
	}, nil
}

// applyCredits applies §4.5.2 to every implicit credit: accumulate, and
// postpone/anticipate once the accumulator crosses a threshold.
func (s *SRSService) applyCredits(tx *gorm.DB, userID uint, credits []models.CreditUpdate, now time.Time) ([]models.UserNodeProgress, error) {
	var updated []models.UserNodeProgress
	srsDao := dao.NewSRSDao(tx)

	for _, credit := range credits {
		if credit.Type != "implicit" {
			continue
		}

		progress, err := srsDao.GetUserProgressForUpdate(tx, userID, credit.NodeID, credit.NodeType)
		if err != nil {
			return nil, apperr.Transient("failed to load neighbor progress", err)
		}
		if progress == nil {
			progress = freshProgress(userID, credit.NodeID, credit.NodeType)
		}

		efBefore, intervalBefore := progress.EasinessFactor, progress.IntervalDays
		progress.AccumulatedCredit += credit.Credit

		scheduled := isScheduled(progress.Status)
		if progress.AccumulatedCredit >= 1.0 && scheduled && progress.NextReview != nil {
			next := progress.NextReview.AddDate(0, 0, int(progress.IntervalDays))
			progress.NextReview = &next
			progress.CreditPostponed = true
			progress.AccumulatedCredit -= 1.0
		} else if progress.AccumulatedCredit <= -1.0 && scheduled {
			progress.NextReview = &now
			progress.AccumulatedCredit += 1.0
		}

		if err := srsDao.CreateOrUpdateProgressTx(tx, progress); err != nil {
			return nil, apperr.Transient(fmt.Sprintf("failed to save progress for node %d", credit.NodeID), err)
		}

		history := &models.ReviewHistory{
			UserID:               userID,
			NodeID:               credit.NodeID,
			NodeType:             credit.NodeType,
			ReviewType:           "implicit",
			Success:              credit.Credit > 0,
			CreditApplied:        credit.Credit,
			EasinessFactorBefore: &efBefore,
			EasinessFactorAfter:  &efBefore,
			IntervalBefore:       &intervalBefore,
			IntervalAfter:        &intervalBefore,
		}
		if err := srsDao.CreateReviewHistory(history); err != nil {
			return nil, apperr.Transient("failed to record implicit review history", err)
		}

		updated = append(updated, *progress)
	}

	return updated, nil
}

// UpdateNodeStatus runs the Status Propagator (C6) for a requested
// transition on (nodeID, nodeType), cascading within the node's domain.
func (s *SRSService) UpdateNodeStatus(userID uint, nodeID uint, nodeType string, status string) error {
	switch status {
	case "fresh", "tackling", "grasped", "learned":
	default:
		return apperr.Input("unknown status: " + status)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return apperr.Transient("failed to begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	srsDao := dao.NewSRSDao(tx)
	now := s.clock.Now()

	progress, err := srsDao.GetUserProgressForUpdate(tx, userID, nodeID, nodeType)
	if err != nil {
		tx.Rollback()
		return apperr.Transient("failed to load progress", err)
	}
	if progress == nil {
		progress = freshProgress(userID, nodeID, nodeType)
	}

	applyStatusEffect(progress, status, now)

	if err := srsDao.CreateOrUpdateProgressTx(tx, progress); err != nil {
		tx.Rollback()
		return apperr.Transient("failed to save progress", err)
	}

	domainID, err := s.getDomainIDForNode(tx, nodeID, nodeType)
	if err != nil {
		tx.Rollback()
		return err
	}

	prerequisites, err := srsDao.GetPrerequisitesByDomain(domainID)
	if err != nil {
		tx.Rollback()
		return apperr.Transient("failed to load prerequisite graph", err)
	}

	switch status {
	case "grasped", "learned":
		prereqMap := buildPrereqMap(prerequisites)
		if err := s.cascadeGrasped(tx, userID, nodeID, nodeType, prereqMap, make(map[string]bool), now); err != nil {
			tx.Rollback()
			return err
		}
	case "tackling", "fresh":
		dependentMap := buildDependentMap(prerequisites)
		if err := s.cascadeTackling(tx, userID, nodeID, nodeType, dependentMap, make(map[string]bool)); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return apperr.Transient("failed to commit status update", err)
	}
	return nil
}

// applyStatusEffect mutates N's own progress row per the §4.6 table.
func applyStatusEffect(progress *models.UserNodeProgress, status string, now time.Time) {
	switch status {
	case "tackling":
		progress.Status = "tackling"
		progress.NextReview = nil
	case "grasped", "learned":
		if progress.Repetitions == 0 {
			progress.EasinessFactor = 2.5
			progress.IntervalDays = 1
			progress.Repetitions = 1
			progress.LastReview = &now
			next := now.AddDate(0, 0, 1)
			progress.NextReview = &next
		}
		progress.Status = status
	case "fresh":
		progress.Status = "fresh"
		progress.EasinessFactor = 2.5
		progress.IntervalDays = 0
		progress.Repetitions = 0
		progress.LastReview = nil
		progress.NextReview = nil
		progress.AccumulatedCredit = 0
		progress.CreditPostponed = false
	}
}

func buildPrereqMap(prerequisites []models.NodePrerequisite) map[string][]models.NodePrerequisite {
	m := make(map[string][]models.NodePrerequisite)
	for _, p := range prerequisites {
		key := fmt.Sprintf("%s_%d", p.NodeType, p.NodeID)
		m[key] = append(m[key], p)
	}
	return m
}

func buildDependentMap(prerequisites []models.NodePrerequisite) map[string][]models.NodePrerequisite {
	m := make(map[string][]models.NodePrerequisite)
	for _, p := range prerequisites {
		key := fmt.Sprintf("%s_%d", p.PrerequisiteType, p.PrerequisiteID)
		m[key] = append(m[key], p)
	}
	return m
}

// cascadeGrasped promotes fresh prerequisites (transitively) of nodeID to
// grasped, seeding their SM-2 state, per the grasped/learned row of §4.6.
func (s *SRSService) cascadeGrasped(tx *gorm.DB, userID uint, nodeID uint, nodeType string, prereqMap map[string][]models.NodePrerequisite, visited map[string]bool, now time.Time) error {
	key := fmt.Sprintf("%s_%d", nodeType, nodeID)
	if visited[key] {
		return nil
	}
	visited[key] = true

	srsDao := dao.NewSRSDao(tx)
	for _, prereq := range prereqMap[key] {
		progress, err := srsDao.GetUserProgressForUpdate(tx, userID, prereq.PrerequisiteID, prereq.PrerequisiteType)
		if err != nil {
			return apperr.Transient("failed to load prerequisite progress", err)
		}
		if progress == nil {
			progress = freshProgress(userID, prereq.PrerequisiteID, prereq.PrerequisiteType)
		}

		if progress.Status == "fresh" {
			applyStatusEffect(progress, "grasped", now)
			if err := srsDao.CreateOrUpdateProgressTx(tx, progress); err != nil {
				return apperr.Transient("failed to save cascaded progress", err)
			}
		}

		if err := s.cascadeGrasped(tx, userID, prereq.PrerequisiteID, prereq.PrerequisiteType, prereqMap, visited, now); err != nil {
			return err
		}
	}

	return nil
}

// cascadeTackling demotes dependents with status ∈ {grasped, learned} to
// tackling (transitively), used both for the "tackling" and "fresh"
// requests per §4.6.
func (s *SRSService) cascadeTackling(tx *gorm.DB, userID uint, nodeID uint, nodeType string, dependentMap map[string][]models.NodePrerequisite, visited map[string]bool) error {
	key := fmt.Sprintf("%s_%d", nodeType, nodeID)
	if visited[key] {
		return nil
	}
	visited[key] = true

	srsDao := dao.NewSRSDao(tx)
	for _, dep := range dependentMap[key] {
		progress, err := srsDao.GetUserProgressForUpdate(tx, userID, dep.NodeID, dep.NodeType)
		if err != nil {
			return apperr.Transient("failed to load dependent progress", err)
		}
		if progress != nil && isScheduled(progress.Status) {
			applyStatusEffect(progress, "tackling", time.Time{})
			if err := srsDao.CreateOrUpdateProgressTx(tx, progress); err != nil {
				return apperr.Transient("failed to save cascaded progress", err)
			}
		}

		if err := s.cascadeTackling(tx, userID, dep.NodeID, dep.NodeType, dependentMap, visited); err != nil {
			return err
		}
	}

	return nil
}

// GetDueReviews gets the ordered due queue for a domain (§4.8 + §4.4.2).
func (s *SRSService) GetDueReviews(userID uint, domainID uint, nodeType string) ([]models.NodeProgress, error) {
	now := s.clock.Now()
	dueNodes, err := s.srsDao.GetDueReviews(userID, domainID, nodeType, now)
	if err != nil {
		return nil, apperr.Transient("failed to load due reviews", err)
	}

	return s.optimizationService.OptimizeReviewOrder(dueNodes), nil
}

// GetDomainProgress returns the full progress listing for a user/domain.
func (s *SRSService) GetDomainProgress(userID uint, domainID uint) ([]models.NodeProgress, error) {
	rows, err := s.srsDao.GetDomainProgress(userID, domainID, s.clock.Now())
	if err != nil {
		return nil, apperr.Transient("failed to load domain progress", err)
	}
	return rows, nil
}

// GetDomainStats returns the §6.1 stats payload.
func (s *SRSService) GetDomainStats(userID uint, domainID uint) (*models.DomainProgressSummary, error) {
	stats, err := s.srsDao.GetDomainStats(userID, domainID, s.clock.Now())
	if err != nil {
		return nil, apperr.Transient("failed to compute domain stats", err)
	}
	return stats, nil
}

// GetReviewHistory returns paged review history for a user.
func (s *SRSService) GetReviewHistory(userID uint, nodeID *uint, nodeType *string, limit int) ([]models.ReviewHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	history, err := s.srsDao.GetReviewHistory(userID, nodeID, nodeType, limit)
	if err != nil {
		return nil, apperr.Transient("failed to load review history", err)
	}
	return history, nil
}

// === Session Tracker (C9) ===

// StartSession opens a new study session.
func (s *SRSService) StartSession(userID uint, domainID uint, sessionType string) (*models.StudySession, error) {
	session := &models.StudySession{
		UserID:      userID,
		DomainID:    domainID,
		SessionType: sessionType,
		StartTime:   s.clock.Now(),
	}
	if err := s.srsDao.CreateSession(session); err != nil {
		return nil, apperr.Transient("failed to create session", err)
	}
	return session, nil
}

// EndSession idempotently stamps end_time on a session.
func (s *SRSService) EndSession(sessionID uint) error {
	session, err := s.srsDao.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.EndTime != nil {
		return nil
	}
	if err := s.srsDao.EndSession(sessionID, s.clock.Now()); err != nil {
		return apperr.Transient("failed to end session", err)
	}
	return nil
}

// GetUserSessions lists a user's sessions, most recent first.
func (s *SRSService) GetUserSessions(userID uint, limit int) ([]models.StudySession, error) {
	sessions, err := s.srsDao.GetUserSessions(userID, limit)
	if err != nil {
		return nil, apperr.Transient("failed to load sessions", err)
	}
	return sessions, nil
}

// === Prerequisite edge CRUD (C1) ===

func (s *SRSService) CreatePrerequisite(prerequisite *models.NodePrerequisite) error {
	return dao.NewSRSDao(s.db).CreatePrerequisite(prerequisite)
}

func (s *SRSService) GetPrerequisitesByDomain(domainID uint) ([]models.NodePrerequisite, error) {
	prereqs, err := s.srsDao.GetPrerequisitesByDomain(domainID)
	if err != nil {
		return nil, apperr.Transient("failed to load prerequisites", err)
	}
	return prereqs, nil
}

func (s *SRSService) DeletePrerequisite(id uint) error {
	return dao.NewSRSDao(s.db).DeletePrerequisite(id)
}

func (s *SRSService) GetPrerequisiteByID(id uint) (*models.NodePrerequisite, error) {
	return s.srsDao.GetPrerequisiteByID(id)
}

// GetDomainIDForNode resolves which domain a definition/exercise node
// belongs to. Exported so handlers can resolve domain ownership/enrollment
// before dispatching a node-scoped operation.
func (s *SRSService) GetDomainIDForNode(nodeID uint, nodeType string) (uint, error) {
	return s.getDomainIDForNode(s.db, nodeID, nodeType)
}

// === Helper methods ===

func (s *SRSService) getDomainIDForNode(tx *gorm.DB, nodeID uint, nodeType string) (uint, error) {
	switch nodeType {
	case "definition":
		var definition models.Definition
		if err := tx.Select("domain_id").First(&definition, nodeID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return 0, apperr.NotFound("definition not found")
			}
			return 0, apperr.Transient("failed to look up definition", err)
		}
		return definition.DomainID, nil
	case "exercise":
		var exercise models.Exercise
		if err := tx.Select("domain_id").First(&exercise, nodeID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return 0, apperr.NotFound("exercise not found")
			}
			return 0, apperr.Transient("failed to look up exercise", err)
		}
		return exercise.DomainID, nil
	default:
		return 0, apperr.Input("invalid node type")
	}
}

func (s *SRSService) recordReviewHistory(tx *gorm.DB, userID uint, request *models.ReviewRequest, efBefore, intervalBefore float64, progressAfter *models.UserNodeProgress, now time.Time) error {
	srsDao := dao.NewSRSDao(tx)

	history := &models.ReviewHistory{
		UserID:               userID,
		NodeID:               request.NodeID,
		NodeType:             request.NodeType,
		ReviewTime:           now,
		ReviewType:           "explicit",
		Success:              request.Success,
		Quality:              &request.Quality,
		TimeTaken:            &request.TimeTaken,
		CreditApplied:        1.0,
		EasinessFactorBefore: &efBefore,
		EasinessFactorAfter:  &progressAfter.EasinessFactor,
		IntervalBefore:       &intervalBefore,
		IntervalAfter:        &progressAfter.IntervalDays,
		ClientReviewID:       request.ClientReviewID,
	}

	return srsDao.CreateReviewHistory(history)
}

func (s *SRSService) updateSessionStats(tx *gorm.DB, sessionID uint, success bool) error {
	srsDao := dao.NewSRSDao(tx)

	session, err := srsDao.GetSession(sessionID)
	if err != nil {
		return err
	}

	session.TotalReviews++
	if success {
		session.SuccessfulReviews++
	}

	return srsDao.UpdateSession(session)
}

func (s *SRSService) recordSessionReview(tx *gorm.DB, request *models.ReviewRequest, reviewTime time.Time) error {
	if request.SessionID == nil {
		return nil
	}

	srsDao := dao.NewSRSDao(tx)

	sessionReview := &models.SessionReview{
		SessionID:     *request.SessionID,
		NodeID:        request.NodeID,
		NodeType:      request.NodeType,
		ReviewType:    "explicit",
		ReviewTime:    reviewTime,
		Success:       request.Success,
		Quality:       &request.Quality,
		TimeTaken:     &request.TimeTaken,
		CreditApplied: 1.0,
	}

	return srsDao.CreateSessionReview(sessionReview)
}
