package dao

import (
	"errors"
	"fmt"
	"time"

	"srsgraph/scheduler/apperr"
	"srsgraph/scheduler/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SRSDao handles all SRS-related database operations
type SRSDao struct {
	db *gorm.DB
}

// NewSRSDao creates a new SRSDao instance
func NewSRSDao(db *gorm.DB) *SRSDao {
	return &SRSDao{db: db}
}

func nodeKey(id uint, nodeType string) string {
	return fmt.Sprintf("%s_%d", nodeType, id)
}

// === Node Prerequisites ===

// CreatePrerequisite validates the weight range and rejects edges that would
// close a cycle in the prerequisite DAG before inserting the row.
func (d *SRSDao) CreatePrerequisite(prerequisite *models.NodePrerequisite) error {
	if prerequisite.Weight <= 0 || prerequisite.Weight > 1 {
		return apperr.Input("prerequisite weight must be in (0, 1]")
	}
	if prerequisite.NodeID == prerequisite.PrerequisiteID && prerequisite.NodeType == prerequisite.PrerequisiteType {
		return apperr.Input("a node cannot be its own prerequisite")
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		var dupCount int64
		if err := tx.Model(&models.NodePrerequisite{}).Where(
			"node_id = ? AND node_type = ? AND prerequisite_id = ? AND prerequisite_type = ?",
			prerequisite.NodeID, prerequisite.NodeType, prerequisite.PrerequisiteID, prerequisite.PrerequisiteType,
		).Count(&dupCount).Error; err != nil {
			return apperr.Transient("failed to check for duplicate prerequisite", err)
		}
		if dupCount > 0 {
			return apperr.Conflict("this prerequisite relationship already exists")
		}

		var existing []models.NodePrerequisite
		if err := tx.Find(&existing).Error; err != nil {
			return apperr.Transient("failed to load prerequisite graph", err)
		}

		requires := make(map[string][]string, len(existing))
		for _, e := range existing {
			from := nodeKey(e.NodeID, e.NodeType)
			to := nodeKey(e.PrerequisiteID, e.PrerequisiteType)
			requires[from] = append(requires[from], to)
		}

		start := nodeKey(prerequisite.PrerequisiteID, prerequisite.PrerequisiteType)
		target := nodeKey(prerequisite.NodeID, prerequisite.NodeType)
		if pathExists(requires, start, target) {
			return apperr.Conflict("adding this prerequisite would create a cycle")
		}

		return tx.Create(prerequisite).Error
	})
}

// pathExists does a DFS over the requires adjacency looking for target,
// starting from start (start "requires" target transitively).
func pathExists(requires map[string][]string, start, target string) bool {
	if start == target {
		return true
	}
	visited := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range requires[n] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// GetPrerequisitesByDomain gets all prerequisites for nodes in a domain
func (d *SRSDao) GetPrerequisitesByDomain(domainID uint) ([]models.NodePrerequisite, error) {
	var prerequisites []models.NodePrerequisite

	definitionQuery := `
		SELECT np.* FROM node_prerequisites np
		JOIN definitions d ON (np.node_id = d.id AND np.node_type = 'definition')
		   OR (np.prerequisite_id = d.id AND np.prerequisite_type = 'definition')
		WHERE d.domain_id = ?
	`

	exerciseQuery := `
		SELECT np.* FROM node_prerequisites np
		JOIN exercises e ON (np.node_id = e.id AND np.node_type = 'exercise')
		   OR (np.prerequisite_id = e.id AND np.prerequisite_type = 'exercise')
		WHERE e.domain_id = ?
	`

	var defPrereqs []models.NodePrerequisite
	var exPrereqs []models.NodePrerequisite

	if err := d.db.Raw(definitionQuery, domainID).Scan(&defPrereqs).Error; err != nil {
		return nil, err
	}

	if err := d.db.Raw(exerciseQuery, domainID).Scan(&exPrereqs).Error; err != nil {
		return nil, err
	}

	prereqMap := make(map[string]models.NodePrerequisite)
	for _, prereq := range defPrereqs {
		key := fmt.Sprintf("%d_%s_%d_%s", prereq.NodeID, prereq.NodeType, prereq.PrerequisiteID, prereq.PrerequisiteType)
		prereqMap[key] = prereq
	}
	for _, prereq := range exPrereqs {
		key := fmt.Sprintf("%d_%s_%d_%s", prereq.NodeID, prereq.NodeType, prereq.PrerequisiteID, prereq.PrerequisiteType)
		prereqMap[key] = prereq
	}

	for _, prereq := range prereqMap {
		prerequisites = append(prerequisites, prereq)
	}

	return prerequisites, nil
}

// GetPrerequisitesForNode gets prerequisites for a specific node
func (d *SRSDao) GetPrerequisitesForNode(nodeID uint, nodeType string) ([]models.NodePrerequisite, error) {
	var prerequisites []models.NodePrerequisite
	result := d.db.Where("node_id = ? AND node_type = ?", nodeID, nodeType).Find(&prerequisites)
	return prerequisites, result.Error
}

// GetDependentsOfNode gets edges where the given node is itself a
// prerequisite of something else (its dependents), used by the status
// cascade.
func (d *SRSDao) GetDependentsOfNode(nodeID uint, nodeType string) ([]models.NodePrerequisite, error) {
	var prerequisites []models.NodePrerequisite
	result := d.db.Where("prerequisite_id = ? AND prerequisite_type = ?", nodeID, nodeType).Find(&prerequisites)
	return prerequisites, result.Error
}

// DeletePrerequisitesForNode deletes all prerequisites for a node
func (d *SRSDao) DeletePrerequisitesForNode(nodeID uint, nodeType string) error {
	return d.db.Where("node_id = ? AND node_type = ?", nodeID, nodeType).Delete(&models.NodePrerequisite{}).Error
}

// GetPrerequisiteByID fetches a single prerequisite edge, used by callers
// that need to resolve the owning node's domain before mutating the edge.
func (d *SRSDao) GetPrerequisiteByID(id uint) (*models.NodePrerequisite, error) {
	var prerequisite models.NodePrerequisite
	if err := d.db.First(&prerequisite, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("prerequisite not found")
		}
		return nil, apperr.Transient("failed to look up prerequisite", err)
	}
	return &prerequisite, nil
}

// DeletePrerequisite removes a single edge by ID.
func (d *SRSDao) DeletePrerequisite(id uint) error {
	result := d.db.Delete(&models.NodePrerequisite{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("prerequisite not found")
	}
	return nil
}

// === User Node Progress ===

// GetUserProgress gets progress for a user on a specific node
func (d *SRSDao) GetUserProgress(userID uint, nodeID uint, nodeType string) (*models.UserNodeProgress, error) {
	var progress models.UserNodeProgress
	result := d.db.Where("user_id = ? AND node_id = ? AND node_type = ?", userID, nodeID, nodeType).First(&progress)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil // No progress found, not an error
	}

	return &progress, result.Error
}

// GetUserProgressForUpdate is the row-locking read used inside the Review
// Service's transaction to serialize concurrent reviews of the same node.
func (d *SRSDao) GetUserProgressForUpdate(tx *gorm.DB, userID uint, nodeID uint, nodeType string) (*models.UserNodeProgress, error) {
	var progress models.UserNodeProgress
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND node_id = ? AND node_type = ?", userID, nodeID, nodeType).
		First(&progress)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return &progress, result.Error
}

// CreateOrUpdateProgress creates or updates user progress
func (d *SRSDao) CreateOrUpdateProgress(progress *models.UserNodeProgress) error {
	return d.db.Save(progress).Error
}

// CreateOrUpdateProgressTx is the transactional variant used by the Review
// Service, which already holds the row lock from GetUserProgressForUpdate.
func (d *SRSDao) CreateOrUpdateProgressTx(tx *gorm.DB, progress *models.UserNodeProgress) error {
	return tx.Save(progress).Error
}

// GetDomainProgress gets all progress for a user in a domain, with
// overdue_days/difficulty computed in Go against the supplied now so the
// query stays portable across Postgres and SQLite.
func (d *SRSDao) GetDomainProgress(userID uint, domainID uint, now time.Time) ([]models.NodeProgress, error) {
	var results []models.NodeProgress

	defQuery := `
		SELECT
			d.id as node_id,
			'definition' as node_type,
			d.code as node_code,
			d.name as node_name,
			COALESCE(unp.status, 'fresh') as status,
			COALESCE(unp.easiness_factor, 2.5) as easiness_factor,
			COALESCE(unp.interval_days, 0) as interval_days,
			COALESCE(unp.repetitions, 0) as repetitions,
			unp.last_review,
			unp.next_review,
			COALESCE(unp.accumulated_credit, 0) as accumulated_credit,
			COALESCE(unp.credit_postponed, false) as credit_postponed,
			COALESCE(unp.total_reviews, 0) as total_reviews,
			COALESCE(unp.successful_reviews, 0) as successful_reviews,
			0 as difficulty
		FROM definitions d
		LEFT JOIN user_node_progress unp ON d.id = unp.node_id
			AND unp.node_type = 'definition' AND unp.user_id = ?
		WHERE d.domain_id = ?
	`

	exQuery := `
		SELECT
			e.id as node_id,
			'exercise' as node_type,
			e.code as node_code,
			e.name as node_name,
			COALESCE(unp.status, 'fresh') as status,
			COALESCE(unp.easiness_factor, 2.5) as easiness_factor,
			COALESCE(unp.interval_days, 0) as interval_days,
			COALESCE(unp.repetitions, 0) as repetitions,
			unp.last_review,
			unp.next_review,
			COALESCE(unp.accumulated_credit, 0) as accumulated_credit,
			COALESCE(unp.credit_postponed, false) as credit_postponed,
			COALESCE(unp.total_reviews, 0) as total_reviews,
			COALESCE(unp.successful_reviews, 0) as successful_reviews,
			COALESCE(e.difficulty, 0) as difficulty
		FROM exercises e
		LEFT JOIN user_node_progress unp ON e.id = unp.node_id
			AND unp.node_type = 'exercise' AND unp.user_id = ?
		WHERE e.domain_id = ?
	`

	var defResults []models.NodeProgress
	var exResults []models.NodeProgress

	if err := d.db.Raw(defQuery, userID, domainID).Scan(&defResults).Error; err != nil {
		return nil, err
	}

	if err := d.db.Raw(exQuery, userID, domainID).Scan(&exResults).Error; err != nil {
		return nil, err
	}

	results = append(results, defResults...)
	results = append(results, exResults...)

	for i := range results {
		annotateDueFields(&results[i], now)
	}

	return results, nil
}

func annotateDueFields(p *models.NodeProgress, now time.Time) {
	if p.NextReview == nil {
		p.IsDue = false
		p.OverdueDays = 0
		return
	}
	schedulable := p.Status == "grasped" || p.Status == "learned"
	overdue := now.Sub(*p.NextReview).Hours() / 24
	if overdue < 0 {
		overdue = 0
	}
	days := int(overdue)
	p.DaysUntilReview = &days
	p.OverdueDays = overdue
	p.IsDue = schedulable && !p.NextReview.After(now)
}

// GetDueReviews gets nodes due for review: status in {grasped, learned} and
// next_review <= now, or next_review NULL (a node set back to grasped/learned
// from tackling with repetitions > 0 keeps the next_review that tackling
// cleared, and is treated as due).
func (d *SRSDao) GetDueReviews(userID uint, domainID uint, nodeType string, now time.Time) ([]models.NodeProgress, error) {
	var results []models.NodeProgress

	defQuery := `
		SELECT
			d.id as node_id,
			'definition' as node_type,
			d.code as node_code,
			d.name as node_name,
			unp.status,
			unp.easiness_factor,
			unp.interval_days,
			unp.repetitions,
			unp.last_review,
			unp.next_review,
			unp.accumulated_credit,
			unp.credit_postponed,
			unp.total_reviews,
			unp.successful_reviews,
			0 as difficulty
		FROM definitions d
		JOIN user_node_progress unp ON d.id = unp.node_id
			AND unp.node_type = 'definition' AND unp.user_id = ?
		WHERE d.domain_id = ? AND unp.status IN ('grasped', 'learned')
			AND (unp.next_review IS NULL OR unp.next_review <= ?)
	`

	exQuery := `
		SELECT
			e.id as node_id,
			'exercise' as node_type,
			e.code as node_code,
			e.name as node_name,
			unp.status,
			unp.easiness_factor,
			unp.interval_days,
			unp.repetitions,
			unp.last_review,
			unp.next_review,
			unp.accumulated_credit,
			unp.credit_postponed,
			unp.total_reviews,
			unp.successful_reviews,
			COALESCE(e.difficulty, 0) as difficulty
		FROM exercises e
		JOIN user_node_progress unp ON e.id = unp.node_id
			AND unp.node_type = 'exercise' AND unp.user_id = ?
		WHERE e.domain_id = ? AND unp.status IN ('grasped', 'learned')
			AND (unp.next_review IS NULL OR unp.next_review <= ?)
	`

	switch nodeType {
	case "definition":
		if err := d.db.Raw(defQuery, userID, domainID, now).Scan(&results).Error; err != nil {
			return nil, err
		}
	case "exercise":
		if err := d.db.Raw(exQuery, userID, domainID, now).Scan(&results).Error; err != nil {
			return nil, err
		}
	default:
		var defResults []models.NodeProgress
		var exResults []models.NodeProgress
		if err := d.db.Raw(defQuery, userID, domainID, now).Scan(&defResults).Error; err != nil {
			return nil, err
		}
		if err := d.db.Raw(exQuery, userID, domainID, now).Scan(&exResults).Error; err != nil {
			return nil, err
		}
		results = append(results, defResults...)
		results = append(results, exResults...)
	}

	for i := range results {
		annotateDueFields(&results[i], now)
	}

	return results, nil
}

// === Study Sessions ===

// CreateSession creates a new study session
func (d *SRSDao) CreateSession(session *models.StudySession) error {
	return d.db.Create(session).Error
}

// GetSession gets a session by ID
func (d *SRSDao) GetSession(sessionID uint) (*models.StudySession, error) {
	var session models.StudySession
	result := d.db.First(&session, sessionID)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("session not found")
	}

	return &session, result.Error
}

// UpdateSession updates a session
func (d *SRSDao) UpdateSession(session *models.StudySession) error {
	return d.db.Save(session).Error
}

// EndSession ends a study session
func (d *SRSDao) EndSession(sessionID uint, now time.Time) error {
	return d.db.Model(&models.StudySession{}).
		Where("id = ?", sessionID).
		Update("end_time", now).Error
}

// GetUserSessions gets sessions for a user
func (d *SRSDao) GetUserSessions(userID uint, limit int) ([]models.StudySession, error) {
	var sessions []models.StudySession
	query := d.db.Where("user_id = ?", userID).Order("start_time DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Find(&sessions)
	return sessions, result.Error
}

// === Session Reviews ===

// CreateSessionReview creates a session review record
func (d *SRSDao) CreateSessionReview(review *models.SessionReview) error {
	return d.db.Create(review).Error
}

// === Review History ===

// CreateReviewHistory creates a review history record
func (d *SRSDao) CreateReviewHistory(history *models.ReviewHistory) error {
	return d.db.Create(history).Error
}

// FindReviewHistoryByClientID looks up a prior review by its idempotency
// key, for dedup on retried POSTs.
func (d *SRSDao) FindReviewHistoryByClientID(tx *gorm.DB, userID uint, clientReviewID string) (*models.ReviewHistory, error) {
	var history models.ReviewHistory
	result := tx.Where("user_id = ? AND client_review_id = ?", userID, clientReviewID).First(&history)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &history, result.Error
}

// GetReviewHistory gets review history for a user
func (d *SRSDao) GetReviewHistory(userID uint, nodeID *uint, nodeType *string, limit int) ([]models.ReviewHistory, error) {
	var history []models.ReviewHistory
	query := d.db.Where("user_id = ?", userID)

	if nodeID != nil && nodeType != nil {
		query = query.Where("node_id = ? AND node_type = ?", *nodeID, *nodeType)
	}

	query = query.Order("review_time DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Find(&history)
	return history, result.Error
}

// === Statistics ===

// GetDomainStats gets domain statistics for a user, as of now.
func (d *SRSDao) GetDomainStats(userID uint, domainID uint, now time.Time) (*models.DomainProgressSummary, error) {
	var stats models.DomainProgressSummary
	stats.DomainID = domainID

	var totalDefs int64
	var totalExs int64

	d.db.Model(&models.Definition{}).Where("domain_id = ?", domainID).Count(&totalDefs)
	d.db.Model(&models.Exercise{}).Where("domain_id = ?", domainID).Count(&totalExs)
	stats.TotalNodes = int(totalDefs + totalExs)

	statusQuery := `
		SELECT
			COALESCE(unp.status, 'fresh') as status,
			COUNT(*) as count
		FROM (
			SELECT id, 'definition' as type FROM definitions WHERE domain_id = ?
			UNION ALL
			SELECT id, 'exercise' as type FROM exercises WHERE domain_id = ?
		) nodes
		LEFT JOIN user_node_progress unp ON nodes.id = unp.node_id
			AND nodes.type = unp.node_type AND unp.user_id = ?
		GROUP BY COALESCE(unp.status, 'fresh')
	`

	type statusCount struct {
		Status string
		Count  int
	}

	var statusCounts []statusCount
	if err := d.db.Raw(statusQuery, domainID, domainID, userID).Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case "fresh":
			stats.FreshNodes = sc.Count
		case "tackling":
			stats.TacklingNodes = sc.Count
		case "grasped":
			stats.GraspedNodes = sc.Count
		case "learned":
			stats.LearnedNodes = sc.Count
		}
	}

	dueQuery := `
		SELECT COUNT(*) FROM (
			SELECT d.id FROM definitions d
			JOIN user_node_progress unp ON d.id = unp.node_id
				AND unp.node_type = 'definition' AND unp.user_id = ?
			WHERE d.domain_id = ? AND unp.status IN ('grasped', 'learned')
				AND (unp.next_review IS NULL OR unp.next_review <= ?)
			UNION ALL
			SELECT e.id FROM exercises e
			JOIN user_node_progress unp ON e.id = unp.node_id
				AND unp.node_type = 'exercise' AND unp.user_id = ?
			WHERE e.domain_id = ? AND unp.status IN ('grasped', 'learned')
				AND (unp.next_review IS NULL OR unp.next_review <= ?)
		) due_nodes
	`

	var dueCount int64
	if err := d.db.Raw(dueQuery, userID, domainID, now, userID, domainID, now).Scan(&dueCount).Error; err != nil {
		return nil, err
	}
	stats.DueReviews = int(dueCount)

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	todayQuery := `
		SELECT COUNT(*) FROM review_history rh
		WHERE rh.user_id = ? AND rh.review_time >= ? AND rh.review_time < ?
			AND rh.review_type = 'explicit'
			AND (
				(rh.node_type = 'definition' AND rh.node_id IN (SELECT id FROM definitions WHERE domain_id = ?))
				OR
				(rh.node_type = 'exercise' AND rh.node_id IN (SELECT id FROM exercises WHERE domain_id = ?))
			)
	`

	var todayCount int64
	if err := d.db.Raw(todayQuery, userID, dayStart, dayEnd, domainID, domainID).Scan(&todayCount).Error; err != nil {
		return nil, err
	}
	stats.CompletedToday = int(todayCount)

	successQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN success THEN 1 END) as successful
		FROM review_history rh
		WHERE rh.user_id = ? AND rh.review_type = 'explicit'
			AND (
				(rh.node_type = 'definition' AND rh.node_id IN (SELECT id FROM definitions WHERE domain_id = ?))
				OR
				(rh.node_type = 'exercise' AND rh.node_id IN (SELECT id FROM exercises WHERE domain_id = ?))
			)
	`

	var successStats struct {
		Total      int64
		Successful int64
	}

	if err := d.db.Raw(successQuery, userID, domainID, domainID).Scan(&successStats).Error; err != nil {
		return nil, err
	}

	if successStats.Total > 0 {
		stats.SuccessRate = float64(successStats.Successful) / float64(successStats.Total)
	}

	return &stats, nil
}
