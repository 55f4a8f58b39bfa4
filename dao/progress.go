package dao

import (
	"srsgraph/scheduler/models"
	"time"

	"gorm.io/gorm"
)

// ProgressDAO handles the read-only domain enrollment/completion signal
// (§3 SUPPLEMENT). It is never consulted by the scheduling core.
type ProgressDAO struct {
	db *gorm.DB
}

// NewProgressDAO creates a new ProgressDAO instance
func NewProgressDAO(db *gorm.DB) *ProgressDAO {
	return &ProgressDAO{db: db}
}

// EnrollUserInDomain enrolls a user in a domain (or updates enrollment if exists)
func (d *ProgressDAO) EnrollUserInDomain(userID, domainID uint) error {
	progress := models.UserDomainProgress{
		UserID:   userID,
		DomainID: domainID,
	}

	var existingCount int64
	d.db.Model(&models.UserDomainProgress{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		Count(&existingCount)

	if existingCount > 0 {
		return d.db.Model(&models.UserDomainProgress{}).
			Where("user_id = ? AND domain_id = ?", userID, domainID).
			Updates(map[string]interface{}{
				"last_activity": time.Now(),
			}).Error
	}

	return d.db.Create(&progress).Error
}

// UpdateDomainProgress recomputes the coarse completion percentage from the
// legacy per-definition/per-exercise progress tables. Purely informational:
// the scheduler's due-queue and status fields come from UserNodeProgress.
func (d *ProgressDAO) UpdateDomainProgress(userID, domainID uint) error {
	var totalDefinitions, learnedDefinitions int64
	var totalExercises, completedExercises int64

	d.db.Model(&models.Definition{}).
		Where("domain_id = ?", domainID).
		Count(&totalDefinitions)

	d.db.Model(&models.UserDefinitionProgress{}).
		Joins("JOIN definitions ON user_definition_progress.definition_id = definitions.id").
		Where("user_definition_progress.user_id = ? AND definitions.domain_id = ? AND user_definition_progress.learned = true", userID, domainID).
		Count(&learnedDefinitions)

	d.db.Model(&models.Exercise{}).
		Where("domain_id = ?", domainID).
		Count(&totalExercises)

	d.db.Model(&models.UserExerciseProgress{}).
		Joins("JOIN exercises ON user_exercise_progress.exercise_id = exercises.id").
		Where("user_exercise_progress.user_id = ? AND exercises.domain_id = ? AND user_exercise_progress.completed = true", userID, domainID).
		Count(&completedExercises)

	var progress float64 = 0
	total := totalDefinitions + totalExercises
	if total > 0 {
		progress = float64(learnedDefinitions+completedExercises) / float64(total) * 100
	}

	return d.db.Model(&models.UserDomainProgress{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		Updates(map[string]interface{}{
			"progress":      progress,
			"last_activity": time.Now(),
		}).Error
}

// IsEnrolled reports whether a user has an enrollment row for a domain.
func (d *ProgressDAO) IsEnrolled(userID, domainID uint) (bool, error) {
	var count int64
	if err := d.db.Model(&models.UserDomainProgress{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserDomainProgress gets a user's progress for all enrolled domains
func (d *ProgressDAO) GetUserDomainProgress(userID uint) ([]models.UserDomainProgress, error) {
	var progress []models.UserDomainProgress
	result := d.db.
		Preload("Domain").
		Where("user_id = ?", userID).
		Find(&progress)

	return progress, result.Error
}
