package models

import (
	"time"
)

// UserDomainProgress represents a user's progress in a domain
type UserDomainProgress struct {
	UserID         uint      `gorm:"column:user_id;primaryKey" json:"userId"`
	DomainID       uint      `gorm:"column:domain_id;primaryKey" json:"domainId"`
	EnrollmentDate time.Time `gorm:"column:enrollment_date;autoCreateTime" json:"enrollmentDate"`
	Progress       float64   `gorm:"column:progress;default:0" json:"progress"`
	LastActivity   time.Time `gorm:"column:last_activity;autoUpdateTime" json:"lastActivity"`
	
	// Relationships
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Domain *Domain `gorm:"foreignKey:DomainID" json:"-"`
}

// TableName overrides the table name
func (UserDomainProgress) TableName() string {
	return "user_domain_progress"
}

// UserDefinitionProgress represents a user's progress with a definition (Anki-like spaced repetition)
type UserDefinitionProgress struct {
	UserID         uint      `gorm:"column:user_id;primaryKey" json:"userId"`
	DefinitionID   uint      `gorm:"column:definition_id;primaryKey" json:"definitionId"`
	Learned        bool      `gorm:"column:learned;default:false" json:"learned"`
	LastReview     time.Time `gorm:"column:last_review" json:"lastReview"`
	NextReview     time.Time `gorm:"column:next_review" json:"nextReview"`
	EasinessFactor float64   `gorm:"column:easiness_factor;default:2.5" json:"easinessFactor"`
	IntervalDays   int       `gorm:"column:interval_days;default:0" json:"intervalDays"`
	Repetitions    int       `gorm:"column:repetitions;default:0" json:"repetitions"`
	
	// Relationships
	User       *User       `gorm:"foreignKey:UserID" json:"-"`
	Definition *Definition `gorm:"foreignKey:DefinitionID" json:"-"`
}

// TableName overrides the table name
func (UserDefinitionProgress) TableName() string {
	return "user_definition_progress"
}

// UserExerciseProgress represents a user's progress with an exercise
type UserExerciseProgress struct {
	UserID      uint      `gorm:"column:user_id;primaryKey" json:"userId"`
	ExerciseID  uint      `gorm:"column:exercise_id;primaryKey" json:"exerciseId"`
	Completed   bool      `gorm:"column:completed;default:false" json:"completed"`
	Correct     bool      `gorm:"column:correct;default:false" json:"correct"`
	Attempts    int       `gorm:"column:attempts;default:0" json:"attempts"`
	LastAttempt time.Time `gorm:"column:last_attempt" json:"lastAttempt"`
	
	// Relationships
	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Exercise *Exercise `gorm:"foreignKey:ExerciseID" json:"-"`
}

// TableName overrides the table name
func (UserExerciseProgress) TableName() string {
	return "user_exercise_progress"
}

// ReviewResult is the convenience quality label accepted alongside the
// canonical 0-5 quality scale (again=1, hard=3, good=4, easy=5).
type ReviewResult string

const (
	ReviewAgain ReviewResult = "again"
	ReviewHard  ReviewResult = "hard"
	ReviewGood  ReviewResult = "good"
	ReviewEasy  ReviewResult = "easy"
)

// QualityFromResult maps the convenience label to the canonical quality
// scale used by the scheduling kernel.
func QualityFromResult(r ReviewResult) (int, bool) {
	switch r {
	case ReviewAgain:
		return 1, true
	case ReviewHard:
		return 3, true
	case ReviewGood:
		return 4, true
	case ReviewEasy:
		return 5, true
	default:
		return 0, false
	}
}
