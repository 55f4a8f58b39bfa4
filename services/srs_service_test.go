package services_test

import (
	"testing"
	"time"

	"srsgraph/scheduler/clock"
	"srsgraph/scheduler/models"
	"srsgraph/scheduler/services"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	toMigrate := []interface{}{
		&models.User{},
		&models.Domain{},
		&models.DomainComment{},
		&models.Definition{},
		&models.Reference{},
		&models.Exercise{},
		&models.UserDomainProgress{},
		&models.UserDefinitionProgress{},
		&models.UserExerciseProgress{},
		&models.NodePrerequisite{},
		&models.UserNodeProgress{},
		&models.StudySession{},
		&models.SessionReview{},
		&models.ReviewHistory{},
	}
	for _, m := range toMigrate {
		if err := db.AutoMigrate(m); err != nil {
			t.Fatalf("automigrate failed for %T: %v", m, err)
		}
	}
	return db
}

type srsFixture struct {
	db       *gorm.DB
	svc      *services.SRSService
	clk      *clock.Fixed
	domainID uint
	defA     uint // depends on defB
	defB     uint // depends on defC
	defC     uint
}

func newSRSFixture(t *testing.T) *srsFixture {
	t.Helper()
	db := newServiceTestDB(t)

	owner := &models.User{Username: "owner_" + t.Name(), Email: t.Name() + "@example.com", Password: "x", Level: "user"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	domain := &models.Domain{Name: "domain " + t.Name(), Privacy: "public", OwnerID: owner.ID}
	if err := db.Create(domain).Error; err != nil {
		t.Fatalf("failed to create domain: %v", err)
	}

	mkDef := func(code string) uint {
		def := &models.Definition{Code: code, Name: code, Description: "d", DomainID: domain.ID, OwnerID: owner.ID}
		if err := db.Create(def).Error; err != nil {
			t.Fatalf("failed to create definition %s: %v", code, err)
		}
		return def.ID
	}

	a := mkDef("A")
	b := mkDef("B")
	c := mkDef("C")

	clk := &clock.Fixed{T: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := services.NewSRSService(db, clk, zerolog.Nop())

	if err := svc.CreatePrerequisite(&models.NodePrerequisite{
		NodeID: a, NodeType: "definition", PrerequisiteID: b, PrerequisiteType: "definition", Weight: 0.8,
	}); err != nil {
		t.Fatalf("failed to create prerequisite a->b: %v", err)
	}
	if err := svc.CreatePrerequisite(&models.NodePrerequisite{
		NodeID: b, NodeType: "definition", PrerequisiteID: c, PrerequisiteType: "definition", Weight: 0.8,
	}); err != nil {
		t.Fatalf("failed to create prerequisite b->c: %v", err)
	}

	return &srsFixture{db: db, svc: svc, clk: clk, domainID: domain.ID, defA: a, defB: b, defC: c}
}

func progressOf(t *testing.T, db *gorm.DB, userID, nodeID uint, nodeType string) *models.UserNodeProgress {
	t.Helper()
	var p models.UserNodeProgress
	if err := db.Where("user_id = ? AND node_id = ? AND node_type = ?", userID, nodeID, nodeType).First(&p).Error; err != nil {
		t.Fatalf("expected progress row for node %d: %v", nodeID, err)
	}
	return &p
}

func TestSubmitReview_FreshNodePromotesToGraspedAndSeedsSM2(t *testing.T) {
	f := newSRSFixture(t)
	userID := uint(1)

	resp, err := f.svc.SubmitReview(userID, &models.ReviewRequest{
		NodeID: f.defA, NodeType: "definition", Success: true, Quality: 5,
	})
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected successful response")
	}

	p := progressOf(t, f.db, userID, f.defA, "definition")
	if p.Status != "grasped" {
		t.Errorf("expected fresh node to auto-promote to grasped, got %q", p.Status)
	}
	if p.Repetitions != 1 || p.IntervalDays != 1 {
		t.Errorf("expected first-review SM-2 seed (reps=1, interval=1), got reps=%d interval=%v", p.Repetitions, p.IntervalDays)
	}
}

func TestSubmitReview_PropagatesCreditToPrerequisite(t *testing.T) {
	f := newSRSFixture(t)
	userID := uint(2)

	resp, err := f.svc.SubmitReview(userID, &models.ReviewRequest{
		NodeID: f.defA, NodeType: "definition", Success: true, Quality: 5,
	})
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}

	var sawPrereqCredit bool
	for _, c := range resp.CreditFlow {
		if c.NodeID == f.defB && c.Type == "implicit" {
			sawPrereqCredit = true
			if c.Credit <= 0 {
				t.Errorf("expected positive implicit credit on prerequisite, got %v", c.Credit)
			}
		}
	}
	if !sawPrereqCredit {
		t.Fatalf("expected an implicit credit entry for prerequisite defB in credit flow: %+v", resp.CreditFlow)
	}
}

func TestSubmitReview_FreshCascadesGraspedToPrerequisites(t *testing.T) {
	f := newSRSFixture(t)
	userID := uint(3)

	_, err := f.svc.SubmitReview(userID, &models.ReviewRequest{
		NodeID: f.defA, NodeType: "definition", Success: true, Quality: 5,
	})
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}

	pb := progressOf(t, f.db, userID, f.defB, "definition")
	if pb.Status != "grasped" {
		t.Errorf("expected fresh prerequisite defB to cascade to grasped, got %q", pb.Status)
	}
	pc := progressOf(t, f.db, userID, f.defC, "definition")
	if pc.Status != "grasped" {
		t.Errorf("expected transitive fresh prerequisite defC to cascade to grasped, got %q", pc.Status)
	}
}

func TestSubmitReview_IdempotentReplayViaClientReviewID(t *testing.T) {
	f := newSRSFixture(t)
	userID := uint(4)
	clientID := "fixed-client-review-id"

	first, err := f.svc.SubmitReview(userID, &models.ReviewRequest{
		NodeID: f.defA, NodeType: "definition", Success: true, Quality: 5, ClientReviewID: &clientID,
	})
	if err != nil {
		t.Fatalf("first SubmitReview failed: %v", err)
	}

	second, err := f.svc.SubmitReview(userID, &models.ReviewRequest{
		NodeID: f.defA, NodeType: "definition", Success: true, Quality: 5, ClientReviewID: &clientID,
	})
	if err != nil {
		t.Fatalf("replayed SubmitReview failed: %v", err)
	}

	if !second.Success || second.Message == first.Message {
		t.Fatalf("expected replay to report idempotent-replay message, got %q", second.Message)
	}
	if len(second.UpdatedNodes) != 0 || len(second.CreditFlow) != 0 {
		t.Errorf("expected idempotent replay to skip any further mutation, got updatedNodes=%d creditFlow=%d", len(second.UpdatedNodes), len(second.CreditFlow))
	}

	p := progressOf(t, f.db, userID, f.defA, "definition")
	if p.TotalReviews != 1 {
		t.Errorf("expected replay not to double-count the review, got total_reviews=%d", p.TotalReviews)
	}
}

func TestUpdateNodeStatus_TacklingDemotesGraspedDependents(t *testing.T) {
	f := newSRSFixture(t)
	userID := uint(5)

	if err := f.svc.UpdateNodeStatus(userID, f.defC, "definition", "grasped"); err != nil {
		t.Fatalf("failed to set defC grasped: %v", err)
	}
	if err := f.svc.UpdateNodeStatus(userID, f.defB, "definition", "grasped"); err != nil {
		t.Fatalf("failed to set defB grasped: %v", err)
	}

	// defA depends on defB: marking defB tackling should demote defA's
	// scheduled status but never touch defC, which isn't a dependent of defB.
	if err := f.svc.UpdateNodeStatus(userID, f.defA, "definition", "grasped"); err != nil {
		t.Fatalf("failed to set defA grasped: %v", err)
	}
	if err := f.svc.UpdateNodeStatus(userID, f.defB, "definition", "tackling"); err != nil {
		t.Fatalf("failed to set defB tackling: %v", err)
	}

	pa := progressOf(t, f.db, userID, f.defA, "definition")
	if pa.Status != "tackling" {
		t.Errorf("expected dependent defA to demote to tackling, got %q", pa.Status)
	}
	pc := progressOf(t, f.db, userID, f.defC, "definition")
	if pc.Status != "grasped" {
		t.Errorf("expected non-dependent defC to stay grasped, got %q", pc.Status)
	}
}

func TestGetDueReviews_OnlyReturnsScheduledAndOverdueNodes(t *testing.T) {
	f := newSRSFixture(t)
	userID := uint(6)

	if err := f.svc.UpdateNodeStatus(userID, f.defA, "definition", "grasped"); err != nil {
		t.Fatalf("failed to set defA grasped: %v", err)
	}

	// defA was just seeded with next_review = now+1d, so it isn't due yet.
	due, err := f.svc.GetDueReviews(userID, f.domainID, "")
	if err != nil {
		t.Fatalf("GetDueReviews failed: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected no due nodes immediately after seeding, got %d", len(due))
	}

	f.clk.Advance(48 * time.Hour)

	due, err = f.svc.GetDueReviews(userID, f.domainID, "")
	if err != nil {
		t.Fatalf("GetDueReviews failed: %v", err)
	}
	// Grasping defA also promoted and seeded its fresh prerequisites defB and
	// defC, so all three are due; with equal overdue days, status and
	// difficulty, the node_id tie-break puts defA first.
	if len(due) != 3 || due[0].NodeID != f.defA {
		t.Fatalf("expected defA and its cascaded prerequisites to be due after advancing the clock, got %+v", due)
	}
}
