package services_test

import (
	"testing"
	"time"

	"srsgraph/scheduler/models"
	"srsgraph/scheduler/services"
)

func TestCalculateNextInterval_FailureResetsReps(t *testing.T) {
	sr := services.NewSpacedRepetitionService()
	progress := &models.UserNodeProgress{EasinessFactor: 2.5, IntervalDays: 6, Repetitions: 3}

	result := sr.CalculateNextInterval(progress, 1, false, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if result.Repetitions != 0 {
		t.Errorf("expected repetitions reset to 0, got %d", result.Repetitions)
	}
	if result.IntervalDays != 1 {
		t.Errorf("expected interval reset to 1, got %v", result.IntervalDays)
	}
}

func TestCalculateNextInterval_LowQualityCountsAsFailure(t *testing.T) {
	sr := services.NewSpacedRepetitionService()
	progress := &models.UserNodeProgress{EasinessFactor: 2.5, IntervalDays: 6, Repetitions: 3}

	// success=true but quality<3 must still reset per the kernel's rule.
	result := sr.CalculateNextInterval(progress, 2, true, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if result.Repetitions != 0 || result.IntervalDays != 1 {
		t.Errorf("quality<3 should reset reps/interval even on success, got reps=%d interval=%v", result.Repetitions, result.IntervalDays)
	}
}

func TestCalculateNextInterval_SuccessProgression(t *testing.T) {
	sr := services.NewSpacedRepetitionService()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	progress := &models.UserNodeProgress{EasinessFactor: 2.5, IntervalDays: 0, Repetitions: 0}
	first := sr.CalculateNextInterval(progress, 4, true, now)
	if first.IntervalDays != 1 || first.Repetitions != 1 {
		t.Fatalf("first success: expected interval=1 reps=1, got interval=%v reps=%d", first.IntervalDays, first.Repetitions)
	}

	progress.EasinessFactor, progress.IntervalDays, progress.Repetitions = first.EasinessFactor, first.IntervalDays, first.Repetitions
	second := sr.CalculateNextInterval(progress, 4, true, now)
	if second.IntervalDays != 6 || second.Repetitions != 2 {
		t.Fatalf("second success: expected interval=6 reps=2, got interval=%v reps=%d", second.IntervalDays, second.Repetitions)
	}

	progress.EasinessFactor, progress.IntervalDays, progress.Repetitions = second.EasinessFactor, second.IntervalDays, second.Repetitions
	third := sr.CalculateNextInterval(progress, 4, true, now)
	expected := third.EasinessFactor // recomputed ef already applied to third.IntervalDays
	_ = expected
	if third.IntervalDays <= second.IntervalDays {
		t.Fatalf("third success: expected interval to grow past %v, got %v", second.IntervalDays, third.IntervalDays)
	}
}

func TestCalculateNextInterval_EasinessFloor(t *testing.T) {
	sr := services.NewSpacedRepetitionService()
	progress := &models.UserNodeProgress{EasinessFactor: 1.3, IntervalDays: 1, Repetitions: 1}

	result := sr.CalculateNextInterval(progress, 0, false, time.Now())

	if result.EasinessFactor < 1.3 {
		t.Errorf("easiness factor must never drop below 1.3, got %v", result.EasinessFactor)
	}
}

func buildLineGraph(a, b, c uint) map[string]*services.GraphNode {
	// a depends on b, b depends on c (weights 0.8, 0.8)
	graph := map[string]*services.GraphNode{
		"definition_" + itoa(a): {ID: a, Type: "definition", Prerequisites: []services.GraphEdge{{ID: b, Type: "definition", Weight: 0.8}}},
		"definition_" + itoa(b): {ID: b, Type: "definition", Prerequisites: []services.GraphEdge{{ID: c, Type: "definition", Weight: 0.8}}, Dependents: []services.GraphEdge{{ID: a, Type: "definition", Weight: 0.8}}},
		"definition_" + itoa(c): {ID: c, Type: "definition", Dependents: []services.GraphEdge{{ID: b, Type: "definition", Weight: 0.8}}},
	}
	return graph
}

func itoa(v uint) string {
	if v == 0 {
		return "0"
	}
	digits := ""
	for v > 0 {
		digits = string(rune('0'+v%10)) + digits
		v /= 10
	}
	return digits
}

func TestPropagateCredit_DecaysAlongPrerequisiteChain(t *testing.T) {
	cp := services.NewCreditPropagationService()
	graph := buildLineGraph(1, 2, 3)

	credits := cp.PropagateCredit(1, "definition", true, graph)

	byNode := map[uint]float64{}
	for _, c := range credits {
		byNode[c.NodeID] = c.Credit
	}

	if byNode[1] != 1.0 {
		t.Errorf("explicit credit on reviewed node should be 1.0, got %v", byNode[1])
	}
	if byNode[2] <= 0 || byNode[2] >= 1.0 {
		t.Errorf("node 2 (direct prerequisite) should get partial credit in (0,1), got %v", byNode[2])
	}
	if byNode[3] <= 0 || byNode[3] >= byNode[2] {
		t.Errorf("node 3 (two hops away) should get less credit than node 2, got node3=%v node2=%v", byNode[3], byNode[2])
	}
}

func TestPropagateCredit_FailureFlowsToDependentsNegatively(t *testing.T) {
	cp := services.NewCreditPropagationService()
	graph := buildLineGraph(1, 2, 3)

	credits := cp.PropagateCredit(3, "definition", false, graph)

	byNode := map[uint]float64{}
	for _, c := range credits {
		byNode[c.NodeID] = c.Credit
	}

	if byNode[2] >= 0 {
		t.Errorf("dependent of a failed review should receive negative credit, got %v", byNode[2])
	}
}

func TestPropagateCredit_MultiPathCreditsSum(t *testing.T) {
	cp := services.NewCreditPropagationService()
	// 1 depends on both 2 and 3, and 2 also depends on 3: two paths reach node 3.
	graph := map[string]*services.GraphNode{
		"definition_1": {ID: 1, Type: "definition", Prerequisites: []services.GraphEdge{
			{ID: 2, Type: "definition", Weight: 0.9},
			{ID: 3, Type: "definition", Weight: 0.9},
		}},
		"definition_2": {ID: 2, Type: "definition", Prerequisites: []services.GraphEdge{
			{ID: 3, Type: "definition", Weight: 0.9},
		}},
		"definition_3": {ID: 3, Type: "definition"},
	}

	credits := cp.PropagateCredit(1, "definition", true, graph)

	var direct, viaTwoHops float64
	for _, c := range credits {
		if c.NodeID == 3 {
			direct = c.Credit
		}
	}
	// single-path baseline for comparison: if node 3 only got the 2-hop path,
	// it would be 0.9*0.9*0.5 = 0.405; the direct 1-hop path alone is 0.9.
	viaTwoHops = 0.9 * 0.9 * 0.5
	if direct <= 0.9 {
		t.Errorf("credit to node 3 should sum both the direct edge (%v) and the two-hop path (%v), got total %v", 0.9, viaTwoHops, direct)
	}
}

func TestOptimizeReviewOrder_SortsByOverdueThenStatusThenDifficulty(t *testing.T) {
	ro := services.NewReviewOptimizationService()

	due := []models.NodeProgress{
		{NodeID: 1, Status: "grasped", OverdueDays: 1, Difficulty: 2},
		{NodeID: 2, Status: "tackling", OverdueDays: 5, Difficulty: 1},
		{NodeID: 3, Status: "learned", OverdueDays: 5, Difficulty: 3},
		{NodeID: 4, Status: "learned", OverdueDays: 5, Difficulty: 3},
	}

	ordered := ro.OptimizeReviewOrder(due)

	if ordered[0].NodeID != 2 {
		t.Fatalf("expected most-overdue node (2) first, got %d", ordered[0].NodeID)
	}
	if ordered[1].NodeID != 3 || ordered[2].NodeID != 4 {
		t.Fatalf("ties on overdue_days/status/difficulty should break by node_id ascending, got order %d,%d", ordered[1].NodeID, ordered[2].NodeID)
	}
	if ordered[3].NodeID != 1 {
		t.Fatalf("least overdue node should sort last, got %d", ordered[3].NodeID)
	}
}
