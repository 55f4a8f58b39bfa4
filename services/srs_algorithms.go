package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"srsgraph/scheduler/models"
)

// SpacedRepetitionService implements the SM-2 scheduling kernel as a set of
// pure functions over progress state.
type SpacedRepetitionService struct{}

func NewSpacedRepetitionService() *SpacedRepetitionService {
	return &SpacedRepetitionService{}
}

// SRSResult represents the result of an SRS calculation
type SRSResult struct {
	EasinessFactor float64
	IntervalDays   float64
	Repetitions    int
	NextReview     time.Time
}

// CalculateNextInterval implements the SM-2 update: ef' = max(1.3, ef +
// (0.1 - (5-q)*(0.08+(5-q)*0.02))); on failure reps'=0, interval'=1; on
// success reps==0 -> interval'=1, reps==1 -> interval'=6, otherwise
// interval'=round(interval*ef').
func (s *SpacedRepetitionService) CalculateNextInterval(
	progress *models.UserNodeProgress,
	quality int,
	success bool,
	currentTime time.Time,
) SRSResult {
	ef := progress.EasinessFactor
	interval := progress.IntervalDays
	reps := progress.Repetitions

	q := float64(quality)
	ef = math.Max(1.3, ef+(0.1-(5-q)*(0.08+(5-q)*0.02)))

	if !success || quality < 3 {
		reps = 0
		interval = 1
	} else {
		switch reps {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = math.Round(interval * ef)
		}
		reps++
	}

	nextReview := currentTime.AddDate(0, 0, int(interval))

	return SRSResult{
		EasinessFactor: ef,
		IntervalDays:   interval,
		Repetitions:    reps,
		NextReview:     nextReview,
	}
}

// CreditPropagationService handles credit flow between nodes
type CreditPropagationService struct{}

func NewCreditPropagationService() *CreditPropagationService {
	return &CreditPropagationService{}
}

// GraphNode represents a node in the knowledge graph
type GraphNode struct {
	ID            uint
	Type          string
	Prerequisites []GraphEdge
	Dependents    []GraphEdge
}

// GraphEdge represents an edge in the knowledge graph
type GraphEdge struct {
	ID     uint
	Type   string
	Weight float64
}

const (
	// MinCredit is the threshold below which a propagated credit is
	// dropped instead of recorded.
	MinCredit = 0.01
	// Decay is applied once per hop beyond the first.
	Decay = 0.5
)

type bfsEntry struct {
	id       uint
	typ      string
	pathCred float64
	depth    int
}

// PropagateCredit implements the BFS credit walk: starting from the
// explicitly reviewed node, credit flows to prerequisites on success (or to
// dependents on failure), each hop scaled by the edge weight and by
// decay^(d-1). A node is visited at most once; the walk stops expanding a
// path once its magnitude drops below MinCredit.
func (c *CreditPropagationService) PropagateCredit(
	reviewedNodeID uint,
	reviewedNodeType string,
	success bool,
	graph map[string]*GraphNode,
) []models.CreditUpdate {
	credits := []models.CreditUpdate{
		{
			NodeID:   reviewedNodeID,
			NodeType: reviewedNodeType,
			Credit:   1.0,
			Type:     "explicit",
		},
	}

	startKey := c.getNodeKey(reviewedNodeID, reviewedNodeType)
	startNode, exists := graph[startKey]
	if !exists {
		return credits
	}

	visited := map[string]bool{startKey: true}
	accumulated := make(map[string]float64)

	var queue []bfsEntry
	neighborsOf := func(n *GraphNode) []GraphEdge {
		if success {
			return n.Prerequisites
		}
		return n.Dependents
	}

	for _, edge := range neighborsOf(startNode) {
		queue = append(queue, bfsEntry{id: edge.ID, typ: edge.Type, pathCred: edge.Weight, depth: 1})
	}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		decayed := entry.pathCred * math.Pow(Decay, float64(entry.depth-1))
		if math.Abs(decayed) < MinCredit {
			continue
		}

		key := c.getNodeKey(entry.id, entry.typ)
		signed := decayed
		if !success {
			signed = -decayed
		}
		// Multiple paths may reach the same node; their credit sums even
		// though the node is only expanded to its own neighbors once.
		accumulated[key] += signed

		if visited[key] {
			continue
		}
		visited[key] = true

		node, exists := graph[key]
		if !exists {
			continue
		}
		for _, edge := range neighborsOf(node) {
			nk := c.getNodeKey(edge.ID, edge.Type)
			if visited[nk] {
				continue
			}
			queue = append(queue, bfsEntry{
				id:       edge.ID,
				typ:      edge.Type,
				pathCred: entry.pathCred * edge.Weight,
				depth:    entry.depth + 1,
			})
		}
	}

	for key, credit := range accumulated {
		id, typ := c.parseNodeKey(key)
		credits = append(credits, models.CreditUpdate{
			NodeID:   id,
			NodeType: typ,
			Credit:   credit,
			Type:     "implicit",
		})
	}

	return credits
}

// BuildGraph creates a graph representation from prerequisites
func (c *CreditPropagationService) BuildGraph(prerequisites []models.NodePrerequisite) map[string]*GraphNode {
	graph := make(map[string]*GraphNode)

	nodeSet := make(map[string]bool)
	for _, prereq := range prerequisites {
		nodeKey := c.getNodeKey(prereq.NodeID, prereq.NodeType)
		prereqKey := c.getNodeKey(prereq.PrerequisiteID, prereq.PrerequisiteType)
		nodeSet[nodeKey] = true
		nodeSet[prereqKey] = true
	}

	for nodeKey := range nodeSet {
		nodeID, nodeType := c.parseNodeKey(nodeKey)
		graph[nodeKey] = &GraphNode{
			ID:            nodeID,
			Type:          nodeType,
			Prerequisites: []GraphEdge{},
			Dependents:    []GraphEdge{},
		}
	}

	for _, prereq := range prerequisites {
		nodeKey := c.getNodeKey(prereq.NodeID, prereq.NodeType)
		prereqKey := c.getNodeKey(prereq.PrerequisiteID, prereq.PrerequisiteType)

		if node, exists := graph[nodeKey]; exists {
			node.Prerequisites = append(node.Prerequisites, GraphEdge{
				ID:     prereq.PrerequisiteID,
				Type:   prereq.PrerequisiteType,
				Weight: prereq.Weight,
			})
		}

		if prereqNode, exists := graph[prereqKey]; exists {
			prereqNode.Dependents = append(prereqNode.Dependents, GraphEdge{
				ID:     prereq.NodeID,
				Type:   prereq.NodeType,
				Weight: prereq.Weight,
			})
		}
	}

	return graph
}

// getNodeKey creates a unique key for a node
func (c *CreditPropagationService) getNodeKey(nodeID uint, nodeType string) string {
	return fmt.Sprintf("%s_%d", nodeType, nodeID)
}

// parseNodeKey parses a node key back to ID and type
func (c *CreditPropagationService) parseNodeKey(key string) (uint, string) {
	parts := strings.Split(key, "_")
	if len(parts) != 2 {
		return 0, ""
	}

	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, ""
	}

	return uint(id), parts[0]
}

// ReviewOptimizationService orders the due queue.
type ReviewOptimizationService struct{}

func NewReviewOptimizationService() *ReviewOptimizationService {
	return &ReviewOptimizationService{}
}

var statusPriority = map[string]int{
	"tackling": 3,
	"grasped":  2,
	"learned":  1,
	"fresh":    0,
}

// OptimizeReviewOrder sorts the due queue by
// (overdue_days desc, -status_priority, -difficulty_or_0), ties broken by
// node_id ascending.
func (r *ReviewOptimizationService) OptimizeReviewOrder(dueNodes []models.NodeProgress) []models.NodeProgress {
	if len(dueNodes) == 0 {
		return dueNodes
	}

	result := make([]models.NodeProgress, len(dueNodes))
	copy(result, dueNodes)

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.OverdueDays != b.OverdueDays {
			return a.OverdueDays > b.OverdueDays
		}
		pa, pb := statusPriority[a.Status], statusPriority[b.Status]
		if pa != pb {
			return pa > pb
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty > b.Difficulty
		}
		return a.NodeID < b.NodeID
	})

	return result
}
