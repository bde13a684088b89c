package classifier

import (
	"errors"
	"fmt"

	"github.com/kartoza/heart-risk/internal/features"
)

// KindDecisionTree identifies decision tree artifacts
const KindDecisionTree = "decision_tree"

// TreeNode is one node of a flattened binary tree. Inner nodes send a vector
// left when v[FeatureIdx] <= Threshold.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// DecisionTree is a binary classification tree rooted at Nodes[0]
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree from the root to a leaf
func (t *DecisionTree) Predict(v features.Vector) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("empty decision tree")
	}
	idx := 0
	for steps := 0; steps < len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return float64(node.ClassLabel), nil
		}
		// NaN compares false, so it follows the right branch.
		if v[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return 0, errors.New("decision tree walk did not reach a leaf")
}

// Depth returns the length of the longest root-to-leaf path. Children always
// follow their parent, so one pass from the last node back to the root is enough.
func (t *DecisionTree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	depth := make([]int, len(t.Nodes))
	for i := len(t.Nodes) - 1; i >= 0; i-- {
		node := t.Nodes[i]
		if node.IsLeaf {
			continue
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child > i && child < len(t.Nodes) {
				depth[i] = max(depth[i], depth[child]+1)
			}
		}
	}
	return depth[0]
}

// validate checks every node so Predict never indexes out of range and every
// path from the root ends in a leaf. Each node other than the root must have
// exactly one parent.
func (t *DecisionTree) validate() error {
	if len(t.Nodes) == 0 {
		return errors.New("decision tree has no nodes")
	}
	parents := make([]int, len(t.Nodes))
	for i, node := range t.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= features.NumFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child %d must come after its parent", i, child)
			}
			parents[child]++
		}
		if node.LeftChild == node.RightChild {
			return fmt.Errorf("node %d: both branches lead to node %d", i, node.LeftChild)
		}
	}
	for i := 1; i < len(parents); i++ {
		switch {
		case parents[i] == 0:
			return fmt.Errorf("node %d is not reachable from the root", i)
		case parents[i] > 1:
			return fmt.Errorf("node %d has %d parents", i, parents[i])
		}
	}
	return nil
}
