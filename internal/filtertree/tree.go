// Package filtertree implements path-addressed, copy-on-write mutation of
// report filter trees. A path is the sequence of child indexes from the
// root; the empty path addresses the root itself. Every operation is a
// total function: a stale or malformed path degrades to a no-op that
// returns the input tree, so callers holding outdated paths never crash
// the edit session.
package filtertree

import (
	"github.com/adaudit/adaudit-api/internal/models"
)

// NodeUpdate is a partial node patch. Nil fields are left untouched;
// ClearRule/ClearChildren drop the corresponding side of the union.
type NodeUpdate struct {
	Type          *models.FilterNodeType
	Rule          *models.FilterRule
	Children      []*models.FilterNode
	ClearRule     bool
	ClearChildren bool
}

// descend rebuilds the spine from root to the node at path, applying fn to
// a copy of the addressed node. It reports false, returning the original
// subtree, when the path runs out of range or tries to step through a leaf.
func descend(n *models.FilterNode, path []int, fn func(models.FilterNode) *models.FilterNode) (*models.FilterNode, bool) {
	if n == nil {
		return n, false
	}
	if len(path) == 0 {
		return fn(*n), true
	}
	if n.IsLeaf() {
		return n, false
	}
	idx := path[0]
	if idx < 0 || idx >= len(n.Children) {
		return n, false
	}
	child, ok := descend(n.Children[idx], path[1:], fn)
	if !ok {
		return n, false
	}
	cp := *n
	cp.Children = make([]*models.FilterNode, len(n.Children))
	copy(cp.Children, n.Children)
	cp.Children[idx] = child
	return &cp, true
}

// UpdateNodeAtPath returns a new tree with the node at path shallow-merged
// with updates. Untouched branches are shared with the input tree.
func UpdateNodeAtPath(tree *models.FilterNode, path []int, updates NodeUpdate) *models.FilterNode {
	out, _ := descend(tree, path, func(n models.FilterNode) *models.FilterNode {
		if updates.Type != nil {
			n.Type = *updates.Type
		}
		if updates.ClearRule {
			n.Rule = nil
		} else if updates.Rule != nil {
			n.Rule = updates.Rule
		}
		if updates.ClearChildren {
			n.Children = nil
		} else if updates.Children != nil {
			n.Children = updates.Children
		}
		return &n
	})
	return out
}

// SetNodeType changes the node at path to newType. Switching to NODE
// installs a fresh default rule and drops all children; switching to a
// combinator drops the rule and installs exactly two fresh default leaves.
// The change is destructive by contract: prior rule and children are not
// preserved across a type toggle.
func SetNodeType(tree *models.FilterNode, path []int, newType models.FilterNodeType) *models.FilterNode {
	out, _ := descend(tree, path, func(n models.FilterNode) *models.FilterNode {
		n.Type = newType
		if newType == models.NodeTypeNode {
			n.Rule = models.DefaultRule(models.FieldCampaignName)
			n.Children = nil
		} else {
			n.Rule = nil
			n.Children = []*models.FilterNode{
				models.DefaultFilterNode(),
				models.DefaultFilterNode(),
			}
		}
		return &n
	})
	return out
}

// Rule property keys accepted by SetRuleField.
const (
	RuleKeyField     = "field"
	RuleKeyOperator  = "operator"
	RuleKeyValue     = "value"
	RuleKeyInputText = "inputText"
)

// SetRuleField patches one property of the leaf rule at path. Changing the
// field resets the operator to the new field's default in the same step, so
// no tree with a transient invalid (field, operator) pair is ever returned.
// Addressing a combinator node, or passing an unknown key, is a no-op.
func SetRuleField(tree *models.FilterNode, path []int, key string, value any) *models.FilterNode {
	out, _ := descend(tree, path, func(n models.FilterNode) *models.FilterNode {
		if !n.IsLeaf() || n.Rule == nil {
			return &n
		}
		rule := *n.Rule
		switch key {
		case RuleKeyField:
			f, ok := asField(value)
			if !ok {
				return &n
			}
			rule.Field = f
			rule.Operator = models.DefaultOperator(f)
			rule.Value = []string{}
		case RuleKeyOperator:
			op, ok := value.(string)
			if !ok {
				return &n
			}
			rule.Operator = op
		case RuleKeyValue:
			vals, ok := asStrings(value)
			if !ok {
				return &n
			}
			rule.Value = vals
		case RuleKeyInputText:
			txt, ok := value.(string)
			if !ok {
				return &n
			}
			rule.InputText = txt
		default:
			return &n
		}
		n.Rule = &rule
		return &n
	})
	return out
}

func asField(v any) (models.FilterField, bool) {
	switch f := v.(type) {
	case models.FilterField:
		return f, true
	case string:
		return models.FilterField(f), true
	}
	return "", false
}

func asStrings(v any) ([]string, bool) {
	switch vals := v.(type) {
	case []string:
		out := make([]string, len(vals))
		copy(out, vals)
		return out, true
	case string:
		return []string{vals}, true
	}
	return nil, false
}
