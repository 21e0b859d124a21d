package models

import (
	"errors"
	"fmt"
)

// FilterField identifies a filterable report dimension.
type FilterField string

const (
	FieldCampaignName  FilterField = "campaign_name"
	FieldFunnelURL     FilterField = "funnel_url"
	FieldAdAccountID   FilterField = "ad_account_id"
	FieldLeadFormID    FilterField = "lead_form_id"
	FieldTrafficSource FilterField = "traffic_source"
	FieldFunnel        FilterField = "funnel"
)

// Operator labels mirror what the report builder UI displays; they are sent
// to the query layer verbatim.
const (
	OpContains   = "Contains"
	OpNotContain = "Not Contain"
	OpEquals     = "Equals"
	OpStartsWith = "Starts With"
	OpEndsWith   = "Ends With"
	OpIs         = "Is"
	OpIsNot      = "Is Not"
)

// fieldOperators maps each field to its allowed operator set. The first
// entry is the default installed whenever the field changes.
var fieldOperators = map[FilterField][]string{
	FieldCampaignName:  {OpContains, OpNotContain, OpEquals, OpStartsWith, OpEndsWith},
	FieldFunnelURL:     {OpContains, OpNotContain, OpEquals, OpStartsWith, OpEndsWith},
	FieldAdAccountID:   {OpIs, OpIsNot},
	FieldLeadFormID:    {OpIs, OpIsNot},
	FieldTrafficSource: {OpIs, OpIsNot},
	FieldFunnel:        {OpIs, OpIsNot},
}

// OperatorsForField returns the allowed operator set for a field, or nil for
// an unknown field.
func OperatorsForField(f FilterField) []string {
	ops := fieldOperators[f]
	out := make([]string, len(ops))
	copy(out, ops)
	return out
}

// DefaultOperator returns the first allowed operator for a field.
func DefaultOperator(f FilterField) string {
	if ops := fieldOperators[f]; len(ops) > 0 {
		return ops[0]
	}
	return ""
}

// ValidOperator reports whether op belongs to the allowed set for f.
func ValidOperator(f FilterField, op string) bool {
	for _, o := range fieldOperators[f] {
		if o == op {
			return true
		}
	}
	return false
}

// FilterRule is a single (field, operator, value-list) predicate.
// InputText is a staging buffer for free-text search that has not been
// committed into Value yet; it is carried through serialization untouched.
type FilterRule struct {
	Field     FilterField `json:"field"`
	Operator  string      `json:"operator"`
	Value     []string    `json:"value"`
	InputText string      `json:"inputText,omitempty"`
}

// Validate checks the rule's field/operator pairing.
func (r *FilterRule) Validate() error {
	if r == nil {
		return errors.New("rule is nil")
	}
	if _, ok := fieldOperators[r.Field]; !ok {
		return fmt.Errorf("unknown filter field: %q", r.Field)
	}
	if !ValidOperator(r.Field, r.Operator) {
		return fmt.Errorf("operator %q not allowed for field %q", r.Operator, r.Field)
	}
	return nil
}

// FilterNodeType discriminates the FilterNode union.
type FilterNodeType string

const (
	NodeTypeNode FilterNodeType = "NODE"
	NodeTypeAnd  FilterNodeType = "AND"
	NodeTypeOr   FilterNodeType = "OR"
)

// FilterNode is one node of the recursive boolean filter tree. A NODE leaf
// carries exactly one Rule; an AND/OR combinator carries Children and no
// Rule. The tree is opaque to this service beyond validation: it is stored
// and forwarded to the query layer verbatim.
type FilterNode struct {
	Type     FilterNodeType `json:"type"`
	Rule     *FilterRule    `json:"rule,omitempty"`
	Children []*FilterNode  `json:"children,omitempty"`
}

// DefaultRule returns a fresh rule for f with the field's default operator
// and an empty committed value list.
func DefaultRule(f FilterField) *FilterRule {
	return &FilterRule{
		Field:    f,
		Operator: DefaultOperator(f),
		Value:    []string{},
	}
}

// DefaultFilterNode returns the tree every report builder session starts
// from: a single leaf on campaign_name.
func DefaultFilterNode() *FilterNode {
	return &FilterNode{
		Type: NodeTypeNode,
		Rule: DefaultRule(FieldCampaignName),
	}
}

// Validate enforces the tagged-union invariant recursively: exactly one of
// Rule/Children is populated, determined by Type.
func (n *FilterNode) Validate() error {
	if n == nil {
		return errors.New("filter node is nil")
	}
	switch n.Type {
	case NodeTypeNode:
		if len(n.Children) > 0 {
			return errors.New("NODE must not have children")
		}
		return n.Rule.Validate()
	case NodeTypeAnd, NodeTypeOr:
		if n.Rule != nil {
			return fmt.Errorf("%s must not carry a rule", n.Type)
		}
		if len(n.Children) < 2 {
			return fmt.Errorf("%s requires at least two children", n.Type)
		}
		for i, c := range n.Children {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown filter node type: %q", n.Type)
	}
}

// IsLeaf reports whether the node is a NODE leaf.
func (n *FilterNode) IsLeaf() bool {
	return n != nil && n.Type == NodeTypeNode
}
