package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// SchemaVariant identifies the layout of a component table.
type SchemaVariant string

const (
	SchemaKunduMain  SchemaVariant = "kundu-main"
	SchemaKunduDTM   SchemaVariant = "kundu-dtm"
	SchemaMinimalDTM SchemaVariant = "minimal-dtm"
)

// IsDTM reports whether the variant was produced by a decision tree module,
// i.e. whether its rationale lives in the tag column.
func (s SchemaVariant) IsDTM() bool {
	return strings.Contains(string(s), "dtm")
}

// Label is the reduced classification of a single component.
type Label string

const (
	LabelAccepted Label = "A"
	LabelIgnored  Label = "I"
	LabelRejected Label = "R"
)

// Raw classification values written by the decomposition pipeline.
const (
	ClassAccepted = "accepted"
	ClassIgnored  = "ignored"
	ClassRejected = "rejected"
)

// LabelPolicy selects how raw classifications collapse into labels.
type LabelPolicy string

const (
	// PolicyThreeWay keeps ignored components distinct from accepted ones.
	PolicyThreeWay LabelPolicy = "three-way"
	// PolicyTwoWay collapses everything that is not rejected into accepted.
	PolicyTwoWay LabelPolicy = "two-way"
)

// ParseLabelPolicy validates a policy name.
func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch p := LabelPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyThreeWay, PolicyTwoWay:
		return p, nil
	case "":
		return PolicyThreeWay, nil
	default:
		return "", eris.Errorf("model: unknown label policy %q (want %q or %q)", s, PolicyThreeWay, PolicyTwoWay)
	}
}

// Transition is an ordered (left, right) label pair observed for one component.
type Transition struct {
	From Label `json:"from" yaml:"from"`
	To   Label `json:"to" yaml:"to"`
}

// String renders the transition as "A -> R".
func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

// Changed reports whether the two labels differ.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// ChangeBucket accumulates every component that made the same transition.
type ChangeBucket struct {
	Transition Transition `json:"transition" yaml:"transition"`
	Count      int        `json:"count" yaml:"count"`
	Varex      float64    `json:"varex" yaml:"varex"`
	Components []int      `json:"components" yaml:"components"`
}

// Add records one component in the bucket.
func (b *ChangeBucket) Add(index int, varex float64) {
	b.Count++
	b.Varex += varex
	b.Components = append(b.Components, index)
}
