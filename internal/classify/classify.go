// Package classify detects the schema variant of a component table and reduces
// each component's classification to a label.
package classify

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"

	"github.com/sells-group/dtm-tools/internal/model"
	"github.com/sells-group/dtm-tools/internal/table"
)

// Tags only the kundu decision tree writes.
func markerTags() map[string]struct{} {
	return map[string]struct{}{
		"Low variance": {},
	}
}

// Tags that demote an accepted component to ignored under the three-way policy.
func ignoreOverrideTags() map[string]struct{} {
	return map[string]struct{}{
		"Low variance":          {},
		"Accept borderline":     {},
		"No provisional accept": {},
	}
}

// DetectSchema returns the schema variant of t. Tables without tagColumn are
// kundu-main; tag tables are kundu-dtm when any row carries a marker tag and
// minimal-dtm otherwise.
func DetectSchema(t *table.Table, tagColumn string) model.SchemaVariant {
	if !t.HasColumn(tagColumn) {
		return model.SchemaKunduMain
	}

	markers := markerTags()
	for _, row := range t.Rows() {
		if table.HasAnyTag(row.Tags(tagColumn), markers) {
			return model.SchemaKunduDTM
		}
	}
	return model.SchemaMinimalDTM
}

// Normalizer maps rows to labels under a policy.
type Normalizer struct {
	Policy    model.LabelPolicy
	TagColumn string

	overrides map[string]struct{}
	fold      cases.Caser
}

// NewNormalizer creates a Normalizer. An empty policy means three-way; an
// empty tag column means table.ColTags.
func NewNormalizer(policy model.LabelPolicy, tagColumn string) *Normalizer {
	if policy == "" {
		policy = model.PolicyThreeWay
	}
	if tagColumn == "" {
		tagColumn = table.ColTags
	}
	return &Normalizer{
		Policy:    policy,
		TagColumn: tagColumn,
		overrides: ignoreOverrideTags(),
		fold:      cases.Fold(),
	}
}

// Label returns the label of one row.
func (n *Normalizer) Label(row table.Row) (model.Label, error) {
	raw, ok := row.Value(table.ColClassification)
	if !ok {
		return "", eris.Errorf("classify: row %d: missing classification", row.Index)
	}

	switch class := n.fold.String(strings.TrimSpace(raw)); class {
	case model.ClassRejected:
		return model.LabelRejected, nil
	case model.ClassAccepted, model.ClassIgnored:
		if n.Policy == model.PolicyTwoWay {
			return model.LabelAccepted, nil
		}
		if class == model.ClassIgnored {
			return model.LabelIgnored, nil
		}
		if table.HasAnyTag(row.Tags(n.TagColumn), n.overrides) {
			return model.LabelIgnored, nil
		}
		return model.LabelAccepted, nil
	default:
		return "", eris.Errorf("classify: row %d: unknown classification %q", row.Index, raw)
	}
}
