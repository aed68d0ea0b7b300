// Package rationale expands the short rationale codes written by the kundu
// component selection into readable descriptions.
package rationale

import (
	"sort"
	"strings"

	"github.com/sells-group/dtm-tools/internal/table"
)

// NotAvailable is rendered for missing rationale or tag values.
const NotAvailable = "N/A"

// Entry is one row of the lookup table.
type Entry struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// Describe returns the description for a code.
func Describe(code string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "N001":
		return "Manual classification", true
	case "P001":
		return "TEDPCA: low Kappa and Rho", true
	case "P002":
		return "TEDPCA: low variance explained", true
	case "P003":
		return "TEDPCA: Kappa equals fmax", true
	case "P004":
		return "TEDPCA: Rho equals fmax", true
	case "P005":
		return "TEDPCA: cumulative variance explained above 95%", true
	case "P006":
		return "TEDPCA: Kappa below fmin", true
	case "P007":
		return "TEDPCA: Rho below fmin", true
	case "R001":
		return "Manual classification", true
	case "R002":
		return "Rho > Kappa", true
	case "R003":
		return "More significant voxels S0 vs. R2", true
	case "R004":
		return "S0 Dice is higher than R2 Dice and high variance explained", true
	case "R005":
		return "Noise F-value is higher than signal F-value and high variance explained", true
	case "R006":
		return "Kappa below Kappa elbow", true
	case "R007":
		return "Rho above Rho elbow", true
	case "R008":
		return "High variance explained, meeting rejection criteria", true
	case "R009":
		return "Mid-Kappa type A", true
	case "R010":
		return "Mid-Kappa type B", true
	case "I001":
		return "Manual classification", true
	case "I002":
		return "No good components found", true
	case "I003":
		return "Ambiguous with moderate variance explained", true
	case "I004":
		return "Ambiguous with low variance explained", true
	case "I005":
		return "Ambiguous, included to preserve degrees of freedom", true
	case "I006":
		return "ign_add0", true
	case "I007":
		return "ign_add1", true
	case "I008":
		return "Low variance", true
	case "I009":
		return "Mid-Kappa type A", true
	case "I010":
		return "Mid-Kappa type B", true
	case "I011":
		return "Accept borderline", true
	case "I012":
		return "No provisional accept", true
	}
	return "", false
}

var codes = [...]string{
	"N001",
	"P001", "P002", "P003", "P004", "P005", "P006", "P007",
	"R001", "R002", "R003", "R004", "R005", "R006", "R007", "R008", "R009", "R010",
	"I001", "I002", "I003", "I004", "I005", "I006", "I007", "I008", "I009", "I010", "I011", "I012",
}

// All returns the lookup table sorted by code.
func All() []Entry {
	entries := make([]Entry, 0, len(codes))
	for _, c := range codes {
		d, _ := Describe(c)
		entries = append(entries, Entry{Code: c, Description: d})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}

// Expand renders a rationale cell. Codes are mapped through the lookup table,
// other text is kept verbatim, and several semicolon separated codes are joined
// with "; ". Missing values become NotAvailable.
func Expand(cell string) string {
	if table.IsMissing(cell) {
		return NotAvailable
	}

	var parts []string
	for _, raw := range strings.Split(cell, ";") {
		p := strings.TrimSpace(raw)
		if table.IsMissing(p) {
			continue
		}
		if d, ok := Describe(p); ok {
			parts = append(parts, d)
		} else {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, "; ")
}

// ExpandTags renders a tag list, NotAvailable when it is empty.
func ExpandTags(tags []string) string {
	if len(tags) == 0 {
		return NotAvailable
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		if d, ok := Describe(tag); ok {
			out[i] = d
		} else {
			out[i] = tag
		}
	}
	return strings.Join(out, ", ")
}
