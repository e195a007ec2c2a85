package parcel

import (
	"regexp"
	"strings"
)

// lotPlanRegex matches QLD lot-on-plan tokens, e.g. 3RP123456, 12SP789.
var lotPlanRegex = regexp.MustCompile(`^(\d+)([A-Z]{1,3}[0-9]+)$`)

// Identifier is a normalised lot reference typed by a user.
type Identifier struct {
	Raw     string `json:"raw"`
	Region  Region `json:"region"`
	Lot     string `json:"lot"`
	Section string `json:"section,omitempty"`
	Plan    string `json:"plan"`
}

// HasSection reports whether an NSW section number was given.
func (id Identifier) HasSection() bool {
	return id.Section != ""
}

// LotPlan is the concatenated QLD key, e.g. 3RP123456.
func (id Identifier) LotPlan() string {
	return id.Lot + id.Plan
}

func (id Identifier) String() string {
	switch id.Region {
	case NSW:
		if id.HasSection() {
			return id.Lot + "/" + id.Section + "/" + id.Plan
		}
		return id.Lot + "/" + id.Plan
	case QLD:
		return id.LotPlan()
	default:
		return id.Raw
	}
}

// ParseIdentifier classifies raw user input.
//
//	43/DP12345      NSW lot/plan
//	43/1/DP12345    NSW lot/section/plan
//	3RP123456       QLD lot+plan
//
// Anything else is reported as unrecognised.
func ParseIdentifier(raw string) (Identifier, bool) {
	in := strings.ToUpper(strings.TrimSpace(raw))
	if in == "" {
		return Identifier{Raw: raw}, false
	}

	if strings.Contains(in, "/") {
		parts := strings.Split(in, "/")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		id := Identifier{Raw: raw, Region: NSW}
		switch len(parts) {
		case 2:
			id.Lot, id.Plan = parts[0], parts[1]
		case 3:
			id.Lot, id.Section, id.Plan = parts[0], parts[1], parts[2]
		default:
			return Identifier{Raw: raw}, false
		}

		if id.Lot == "" || id.Plan == "" {
			return Identifier{Raw: raw}, false
		}

		return id, true
	}

	if m := lotPlanRegex.FindStringSubmatch(in); m != nil {
		return Identifier{Raw: raw, Region: QLD, Lot: m[1], Plan: m[2]}, true
	}

	return Identifier{Raw: raw}, false
}
