// Package identity infers the canonical unit identity of an offer from the
// raw project, contract-unit and marketing labels a source row carries.
//
// One legacy project label, "SoMi Hayward", was used for several physical
// sub-developments. Both feeds have to agree on partition keys without a
// shared id, so the split below works from the row's own labels only. The
// keywords and the 123/200 unit-number boundaries come from that site's unit
// numbering plan and are kept exactly as the plan states them.
package identity

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// MultiBuildingProject is the legacy label shared by the SoMi sub-developments.
	MultiBuildingProject = "SoMi Hayward"

	ProjectSoMiA     = "SoMi A"
	ProjectSoMiB     = "SoMi B"
	ProjectSoMiTowns = "SoMi Towns"

	CollectionHayView       = "HayView"
	CollectionHayParkCondos = "HayPark Condos"
	CollectionHayParkTowns  = "HayPark Towns"

	hayViewKeyword = "hayview"
	hayParkKeyword = "haypark"
	hayViewPrefix  = "HayView"

	// hayParkCondoFloor is the first HayPark unit number in the condo building.
	hayParkCondoFloor = 200
	// townhomeCeiling is the last unlabeled unit number that belongs to the townhomes.
	townhomeCeiling = 123
)

var trailingDigitsRe = regexp.MustCompile(`(\d+)\s*$`)

// UnitIdentity is the derived identity of one unit. Empty strings and a nil
// UnitNumberNumeric mean "not set".
type UnitIdentity struct {
	ContractUnitNumber string
	UnitNumber         string
	UnitNumberNumeric  *int
	UnitCollection     string
	UnitBuildingCode   string
	ProjectIDOverride  string
}

// HasOverride reports whether the row belongs to a different project than its label says.
func (u UnitIdentity) HasOverride() bool {
	return u.ProjectIDOverride != ""
}

// DeriveUnitIdentity resolves the unit identity for one row.
func DeriveUnitIdentity(project, contractUnit, unitName string) UnitIdentity {
	project = strings.TrimSpace(project)
	contractUnit = strings.TrimSpace(contractUnit)
	unitName = strings.TrimSpace(unitName)

	generic := deriveGeneric(contractUnit, unitName)
	if !strings.EqualFold(project, MultiBuildingProject) {
		return generic
	}
	return deriveSoMi(generic, contractUnit, unitName)
}

func deriveGeneric(contractUnit, unitName string) UnitIdentity {
	id := UnitIdentity{ContractUnitNumber: contractUnit}
	if id.ContractUnitNumber == "" {
		id.ContractUnitNumber = unitName
	}
	digits := TrailingDigits(id.ContractUnitNumber)
	if digits == "" {
		id.UnitNumber = id.ContractUnitNumber
		return id
	}
	id.UnitNumber = digits
	id.UnitNumberNumeric = parseUnitNumber(digits)
	return id
}

func deriveSoMi(generic UnitIdentity, contractUnit, unitName string) UnitIdentity {
	digits := TrailingDigits(unitName)
	if digits == "" {
		digits = TrailingDigits(contractUnit)
	}
	numeric := parseUnitNumber(digits)
	if numeric == nil {
		return generic
	}

	id := generic
	id.UnitNumber = digits
	id.UnitNumberNumeric = numeric
	n := *numeric
	label := strings.ToLower(unitName)

	switch {
	case strings.Contains(label, hayViewKeyword):
		id.ContractUnitNumber = hayViewPrefix + "-" + digits
		id.UnitCollection = CollectionHayView
		id.UnitBuildingCode = "A"
		id.ProjectIDOverride = ProjectSoMiA
	case strings.Contains(label, hayParkKeyword):
		if n >= hayParkCondoFloor {
			id.UnitCollection = CollectionHayParkCondos
			id.UnitBuildingCode = "B"
			id.ProjectIDOverride = ProjectSoMiB
		} else {
			id.UnitCollection = CollectionHayParkTowns
			id.ProjectIDOverride = ProjectSoMiTowns
		}
	case n <= townhomeCeiling:
		id.ProjectIDOverride = ProjectSoMiTowns
	default:
		id.UnitBuildingCode = "B"
		id.ProjectIDOverride = ProjectSoMiB
	}
	return id
}

// TrailingDigits returns the run of digits at the end of s, ignoring trailing spaces.
func TrailingDigits(s string) string {
	m := trailingDigitsRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func parseUnitNumber(digits string) *int {
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}
