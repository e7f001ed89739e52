package mapper

import (
	"strings"
	"time"

	"offerbridge/internal/coerce"
	"offerbridge/internal/identity"
	"offerbridge/internal/offer"
)

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindDate
	kindBool
)

// fieldSpec maps one canonical field from an alias chain with one coercion.
type fieldSpec struct {
	field   string
	kind    valueKind
	aliases []string
}

func str(field string, aliases ...string) fieldSpec  { return fieldSpec{field, kindString, aliases} }
func num(field string, aliases ...string) fieldSpec  { return fieldSpec{field, kindNumber, aliases} }
func date(field string, aliases ...string) fieldSpec { return fieldSpec{field, kindDate, aliases} }
func flag(field string, aliases ...string) fieldSpec { return fieldSpec{field, kindBool, aliases} }

func applySpecs(row Row, rec offer.Record, specs []fieldSpec) {
	for _, spec := range specs {
		v := row.First(spec.aliases...)
		switch spec.kind {
		case kindString:
			s, ok := coerce.String(v)
			rec.Set(spec.field, s, ok)
		case kindNumber:
			n, ok := coerce.Number(v)
			rec.Set(spec.field, n, ok)
		case kindDate:
			d, ok := coerce.Date(v)
			rec.Set(spec.field, d, ok)
		case kindBool:
			b, ok := coerce.BoolString(v)
			rec.Set(spec.field, b, ok)
		}
	}
}

// applyIdentity folds the derived unit identity into rec. An override moves
// the row to its real project and keeps the label it arrived with.
func applyIdentity(rec offer.Record, projectID string, id identity.UnitIdentity) string {
	effective := projectID
	if id.HasOverride() {
		effective = id.ProjectIDOverride
		rec[offer.FieldLegacyProjectID] = projectID
	}
	rec[offer.FieldProjectID] = effective
	rec[offer.FieldContractUnitNumber] = id.ContractUnitNumber
	rec.Set(offer.FieldUnitNumber, id.UnitNumber, id.UnitNumber != "")
	if id.UnitNumberNumeric != nil {
		rec[offer.FieldUnitNumberNumeric] = float64(*id.UnitNumberNumeric)
	}
	rec.Set(offer.FieldUnitCollection, id.UnitCollection, id.UnitCollection != "")
	rec.Set(offer.FieldUnitBuildingCode, id.UnitBuildingCode, id.UnitBuildingCode != "")
	return effective
}

// fillFullNames builds buyer full names from first/last when the source
// did not send one.
func fillFullNames(rec offer.Record) {
	pairs := []struct{ full, first, last string }{
		{offer.FieldBuyer1FullName, offer.FieldBuyer1FirstName, offer.FieldBuyer1LastName},
		{offer.FieldBuyer2FullName, offer.FieldBuyer2FirstName, offer.FieldBuyer2LastName},
	}
	for _, p := range pairs {
		if rec.String(p.full) != "" {
			continue
		}
		name := strings.TrimSpace(rec.String(p.first) + " " + rec.String(p.last))
		rec.Set(p.full, name, name != "")
	}
}

// BuyerNames joins up to two buyer names for display: "A", "A & B" or "".
func BuyerNames(first, second string) string {
	first = strings.TrimSpace(first)
	second = strings.TrimSpace(second)
	switch {
	case first != "" && second != "":
		return first + " & " + second
	case first != "":
		return first
	default:
		return second
	}
}

func setBuyerNames(rec offer.Record) {
	names := BuyerNames(rec.String(offer.FieldBuyer1FullName), rec.String(offer.FieldBuyer2FullName))
	rec.Set(offer.FieldBuyerNames, names, names != "")
}

// setInvestorOwner prefers an explicit flag and otherwise reads the
// purchase type: "investment" means an investor-owner, any other type means not.
func setInvestorOwner(rec offer.Record, row Row, flagAliases []string) {
	if v, ok := coerce.BoolString(row.First(flagAliases...)); ok {
		rec[offer.FieldInvestorOwner] = v
		return
	}
	purchaseType := rec.String(offer.FieldPurchaseType)
	if purchaseType == "" {
		return
	}
	if strings.Contains(strings.ToLower(purchaseType), "investment") {
		rec[offer.FieldInvestorOwner] = "true"
		return
	}
	rec[offer.FieldInvestorOwner] = "false"
}

// setStatusNumeric derives the numeric status from text when the source
// did not send one.
func setStatusNumeric(rec offer.Record) {
	if _, ok := rec.Number(offer.FieldStatusNumeric); ok {
		return
	}
	if code, ok := offer.StatusCode(rec.String(offer.FieldStatus)); ok {
		rec[offer.FieldStatusNumeric] = float64(code)
	}
}

func finish(rec offer.Record) Result {
	return Result{Mapped: offer.Record(coerce.StripEmpty(rec))}
}

func timestamp(now func() time.Time) string {
	return now().UTC().Format(time.RFC3339)
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
