package partition

import "offerbridge/internal/offer"

// Route says which storage tier a canonical field is written to.
type Route int

const (
	// VaultOnly is the zero value so that a missing table entry is treated
	// as sensitive.
	VaultOnly Route = iota
	IndexOnly
	Both
)

func (r Route) String() string {
	switch r {
	case IndexOnly:
		return "index"
	case Both:
		return "both"
	default:
		return "vault"
	}
}

// RoutingTable maps canonical field names to their tier.
type RoutingTable map[string]Route

// Route returns the tier for field; unknown fields go to the vault.
func (t RoutingTable) Route(field string) Route {
	if r, ok := t[field]; ok {
		return r
	}
	return VaultOnly
}

// DefaultRoutes is the routing table for canonical offer records. Buyer
// contact details, display names, addresses, escrow numbers and free text
// stay out of it and therefore land only in the vault.
var DefaultRoutes = RoutingTable{
	offer.FieldProjectID:          Both,
	offer.FieldContractUnitNumber: Both,
	offer.FieldLegacyProjectID:    Both,
	offer.FieldUnitNumber:         Both,
	offer.FieldUnitNumberNumeric:  Both,
	offer.FieldUnitCollection:     Both,
	offer.FieldUnitBuildingCode:   Both,
	offer.FieldUnitName:           Both,
	offer.FieldPlanName:           Both,
	offer.FieldBedrooms:           Both,
	offer.FieldBathrooms:          Both,
	offer.FieldSquareFeet:         Both,
	offer.FieldSourceOfferID:      Both,

	offer.FieldBuyerName:  IndexOnly,
	offer.FieldBuyerState: Both,

	offer.FieldSalesAgent:     Both,
	offer.FieldBrokerCompany:  Both,
	offer.FieldLenderName:     Both,
	offer.FieldLoanType:       Both,
	offer.FieldPurchaseType:   Both,
	offer.FieldInvestorOwner:  Both,
	offer.FieldFirstTimeBuyer: Both,
	offer.FieldCashBuyer:      Both,

	offer.FieldStatus:        Both,
	offer.FieldStatusNumeric: Both,

	offer.FieldOfferDate:              Both,
	offer.FieldContractDate:           Both,
	offer.FieldAcceptanceDate:         Both,
	offer.FieldDeposit1Date:           Both,
	offer.FieldDeposit2Date:           Both,
	offer.FieldAppraisalDate:          Both,
	offer.FieldLoanApprovalDate:       Both,
	offer.FieldContingencyRemovalDate: Both,
	offer.FieldEstimatedCloseDate:     Both,
	offer.FieldCloseOfEscrowDate:      Both,
	offer.FieldCancellationDate:       Both,

	offer.FieldBasePrice:       Both,
	offer.FieldLotPremium:      Both,
	offer.FieldOptionsPrice:    Both,
	offer.FieldUpgradesAmount:  Both,
	offer.FieldIncentiveAmount: Both,
	offer.FieldClosingCredit:   Both,
	offer.FieldSellerCredit:    Both,
	offer.FieldTotalPrice:      Both,
	offer.FieldLoanAmount:      Both,
	offer.FieldDownPaymentAmt:  Both,
	offer.FieldDeposit1Amount:  Both,
	offer.FieldDeposit2Amount:  Both,
	offer.FieldAppraisedAmount: Both,
	offer.FieldEscrowCompany:   Both,

	offer.FieldIsClosed:        Both,
	offer.FieldIsImmutable:     Both,
	offer.FieldReportDate:      Both,
	offer.FieldIngestedAt:      Both,
	offer.FieldSource:          Both,
	offer.FieldSourceUpdatedAt: Both,
	offer.FieldPhoneHash:       Both,
	offer.FieldPhoneLast4:      Both,
	offer.FieldPhoneArea:       Both,
}
