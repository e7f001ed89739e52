package mapper

import (
	"regexp"
	"strings"
	"time"

	"offerbridge/internal/coerce"
	"offerbridge/internal/identity"
	"offerbridge/internal/offer"
	"offerbridge/internal/phone"
)

// PrimaryFeedProject is the project label the live CRM feed owns. Its rows
// also show up in the weekly report and must not be ingested twice.
const PrimaryFeedProject = "Fusion"

var closedStatusRe = regexp.MustCompile(`(?i)closed|complete`)

// Secondary-feed alias chains. Headers arrive lower_snake_case from the
// batch parser.
var (
	secondaryProjectAliases  = []string{"project_id", "project", "project_name", "community", "community_name", "development"}
	secondaryUnitAliases     = []string{"contract_unit_number", "contract_unit", "unit_number", "unit_no", "unit", "lot_number", "lot"}
	secondaryUnitNameAliases = []string{"unit_name", "marketing_name", "home_name", "residence", "unit_description"}
	secondaryInvestorAliases = []string{"investor_owner", "investor", "is_investor"}
	secondaryPhoneAliases    = []string{"buyer_1_phone", "buyer_phone", "primary_phone", "phone", "home_phone", "buyer_1_mobile", "mobile_phone", "cell_phone", "buyer_2_phone"}
)

var secondarySpecs = []fieldSpec{
	str(offer.FieldSourceOfferID, "offer_id", "record_id", "transaction_id"),
	str(offer.FieldUnitName, secondaryUnitNameAliases...),
	str(offer.FieldPlanName, "plan_name", "plan", "floor_plan"),
	num(offer.FieldBedrooms, "bedrooms", "beds"),
	num(offer.FieldBathrooms, "bathrooms", "baths"),
	num(offer.FieldSquareFeet, "square_feet", "sq_ft", "sqft", "living_area"),

	str(offer.FieldBuyer1FirstName, "buyer_1_first_name", "buyer_first_name", "first_name"),
	str(offer.FieldBuyer1LastName, "buyer_1_last_name", "buyer_last_name", "last_name"),
	str(offer.FieldBuyer1FullName, "buyer_1_name", "buyer_name", "buyer", "purchaser"),
	str(offer.FieldBuyer1Email, "buyer_1_email", "buyer_email", "email"),
	str(offer.FieldBuyer1Phone, "buyer_1_phone", "buyer_phone", "primary_phone", "phone", "home_phone"),
	str(offer.FieldBuyer1Mobile, "buyer_1_mobile", "mobile_phone", "cell_phone"),
	str(offer.FieldBuyer2FirstName, "buyer_2_first_name", "co_buyer_first_name"),
	str(offer.FieldBuyer2LastName, "buyer_2_last_name", "co_buyer_last_name"),
	str(offer.FieldBuyer2FullName, "buyer_2_name", "co_buyer_name", "co_buyer", "co_purchaser"),
	str(offer.FieldBuyer2Email, "buyer_2_email", "co_buyer_email"),
	str(offer.FieldBuyer2Phone, "buyer_2_phone", "co_buyer_phone"),
	str(offer.FieldBuyerAddress, "buyer_address", "mailing_address", "address"),
	str(offer.FieldBuyerCity, "buyer_city", "mailing_city", "city"),
	str(offer.FieldBuyerState, "buyer_state", "mailing_state", "state"),
	str(offer.FieldBuyerZip, "buyer_zip", "mailing_zip", "zip", "zip_code"),

	str(offer.FieldSalesAgent, "sales_agent", "sales_associate", "agent"),
	str(offer.FieldBrokerName, "broker_name", "co_broker", "realtor"),
	str(offer.FieldBrokerCompany, "broker_company", "brokerage"),
	str(offer.FieldBrokerEmail, "broker_email", "realtor_email"),
	str(offer.FieldBrokerPhone, "broker_phone", "realtor_phone"),
	str(offer.FieldLenderName, "lender_name", "lender"),
	str(offer.FieldLoanOfficer, "loan_officer"),
	str(offer.FieldLoanType, "loan_type", "financing_type", "financing"),
	str(offer.FieldPurchaseType, "purchase_type", "buyer_type", "occupancy"),
	flag(offer.FieldFirstTimeBuyer, "first_time_buyer", "ftb"),
	flag(offer.FieldCashBuyer, "cash_buyer", "cash", "all_cash"),

	str(offer.FieldStatus, "status", "offer_status", "escrow_status", "sale_status"),
	num(offer.FieldStatusNumeric, "status_numeric", "status_code", "status_id", "stage_number"),

	date(offer.FieldOfferDate, "offer_date", "offer_submitted"),
	date(offer.FieldContractDate, "contract_date", "ratified_date", "sale_date"),
	date(offer.FieldAcceptanceDate, "acceptance_date", "accepted_date"),
	date(offer.FieldDeposit1Date, "deposit_1_date", "initial_deposit_date", "emd_date"),
	date(offer.FieldDeposit2Date, "deposit_2_date", "second_deposit_date"),
	date(offer.FieldAppraisalDate, "appraisal_date"),
	date(offer.FieldLoanApprovalDate, "loan_approval_date", "loan_approved"),
	date(offer.FieldContingencyRemovalDate, "contingency_removal_date", "contingencies_removed"),
	date(offer.FieldEstimatedCloseDate, "estimated_close_date", "est_coe", "projected_close"),
	date(offer.FieldCloseOfEscrowDate, "close_of_escrow_date", "coe_date", "actual_close_date", "close_date", "closed_date"),
	date(offer.FieldCancellationDate, "cancellation_date", "cancel_date"),
	str(offer.FieldCancellationReason, "cancellation_reason", "cancel_reason"),

	num(offer.FieldBasePrice, "base_price", "list_price"),
	num(offer.FieldLotPremium, "lot_premium", "lot_premium_price", "premium"),
	num(offer.FieldOptionsPrice, "options_price", "options", "options_total"),
	num(offer.FieldUpgradesAmount, "upgrades_amount", "upgrades"),
	num(offer.FieldIncentiveAmount, "incentive_amount", "incentives"),
	num(offer.FieldClosingCredit, "closing_credit", "closing_cost_credit"),
	num(offer.FieldSellerCredit, "seller_credit", "concessions"),
	num(offer.FieldTotalPrice, "total_price", "sales_price", "purchase_price", "net_price"),
	num(offer.FieldLoanAmount, "loan_amount", "mortgage_amount"),
	num(offer.FieldDownPaymentAmt, "down_payment", "down_payment_amount"),
	num(offer.FieldDeposit1Amount, "deposit_1_amount", "initial_deposit", "emd"),
	num(offer.FieldDeposit2Amount, "deposit_2_amount", "second_deposit"),
	num(offer.FieldAppraisedAmount, "appraised_value", "appraisal_amount"),

	str(offer.FieldEscrowCompany, "escrow_company", "title_company"),
	str(offer.FieldEscrowNumber, "escrow_number", "escrow_no"),
	str(offer.FieldEscrowOfficer, "escrow_officer"),
	str(offer.FieldNotes, "notes", "comments", "remarks"),
}

// SecondaryOptions configures the weekly batch report mapper.
type SecondaryOptions struct {
	PhoneHashSalt string
	// IncludeFusion lets primary-feed project rows through; normally they
	// are dropped because the live feed already owns them.
	IncludeFusion bool
}

// Secondary maps rows from the weekly third-party batch report.
type Secondary struct {
	opts SecondaryOptions
	now  func() time.Time
}

// NewSecondary returns a secondary-feed mapper.
func NewSecondary(opts SecondaryOptions) *Secondary {
	return &Secondary{opts: opts, now: time.Now}
}

// Map converts one batch row. reportDate is stamped onto every row of a run.
func (s *Secondary) Map(row Row, reportDate string) Result {
	projectID, ok := row.FirstString(secondaryProjectAliases...)
	contractUnit, _ := row.FirstString(secondaryUnitAliases...)
	unitName, _ := row.FirstString(secondaryUnitNameAliases...)
	if !ok || (contractUnit == "" && unitName == "") {
		return skip(ReasonMissingKey)
	}

	id := identity.DeriveUnitIdentity(projectID, contractUnit, unitName)
	if id.ContractUnitNumber == "" {
		return skip(ReasonMissingKey)
	}

	rec := offer.Record{}
	effective := applyIdentity(rec, projectID, id)
	if !s.opts.IncludeFusion && strings.EqualFold(effective, PrimaryFeedProject) {
		return skip(ReasonFusionFiltered)
	}

	applySpecs(row, rec, secondarySpecs)
	fillFullNames(rec)
	setBuyerNames(rec)
	setInvestorOwner(rec, row, secondaryInvestorAliases)
	setStatusNumeric(rec)

	closed := isClosed(rec)
	rec[offer.FieldIsClosed] = closed
	if closed {
		rec[offer.FieldIsImmutable] = 1
	}

	if raw, ok := row.FirstString(secondaryPhoneAliases...); ok {
		if m, ok := phone.Derive(raw, s.opts.PhoneHashSalt); ok {
			rec[offer.FieldPhoneHash] = m.Hash
			rec[offer.FieldPhoneLast4] = m.Last4
			rec.Set(offer.FieldPhoneArea, m.Area, m.Area != "")
		}
	}

	if d, ok := coerce.Date(reportDate); ok {
		rec[offer.FieldReportDate] = d
	}
	rec[offer.FieldIngestedAt] = timestamp(s.now)
	rec[offer.FieldSource] = offer.SourceSecondary
	return finish(rec)
}

// isClosed treats a row as a closed sale when any signal says so: status
// code 4, a closed/complete status text, or a close-of-escrow date.
func isClosed(rec offer.Record) bool {
	if n, ok := rec.Number(offer.FieldStatusNumeric); ok && n == offer.StatusCodeClosed {
		return true
	}
	if closedStatusRe.MatchString(rec.String(offer.FieldStatus)) {
		return true
	}
	_, ok := coerce.Date(rec[offer.FieldCloseOfEscrowDate])
	return ok
}
