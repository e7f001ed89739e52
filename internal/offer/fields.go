package offer

// Canonical field names. Both mappers write only these names and the
// partition routing table is keyed by them.
const (
	FieldProjectID          = "project_id"
	FieldContractUnitNumber = "contract_unit_number"
	FieldLegacyProjectID    = "legacy_project_id"

	FieldUnitNumber        = "unit_number"
	FieldUnitNumberNumeric = "unit_number_numeric"
	FieldUnitCollection    = "unit_collection"
	FieldUnitBuildingCode  = "unit_building_code"
	FieldUnitName          = "unit_name"
	FieldPlanName          = "plan_name"
	FieldBedrooms          = "bedrooms"
	FieldBathrooms         = "bathrooms"
	FieldSquareFeet        = "square_feet"

	FieldSourceOfferID = "source_offer_id"

	FieldBuyer1FirstName = "buyer_1_first_name"
	FieldBuyer1LastName  = "buyer_1_last_name"
	FieldBuyer1FullName  = "buyer_1_full_name"
	FieldBuyer1Email     = "buyer_1_email"
	FieldBuyer1Phone     = "buyer_1_phone"
	FieldBuyer1Mobile    = "buyer_1_mobile"
	FieldBuyer2FirstName = "buyer_2_first_name"
	FieldBuyer2LastName  = "buyer_2_last_name"
	FieldBuyer2FullName  = "buyer_2_full_name"
	FieldBuyer2Email     = "buyer_2_email"
	FieldBuyer2Phone     = "buyer_2_phone"
	FieldBuyerNames      = "buyer_names"
	FieldBuyerName       = "buyer_name"
	FieldBuyerAddress    = "buyer_address"
	FieldBuyerCity       = "buyer_city"
	FieldBuyerState      = "buyer_state"
	FieldBuyerZip        = "buyer_zip"

	// FieldBuyerDisplayName is the source's own display name for the buyer
	// party. It is kept in the vault; the index only sees the derived
	// buyer_name.
	FieldBuyerDisplayName = "buyer_display_name"

	FieldSalesAgent     = "sales_agent"
	FieldBrokerName     = "broker_name"
	FieldBrokerCompany  = "broker_company"
	FieldBrokerEmail    = "broker_email"
	FieldBrokerPhone    = "broker_phone"
	FieldLenderName     = "lender_name"
	FieldLoanOfficer    = "loan_officer"
	FieldLoanType       = "loan_type"
	FieldPurchaseType   = "purchase_type"
	FieldInvestorOwner  = "investor_owner"
	FieldFirstTimeBuyer = "first_time_buyer"
	FieldCashBuyer      = "cash_buyer"

	FieldStatus        = "status"
	FieldStatusNumeric = "status_numeric"

	FieldOfferDate              = "offer_date"
	FieldContractDate           = "contract_date"
	FieldAcceptanceDate         = "acceptance_date"
	FieldDeposit1Date           = "deposit_1_date"
	FieldDeposit2Date           = "deposit_2_date"
	FieldAppraisalDate          = "appraisal_date"
	FieldLoanApprovalDate       = "loan_approval_date"
	FieldContingencyRemovalDate = "contingency_removal_date"
	FieldEstimatedCloseDate     = "estimated_close_date"
	FieldCloseOfEscrowDate      = "close_of_escrow_date"
	FieldCancellationDate       = "cancellation_date"
	FieldCancellationReason     = "cancellation_reason"

	FieldBasePrice        = "base_price"
	FieldLotPremium       = "lot_premium_price"
	FieldOptionsPrice     = "options_price"
	FieldUpgradesAmount   = "upgrades_amount"
	FieldIncentiveAmount  = "incentive_amount"
	FieldClosingCredit    = "closing_credit"
	FieldSellerCredit     = "seller_credit"
	FieldTotalPrice       = "total_price"
	FieldLoanAmount       = "loan_amount"
	FieldDownPaymentAmt   = "down_payment_amount"
	FieldDeposit1Amount   = "deposit_1_amount"
	FieldDeposit2Amount   = "deposit_2_amount"
	FieldAppraisedAmount  = "appraised_amount"
	FieldEscrowCompany    = "escrow_company"
	FieldEscrowNumber     = "escrow_number"
	FieldEscrowOfficer    = "escrow_officer"
	FieldNotes            = "notes"
	FieldIsClosed         = "is_closed"
	FieldIsImmutable      = "is_immutable"
	FieldReportDate       = "report_date"
	FieldIngestedAt       = "ingested_at"
	FieldSource           = "source"
	FieldSourceUpdatedAt  = "source_updated_at"
	FieldPhoneHash        = "phone_hash"
	FieldPhoneLast4       = "phone_last4"
	FieldPhoneArea        = "phone_area"
)

// Source tags stamped onto records.
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
)
