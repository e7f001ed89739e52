package mapper

import (
	"time"

	"offerbridge/internal/identity"
	"offerbridge/internal/offer"
)

// Primary-feed alias chains. The CRM export is not consistent about key
// casing, which Row.Get absorbs, so only genuinely different names are listed.
var (
	primaryProjectAliases  = []string{"projectId", "project", "projectName", "community", "communityName"}
	primaryUnitAliases     = []string{"contractUnitNumber", "contractUnit", "unitNumber", "unit", "lotNumber", "lot", "homesite"}
	primaryUnitNameAliases = []string{"unitName", "marketingName", "homeName", "residenceName", "unitMarketingName"}
	primaryInvestorAliases = []string{"investorOwner", "isInvestor", "investor"}
)

var primarySpecs = []fieldSpec{
	str(offer.FieldSourceOfferID, "offerId", "opportunityId", "recordId", "id"),
	str(offer.FieldUnitName, primaryUnitNameAliases...),
	str(offer.FieldPlanName, "planName", "plan", "floorPlan", "floorplanName"),
	num(offer.FieldBedrooms, "bedrooms", "beds", "bedroomCount"),
	num(offer.FieldBathrooms, "bathrooms", "baths", "bathroomCount"),
	num(offer.FieldSquareFeet, "squareFeet", "sqft", "squareFootage", "livingArea"),

	str(offer.FieldBuyer1FirstName, "buyer1FirstName", "buyerFirstName", "primaryBuyerFirstName", "firstName"),
	str(offer.FieldBuyer1LastName, "buyer1LastName", "buyerLastName", "primaryBuyerLastName", "lastName"),
	str(offer.FieldBuyer1FullName, "buyer1Name", "buyer1FullName", "primaryBuyerName", "contactName"),
	str(offer.FieldBuyer1Email, "buyer1Email", "buyerEmail", "primaryBuyerEmail", "email"),
	str(offer.FieldBuyer1Phone, "buyer1Phone", "buyerPhone", "primaryBuyerPhone", "homePhone", "phone"),
	str(offer.FieldBuyer1Mobile, "buyer1Mobile", "buyerMobile", "mobilePhone", "cellPhone", "mobile"),
	str(offer.FieldBuyer2FirstName, "buyer2FirstName", "coBuyerFirstName"),
	str(offer.FieldBuyer2LastName, "buyer2LastName", "coBuyerLastName"),
	str(offer.FieldBuyer2FullName, "buyer2Name", "buyer2FullName", "coBuyerName"),
	str(offer.FieldBuyer2Email, "buyer2Email", "coBuyerEmail"),
	str(offer.FieldBuyer2Phone, "buyer2Phone", "coBuyerPhone", "coBuyerMobile"),
	str(offer.FieldBuyerDisplayName, "buyerDisplayName", "displayName"),
	str(offer.FieldBuyerAddress, "buyerAddress", "mailingStreet", "street", "address"),
	str(offer.FieldBuyerCity, "buyerCity", "mailingCity", "city"),
	str(offer.FieldBuyerState, "buyerState", "mailingState", "state"),
	str(offer.FieldBuyerZip, "buyerZip", "mailingPostalCode", "postalCode", "zip"),

	str(offer.FieldSalesAgent, "salesAgent", "salesAssociate", "ownerName", "agent"),
	str(offer.FieldBrokerName, "brokerName", "coBrokerName", "realtorName"),
	str(offer.FieldBrokerCompany, "brokerCompany", "brokerage", "realtorCompany"),
	str(offer.FieldBrokerEmail, "brokerEmail", "realtorEmail"),
	str(offer.FieldBrokerPhone, "brokerPhone", "realtorPhone"),
	str(offer.FieldLenderName, "lenderName", "lender", "mortgageLender"),
	str(offer.FieldLoanOfficer, "loanOfficer", "loanOfficerName"),
	str(offer.FieldLoanType, "loanType", "financingType", "financing"),
	str(offer.FieldPurchaseType, "purchaseType", "buyerType", "occupancyType"),
	flag(offer.FieldFirstTimeBuyer, "firstTimeBuyer", "isFirstTimeBuyer"),
	flag(offer.FieldCashBuyer, "cashBuyer", "isCash", "allCash"),

	str(offer.FieldStatus, "status", "offerStatus", "stage", "stageName"),
	num(offer.FieldStatusNumeric, "statusNumeric", "statusCode", "stageNumber"),

	date(offer.FieldOfferDate, "offerDate", "offerSubmittedDate", "createdDate"),
	date(offer.FieldContractDate, "contractDate", "contractSignedDate", "ratifiedDate"),
	date(offer.FieldAcceptanceDate, "acceptanceDate", "acceptedDate", "offerAcceptedDate"),
	date(offer.FieldDeposit1Date, "deposit1Date", "initialDepositDate", "emdDate"),
	date(offer.FieldDeposit2Date, "deposit2Date", "secondDepositDate"),
	date(offer.FieldAppraisalDate, "appraisalDate"),
	date(offer.FieldLoanApprovalDate, "loanApprovalDate", "loanApprovedDate"),
	date(offer.FieldContingencyRemovalDate, "contingencyRemovalDate", "contingenciesRemovedDate"),
	date(offer.FieldEstimatedCloseDate, "estimatedCloseDate", "estimatedCoe", "projectedCloseDate"),
	date(offer.FieldCloseOfEscrowDate, "closeOfEscrowDate", "coeDate", "actualCloseDate", "closeDate"),
	date(offer.FieldCancellationDate, "cancellationDate", "cancelledDate"),
	str(offer.FieldCancellationReason, "cancellationReason", "cancelReason"),

	num(offer.FieldBasePrice, "basePrice", "listPrice", "baseHomePrice"),
	num(offer.FieldLotPremium, "lotPremium", "lotPremiumPrice", "premium"),
	num(offer.FieldOptionsPrice, "optionsPrice", "optionsTotal", "designOptions"),
	num(offer.FieldUpgradesAmount, "upgradesAmount", "upgrades"),
	num(offer.FieldIncentiveAmount, "incentiveAmount", "incentives", "incentive"),
	num(offer.FieldClosingCredit, "closingCredit", "closingCostCredit"),
	num(offer.FieldSellerCredit, "sellerCredit", "concessions"),
	num(offer.FieldTotalPrice, "totalPrice", "salesPrice", "purchasePrice", "contractPrice"),
	num(offer.FieldLoanAmount, "loanAmount", "mortgageAmount"),
	num(offer.FieldDownPaymentAmt, "downPayment", "downPaymentAmount"),
	num(offer.FieldDeposit1Amount, "deposit1Amount", "initialDeposit", "emdAmount"),
	num(offer.FieldDeposit2Amount, "deposit2Amount", "secondDeposit"),
	num(offer.FieldAppraisedAmount, "appraisedValue", "appraisalAmount"),

	str(offer.FieldEscrowCompany, "escrowCompany", "titleCompany"),
	str(offer.FieldEscrowNumber, "escrowNumber", "escrowNo"),
	str(offer.FieldEscrowOfficer, "escrowOfficer"),
	str(offer.FieldNotes, "notes", "comments", "description"),
	date(offer.FieldSourceUpdatedAt, "lastModifiedDate", "updatedAt", "modifiedDate"),
}

// PrimaryOptions configures the live CRM mapper.
type PrimaryOptions struct {
	// ProjectID is used for rows that carry no project at all; the CRM
	// export is scoped to a single project.
	ProjectID string
}

// Primary maps rows from the live CRM export.
type Primary struct {
	opts PrimaryOptions
	now  func() time.Time
}

// NewPrimary returns a primary-feed mapper.
func NewPrimary(opts PrimaryOptions) *Primary {
	return &Primary{opts: opts, now: time.Now}
}

// Map converts one CRM row. It never fails; rows without a key are skipped.
func (p *Primary) Map(row Row) Result {
	projectID, ok := row.FirstString(primaryProjectAliases...)
	if !ok {
		projectID, ok = nonEmpty(p.opts.ProjectID)
	}
	contractUnit, _ := row.FirstString(primaryUnitAliases...)
	unitName, _ := row.FirstString(primaryUnitNameAliases...)
	if !ok || (contractUnit == "" && unitName == "") {
		return skip(ReasonMissingKey)
	}

	id := identity.DeriveUnitIdentity(projectID, contractUnit, unitName)
	if id.ContractUnitNumber == "" {
		return skip(ReasonMissingKey)
	}

	rec := offer.Record{}
	applyIdentity(rec, projectID, id)
	applySpecs(row, rec, primarySpecs)
	fillFullNames(rec)
	setBuyerNames(rec)
	setInvestorOwner(rec, row, primaryInvestorAliases)
	setStatusNumeric(rec)
	rec[offer.FieldSource] = offer.SourcePrimary
	rec[offer.FieldIngestedAt] = timestamp(p.now)
	return finish(rec)
}
