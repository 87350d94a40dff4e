package fba

// RawRow is one parsed CSV row keyed by normalized header name
// (trimmed, lower-cased, BOM-stripped).
type RawRow map[string]string

// Column names of the primary FBA inventory snapshot report.
const (
	ColSKU               = "sku"
	ColASIN              = "asin"
	ColProductName       = "product-name"
	ColCondition         = "condition"
	ColAvailable         = "available"
	ColPendingRemoval    = "pending-removal-quantity"
	ColInvAge0to90       = "inv-age-0-to-90-days"
	ColInvAge91to180     = "inv-age-91-to-180-days"
	ColInvAge181to270    = "inv-age-181-to-270-days"
	ColInvAge271to365    = "inv-age-271-to-365-days"
	ColInvAge365plus     = "inv-age-365-plus-days"
	ColUnitsShippedT30   = "units-shipped-t30"
	ColRecommendedAction = "recommended-action"
	ColCategory          = "category"
)

// Column names of the MFI (Manage FBA Inventory) logistics report.
const (
	ColInboundWorking   = "afn-inbound-working-quantity"
	ColInboundShipped   = "afn-inbound-shipped-quantity"
	ColInboundReceiving = "afn-inbound-receiving-quantity"
	ColReservedQuantity = "afn-reserved-quantity"
)

// Column names of the financial report.
const (
	ColCOGS  = "cogs"
	ColPrice = "price"
)

const (
	defaultRecommendedAction = "No Action"
	defaultCategory          = "Unknown"
)

// Midpoint weights (days) applied to each inventory-age bucket.
const (
	ageWeight0to90    = 45
	ageWeight91to180  = 135
	ageWeight181to270 = 225
	ageWeight271to365 = 318
	ageWeight365plus  = 400
)

// LogisticsRecord is one SKU of the MFI report.
type LogisticsRecord struct {
	SKU              string
	InboundWorking   float64
	InboundShipped   float64
	InboundReceiving float64
	ReservedQuantity float64
}

// FinancialRecord is one SKU of the financial report.
type FinancialRecord struct {
	SKU   string
	COGS  float64
	Price float64
}

// Lookups are the secondary indexes joined onto primary rows by normalized SKU.
// Nil maps are valid and mean the report was not supplied.
type Lookups struct {
	Logistics  map[string]LogisticsRecord
	Financials map[string]FinancialRecord
}

// BuildReport counts what happened to the input rows of one build.
type BuildReport struct {
	Rows       int
	Dropped    int
	Duplicates int
}
