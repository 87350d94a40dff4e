package domain

import "time"

// CoverDays is a whole number of days of stock cover. UnlimitedCover marks
// stock that has no sales velocity to deplete it.
type CoverDays int

const UnlimitedCover CoverDays = 999

// VelocityTrend is the percentage change of 30-day shipped units between two
// snapshots. NewSellerTrend marks a SKU that started selling from zero.
type VelocityTrend float64

const NewSellerTrend VelocityTrend = 999

// IsNewSeller reports whether the trend is the new-seller marker rather than a percentage.
func (v VelocityTrend) IsNewSeller() bool {
	return v == NewSellerTrend
}

// ProductRecord is one enriched inventory row, keyed by SKU within a snapshot.
type ProductRecord struct {
	SKU       string `json:"sku"`
	ASIN      string `json:"asin"`
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Category  string `json:"category"`

	Available      float64 `json:"available"`
	PendingRemoval float64 `json:"pendingRemoval"`
	InvAge0to90    float64 `json:"invAge0to90"`
	InvAge91to180  float64 `json:"invAge91to180"`
	InvAge181to270 float64 `json:"invAge181to270"`
	InvAge271to365 float64 `json:"invAge271to365"`
	InvAge365plus  float64 `json:"invAge365plus"`
	ShippedT30     float64 `json:"shippedT30"`

	TotalInvAgeDays   int    `json:"totalInvAgeDays"`
	SellThroughRate   int    `json:"sellThroughRate"`
	RecommendedAction string `json:"recommendedAction"`
	RiskScore         int    `json:"riskScore"`

	// Optional enrichments. A nil pointer means the source data was not supplied.
	*Logistics
	*Financials
	*Comparison

	RestockRecommendation *int `json:"restockRecommendation,omitempty"`
}

// Logistics holds inbound/reserved quantities from an MFI report and the
// urgency metrics derived from them.
type Logistics struct {
	InboundWorking    float64       `json:"inboundWorking"`
	InboundShipped    float64       `json:"inboundShipped"`
	InboundReceiving  float64       `json:"inboundReceiving"`
	ReservedQuantity  float64       `json:"reservedQuantity"`
	NetAvailableStock float64       `json:"netAvailableStock"`
	DaysOfCover       CoverDays     `json:"daysOfCover"`
	UrgencyScore      float64       `json:"urgencyScore"`
	UrgencyStatus     UrgencyStatus `json:"urgencyStatus"`
}

// Financials holds unit economics joined from a financial file or the primary row.
type Financials struct {
	COGS               float64 `json:"cogs"`
	Price              float64 `json:"price"`
	InventoryValue     float64 `json:"inventoryValue"`
	PotentialRevenue   float64 `json:"potentialRevenue"`
	GrossProfitPerUnit float64 `json:"grossProfitPerUnit"`
}

// Comparison holds deltas against an older snapshot.
type Comparison struct {
	InventoryChange      float64       `json:"inventoryChange"`
	ShippedChange        float64       `json:"shippedChange"`
	AgeChange            int           `json:"ageChange"`
	RiskScoreChange      int           `json:"riskScoreChange"`
	VelocityTrend        VelocityTrend `json:"velocityTrend"`
	InventoryValueChange *float64      `json:"inventoryValueChange,omitempty"`
}

// Stats aggregates a record collection.
type Stats struct {
	TotalProducts    int     `json:"totalProducts"`
	TotalAvailable   float64 `json:"totalAvailable"`
	TotalPending     float64 `json:"totalPending"`
	TotalShipped     float64 `json:"totalShipped"`
	AvgDaysInventory int     `json:"avgDaysInventory"`
	SellThroughRate  int     `json:"sellThroughRate"`
	AtRiskSKUs       int     `json:"atRiskSKUs"`
}

// Snapshot is an immutable named collection built from one uploaded file.
// Timestamp is caller-supplied metadata.
type Snapshot struct {
	ID        string          `json:"id,omitempty" db:"id"`
	Name      string          `json:"name" db:"name"`
	Data      []ProductRecord `json:"data" db:"-"`
	Stats     Stats           `json:"stats" db:"-"`
	Timestamp time.Time       `json:"timestamp" db:"created_at"`
}
