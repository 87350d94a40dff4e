package domain

// UrgencyStatus classifies restock urgency for records with logistics data.
type UrgencyStatus string

const (
	UrgencyCritical UrgencyStatus = "Critical"
	UrgencyWarning  UrgencyStatus = "Warning"
	UrgencyHealthy  UrgencyStatus = "Healthy"
)

// StockStatus is a filter bucket computed from available units and sales velocity.
type StockStatus string

const (
	StockStatusLow      StockStatus = "low"
	StockStatusHigh     StockStatus = "high"
	StockStatusStranded StockStatus = "stranded"
)

// FileKind identifies which report a parsed file came from.
type FileKind string

const (
	FileKindSnapshot  FileKind = "snapshot"
	FileKindLogistics FileKind = "logistics"
	FileKindFinancial FileKind = "financial"
)
