package fba

import "github.com/andresuchdata/fba-cockpit/internal/domain"

// logisticsMarkers are columns that only appear in the MFI report.
var logisticsMarkers = []string{
	ColInboundWorking,
	ColInboundShipped,
	ColInboundReceiving,
	ColReservedQuantity,
	"afn-fulfillable-quantity",
}

var snapshotMarkers = []string{
	ColAvailable,
	ColUnitsShippedT30,
	ColInvAge0to90,
	ColInvAge365plus,
}

// ClassifyHeaders decides which report a header row belongs to. It returns
// false when the headers carry no SKU column and cannot be joined at all.
func ClassifyHeaders(headers []string) (domain.FileKind, bool) {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[NormalizeHeader(h)] = struct{}{}
	}
	has := func(col string) bool {
		_, ok := set[col]
		return ok
	}

	if !has(ColSKU) {
		return "", false
	}
	for _, col := range logisticsMarkers {
		if has(col) {
			return domain.FileKindLogistics, true
		}
	}

	isSnapshot := false
	for _, col := range snapshotMarkers {
		if has(col) {
			isSnapshot = true
			break
		}
	}
	if !isSnapshot && (has(ColCOGS) || has(ColPrice)) {
		return domain.FileKindFinancial, true
	}
	return domain.FileKindSnapshot, true
}
