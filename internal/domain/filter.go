package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FilterState holds independent optional predicates. An empty field means no constraint.
type FilterState struct {
	Search      string `json:"search" form:"search"`
	Action      string `json:"action" form:"action"`
	Age         string `json:"age" form:"age"`
	Category    string `json:"category" form:"category"`
	StockStatus string `json:"stockStatus" form:"stock_status"`
	MinStock    string `json:"minStock" form:"min_stock"`
	MaxStock    string `json:"maxStock" form:"max_stock"`
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// SortCriterion is one key of a multi-key sort.
type SortCriterion struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// SortState is an ordered list of criteria; position is priority.
type SortState []SortCriterion

// DefaultSortState sorts by risk score, highest first.
func DefaultSortState() SortState {
	return SortState{{Key: "riskScore", Direction: SortDesc}}
}

// ParseSortState decodes a sort state from JSON. Older clients stored a single
// {key, direction} object; that form is migrated to a one-element list.
func ParseSortState(raw []byte) (SortState, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return DefaultSortState(), nil
	}

	var state SortState
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSortState, err)
		}
	case '{':
		var single SortCriterion
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSortState, err)
		}
		state = SortState{single}
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrInvalidSortState)
	}

	for i := range state {
		state[i].Key = strings.TrimSpace(state[i].Key)
		if state[i].Key == "" {
			return nil, fmt.Errorf("%w: empty key at position %d", ErrInvalidSortState, i)
		}
		switch SortDirection(strings.ToLower(string(state[i].Direction))) {
		case SortDesc:
			state[i].Direction = SortDesc
		default:
			state[i].Direction = SortAsc
		}
	}
	if len(state) == 0 {
		return DefaultSortState(), nil
	}
	return state, nil
}

// ParseSortParam parses the compact query form "riskScore:desc,sku:asc".
func ParseSortParam(param string) SortState {
	var state SortState
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, dir, _ := strings.Cut(part, ":")
		direction := SortAsc
		if strings.EqualFold(strings.TrimSpace(dir), string(SortDesc)) {
			direction = SortDesc
		}
		state = append(state, SortCriterion{Key: strings.TrimSpace(key), Direction: direction})
	}
	if len(state) == 0 {
		return DefaultSortState()
	}
	return state
}

// Param renders the state in the compact form ParseSortParam reads.
func (s SortState) Param() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.Key + ":" + string(c.Direction)
	}
	return strings.Join(parts, ",")
}

// ForecastSettings drives the restock forecaster only.
type ForecastSettings struct {
	LeadTimeDays          float64 `json:"leadTimeDays" form:"lead_time" validate:"gte=0,lte=365"`
	SafetyStockDays       float64 `json:"safetyStockDays" form:"safety_stock" validate:"gte=0,lte=365"`
	DemandForecastPercent float64 `json:"demandForecastPercent" form:"demand_forecast" validate:"gte=-100,lte=1000"`
}
