package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-cockpit/internal/config"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func TestSnapshotRowRoundTrip(t *testing.T) {
	cogs := &domain.Financials{COGS: 4, Price: 10, InventoryValue: 40}
	in := &domain.Snapshot{
		ID:        "id-1",
		Name:      "jan",
		Data:      []domain.ProductRecord{{SKU: "A", Available: 10, RiskScore: 20, Financials: cogs}},
		Stats:     domain.Stats{TotalProducts: 1, TotalAvailable: 10},
		Timestamp: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	row, err := newSnapshotRow(in)
	require.NoError(t, err)

	out, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Stats, out.Stats)
	require.Len(t, out.Data, 1)
	assert.Equal(t, "A", out.Data[0].SKU)
	require.NotNil(t, out.Data[0].Financials)
	assert.Equal(t, 40.0, out.Data[0].InventoryValue)
	assert.Nil(t, out.Data[0].Logistics)
}

func TestNewSnapshotRowEmptyData(t *testing.T) {
	row, err := newSnapshotRow(&domain.Snapshot{Name: "empty"})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(row.Records))
}

func TestOrderByNames(t *testing.T) {
	rows := []snapshotRow{
		{Name: "feb", Records: []byte("[]"), Stats: []byte("{}")},
		{Name: "jan", Records: []byte("[]"), Stats: []byte("{}")},
	}

	got, err := orderByNames(rows, []string{"jan", "feb"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "jan", got[0].Name)
	assert.Equal(t, "feb", got[1].Name)

	_, err = orderByNames(rows, []string{"jan", "mar"})
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestDriverName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pgx", "pgx"},
		{"postgres", "postgres"},
		{"", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DriverName(tt.in))
		})
	}

	dsn := DSN(&config.DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "fba", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=fba sslmode=disable", dsn)
}
