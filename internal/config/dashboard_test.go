package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		mutate  func(*DashboardConfig)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *DashboardConfig) {},
		},
		{
			name:    "zero lookback",
			mutate:  func(c *DashboardConfig) { c.LookbackMonths = 0 },
			wantErr: true,
			errMsg:  "lookback months must be positive",
		},
		{
			name:    "coverage above one",
			mutate:  func(c *DashboardConfig) { c.MerchantCoverage = 1.5 },
			wantErr: true,
			errMsg:  "merchant coverage must be in (0, 1]",
		},
		{
			name:    "coverage zero",
			mutate:  func(c *DashboardConfig) { c.MerchantCoverage = 0 },
			wantErr: true,
			errMsg:  "merchant coverage must be in (0, 1]",
		},
		{
			name:    "negative FI target",
			mutate:  func(c *DashboardConfig) { c.FITarget = -1 },
			wantErr: true,
			errMsg:  "financial independence target cannot be negative",
		},
		{
			name:   "zero FI target disables the KPI",
			mutate: func(c *DashboardConfig) { c.FITarget = 0 },
		},
		{
			name:    "negative cache TTL",
			mutate:  func(c *DashboardConfig) { c.CacheTTL = -time.Hour },
			wantErr: true,
			errMsg:  "cache TTL must be positive",
		},
		{
			name:    "unknown currency",
			mutate:  func(c *DashboardConfig) { c.Currency = "XYZ" },
			wantErr: true,
			errMsg:  "unsupported currency",
		},
		{
			name:   "known currency",
			mutate: func(c *DashboardConfig) { c.Currency = "EUR" },
		},
		{
			name:    "empty sheet name",
			mutate:  func(c *DashboardConfig) { c.Incomes.Name = "" },
			wantErr: true,
			errMsg:  "sheet names cannot be empty",
		},
		{
			name:    "too many header rows",
			mutate:  func(c *DashboardConfig) { c.Assets.HeaderRows = 3 },
			wantErr: true,
			errMsg:  "header rows must be 1 or 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultDashboardConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDashboardConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("defaults", func(t *testing.T) {
		viper.Reset()

		config, err := LoadDashboardConfig()
		require.NoError(t, err)
		assert.Equal(t, 12, config.LookbackMonths)
		assert.InDelta(t, 0.8, config.MerchantCoverage, 0.001)
		assert.Equal(t, 24*time.Hour, config.CacheTTL)
		assert.Equal(t, "Assets", config.Assets.Name)
		assert.Equal(t, 2, config.Assets.HeaderRows)
		assert.Equal(t, 1, config.Expenses.HeaderRows)
	})

	t.Run("viper overrides", func(t *testing.T) {
		viper.Reset()
		viper.Set("dashboard.lookback_months", 6)
		viper.Set("dashboard.merchant_coverage", 0.9)
		viper.Set("dashboard.fi_target", 250000.0)
		viper.Set("dashboard.cache_ttl", "1h")
		viper.Set("dashboard.currency", "USD")
		viper.Set("sheets.expenses.name", "Spending")
		viper.Set("sheets.incomes.header_rows", 2)
		viper.Set("database.path", "/tmp/kanso-test.db")

		config, err := LoadDashboardConfig()
		require.NoError(t, err)
		assert.Equal(t, 6, config.LookbackMonths)
		assert.InDelta(t, 0.9, config.MerchantCoverage, 0.001)
		assert.InDelta(t, 250000.0, config.FITarget, 0.001)
		assert.Equal(t, time.Hour, config.CacheTTL)
		assert.Equal(t, "USD", config.Currency)
		assert.Equal(t, "Spending", config.Expenses.Name)
		assert.Equal(t, 2, config.Incomes.HeaderRows)
		assert.Equal(t, "/tmp/kanso-test.db", config.DatabasePath)
	})

	t.Run("invalid override fails loudly", func(t *testing.T) {
		viper.Reset()
		viper.Set("dashboard.lookback_months", -1)

		_, err := LoadDashboardConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lookback months must be positive")
	})
}

func TestExpandPath(t *testing.T) {
	t.Setenv("KANSO_TEST_DIR", "/data")

	assert.Equal(t, "/data/kanso.db", ExpandPath("$KANSO_TEST_DIR/kanso.db"))
	assert.Equal(t, "", ExpandPath(""))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.db"), ExpandPath("~/x.db"))
	assert.Equal(t, home, ExpandPath("~"))
}
