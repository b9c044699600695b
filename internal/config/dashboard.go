package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/kanso/internal/currency"
	"github.com/spf13/viper"
)

// SheetSpec names one worksheet and how many header rows it carries.
type SheetSpec struct {
	Name       string
	HeaderRows int
}

// DashboardConfig holds the settings for snapshot storage, metric
// computation and caching.
type DashboardConfig struct {
	DatabasePath     string
	Currency         string
	Assets           SheetSpec
	Liabilities      SheetSpec
	Incomes          SheetSpec
	Expenses         SheetSpec
	LookbackMonths   int
	MerchantCoverage float64
	FITarget         float64
	CacheTTL         time.Duration
}

// DefaultDashboardConfig returns a DashboardConfig with sensible defaults.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		DatabasePath:     "~/.local/share/kanso/kanso.db",
		Assets:           SheetSpec{Name: "Assets", HeaderRows: 2},
		Liabilities:      SheetSpec{Name: "Liabilities", HeaderRows: 2},
		Incomes:          SheetSpec{Name: "Incomes", HeaderRows: 1},
		Expenses:         SheetSpec{Name: "Expenses", HeaderRows: 1},
		LookbackMonths:   12,
		MerchantCoverage: 0.8,
		CacheTTL:         24 * time.Hour,
	}
}

// AllSheets returns the configured worksheets in a stable order.
func (c *DashboardConfig) AllSheets() []SheetSpec {
	return []SheetSpec{c.Assets, c.Liabilities, c.Incomes, c.Expenses}
}

// Validate checks if the configuration is valid.
func (c *DashboardConfig) Validate() error {
	if c.LookbackMonths <= 0 {
		return fmt.Errorf("lookback months must be positive, got %d", c.LookbackMonths)
	}
	if c.MerchantCoverage <= 0 || c.MerchantCoverage > 1 {
		return fmt.Errorf("merchant coverage must be in (0, 1], got %v", c.MerchantCoverage)
	}
	if c.FITarget < 0 {
		return fmt.Errorf("financial independence target cannot be negative, got %v", c.FITarget)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.CacheTTL)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Currency != "" {
		if _, ok := currency.FormatFor(currency.Code(c.Currency)); !ok {
			return fmt.Errorf("unsupported currency %q, supported: %v", c.Currency, currency.Supported())
		}
	}
	for _, sheet := range c.AllSheets() {
		if sheet.Name == "" {
			return fmt.Errorf("sheet names cannot be empty")
		}
		if sheet.HeaderRows < 1 || sheet.HeaderRows > 2 {
			return fmt.Errorf("sheet %q: header rows must be 1 or 2, got %d", sheet.Name, sheet.HeaderRows)
		}
	}
	return nil
}

// LoadDashboardConfig loads dashboard settings from Viper on top of the
// defaults.
func LoadDashboardConfig() (*DashboardConfig, error) {
	config := DefaultDashboardConfig()

	if v := viper.GetString("database.path"); v != "" {
		config.DatabasePath = v
	}
	config.DatabasePath = ExpandPath(config.DatabasePath)

	if v := viper.GetString("dashboard.currency"); v != "" {
		config.Currency = v
	}
	if viper.IsSet("dashboard.lookback_months") {
		config.LookbackMonths = viper.GetInt("dashboard.lookback_months")
	}
	if viper.IsSet("dashboard.merchant_coverage") {
		config.MerchantCoverage = viper.GetFloat64("dashboard.merchant_coverage")
	}
	if viper.IsSet("dashboard.fi_target") {
		config.FITarget = viper.GetFloat64("dashboard.fi_target")
	}
	if v := viper.GetDuration("dashboard.cache_ttl"); v > 0 {
		config.CacheTTL = v
	}

	loadSheetSpec(&config.Assets, "sheets.assets")
	loadSheetSpec(&config.Liabilities, "sheets.liabilities")
	loadSheetSpec(&config.Incomes, "sheets.incomes")
	loadSheetSpec(&config.Expenses, "sheets.expenses")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func loadSheetSpec(spec *SheetSpec, key string) {
	if v := viper.GetString(key + ".name"); v != "" {
		spec.Name = v
	}
	if v := viper.GetInt(key + ".header_rows"); v > 0 {
		spec.HeaderRows = v
	}
}
