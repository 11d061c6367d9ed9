package costestimate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/config"
	"visa-processing/internal/service/costestimate"
)

func TestEstimate(t *testing.T) {
	svc := costestimate.NewService(&config.Config{})

	t.Run("duration tiers", func(t *testing.T) {
		cases := []struct {
			days int
			base string
		}{
			{1, "80.00"},
			{30, "80.00"},
			{31, "120.00"},
			{90, "120.00"},
			{91, "180.00"},
			{365, "180.00"},
		}
		for _, tc := range cases {
			e, err := svc.Estimate(costestimate.EstimateInput{VisaType: "tourist", DurationDays: tc.days})
			require.NoError(t, err)
			assert.Equal(t, tc.base, e.BaseFee.StringFixed(2), "duration %d days", tc.days)
		}
	})

	t.Run("standard quote adds up", func(t *testing.T) {
		e, err := svc.Estimate(costestimate.EstimateInput{VisaType: "tourist", DurationDays: 14})
		require.NoError(t, err)

		assert.Equal(t, "USD", e.Currency)
		assert.Equal(t, "80.00", e.BaseFee.StringFixed(2))
		assert.Equal(t, "0.00", e.ExpressFee.StringFixed(2))
		// Government fee is 10% of base plus express.
		assert.Equal(t, "8.00", e.GovernmentFee.StringFixed(2))
		assert.Equal(t, "25.00", e.InsuranceFee.StringFixed(2))
		assert.Equal(t, "15.00", e.CourierFee.StringFixed(2))
		assert.Equal(t, "128.00", e.Total.StringFixed(2))
	})

	t.Run("express raises the government fee too", func(t *testing.T) {
		e, err := svc.Estimate(costestimate.EstimateInput{VisaType: "tourist", DurationDays: 14, Express: true})
		require.NoError(t, err)

		assert.Equal(t, "100.00", e.ExpressFee.StringFixed(2))
		assert.Equal(t, "18.00", e.GovernmentFee.StringFixed(2))
		assert.Equal(t, "238.00", e.Total.StringFixed(2))
	})

	t.Run("unknown visa type lists the valid ones", func(t *testing.T) {
		_, err := svc.Estimate(costestimate.EstimateInput{VisaType: "diplomatic", DurationDays: 30})
		require.ErrorIs(t, err, costestimate.ErrInvalidVisaType)
		assert.Contains(t, err.Error(), "tourist")
		assert.Contains(t, err.Error(), "medical")
	})
}

func TestVisaTypes(t *testing.T) {
	svc := costestimate.NewService(&config.Config{})
	catalog := svc.VisaTypes()

	assert.Equal(t, "USD", catalog.Currency)
	require.Len(t, catalog.VisaTypes, 7)
	assert.Equal(t, "tourist", catalog.VisaTypes[0].VisaType)
	assert.Equal(t, "medical", catalog.VisaTypes[6].VisaType)
	assert.Equal(t, "80.00", catalog.VisaTypes[0].PriceUpTo30.StringFixed(2))
	assert.Equal(t, "400.00", catalog.VisaTypes[3].PriceOver90.StringFixed(2))
}

func TestPricingFile(t *testing.T) {
	t.Run("partial override keeps the rest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pricing.yaml")
		content := `
currency: EUR
express_fee: 50
base_prices:
  tourist:
    up_to_30_days: 70
    up_to_90_days: 100
    over_90_days: 150
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		svc := costestimate.NewService(&config.Config{PricingFile: path})

		e, err := svc.Estimate(costestimate.EstimateInput{VisaType: "tourist", DurationDays: 20, Express: true})
		require.NoError(t, err)
		assert.Equal(t, "EUR", e.Currency)
		assert.Equal(t, "70.00", e.BaseFee.StringFixed(2))
		assert.Equal(t, "50.00", e.ExpressFee.StringFixed(2))
		assert.Equal(t, "12.00", e.GovernmentFee.StringFixed(2))

		// Types not listed in the file keep their built-in tiers.
		e, err = svc.Estimate(costestimate.EstimateInput{VisaType: "business", DurationDays: 20})
		require.NoError(t, err)
		assert.Equal(t, "150.00", e.BaseFee.StringFixed(2))
	})

	t.Run("unknown type in the file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pricing.yaml")
		content := `
base_prices:
  stowaway:
    up_to_30_days: 1
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := costestimate.LoadPricing(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stowaway")
	})

	t.Run("missing file falls back to the built-in table", func(t *testing.T) {
		svc := costestimate.NewService(&config.Config{PricingFile: "/nonexistent/pricing.yaml"})

		e, err := svc.Estimate(costestimate.EstimateInput{VisaType: "tourist", DurationDays: 14})
		require.NoError(t, err)
		assert.Equal(t, "USD", e.Currency)
		assert.Equal(t, "80.00", e.BaseFee.StringFixed(2))
	})
}
