package costestimate

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"visa-processing/internal/domain"
)

// Tier is the base price of a visa type by requested stay length.
type Tier struct {
	UpTo30Days decimal.Decimal
	UpTo90Days decimal.Decimal
	Over90Days decimal.Decimal
}

// Pricing is the fee schedule the estimator calculates from. All amounts are
// in one currency; the government fee is a fraction of base plus express.
type Pricing struct {
	Currency       string
	BasePrices     map[domain.VisaType]Tier
	ExpressFee     decimal.Decimal
	GovernmentRate decimal.Decimal
	InsuranceFee   decimal.Decimal
	CourierFee     decimal.Decimal
}

func DefaultPricing() *Pricing {
	return &Pricing{
		Currency: "USD",
		BasePrices: map[domain.VisaType]Tier{
			domain.VisaTourist:     {UpTo30Days: decimal.NewFromInt(80), UpTo90Days: decimal.NewFromInt(120), Over90Days: decimal.NewFromInt(180)},
			domain.VisaBusiness:    {UpTo30Days: decimal.NewFromInt(150), UpTo90Days: decimal.NewFromInt(220), Over90Days: decimal.NewFromInt(320)},
			domain.VisaStudent:     {UpTo30Days: decimal.NewFromInt(120), UpTo90Days: decimal.NewFromInt(160), Over90Days: decimal.NewFromInt(200)},
			domain.VisaWork:        {UpTo30Days: decimal.NewFromInt(200), UpTo90Days: decimal.NewFromInt(280), Over90Days: decimal.NewFromInt(400)},
			domain.VisaFamilyVisit: {UpTo30Days: decimal.NewFromInt(90), UpTo90Days: decimal.NewFromInt(130), Over90Days: decimal.NewFromInt(190)},
			domain.VisaTransit:     {UpTo30Days: decimal.NewFromInt(40), UpTo90Days: decimal.NewFromInt(60), Over90Days: decimal.NewFromInt(90)},
			domain.VisaMedical:     {UpTo30Days: decimal.NewFromInt(110), UpTo90Days: decimal.NewFromInt(150), Over90Days: decimal.NewFromInt(220)},
		},
		ExpressFee:     decimal.NewFromInt(100),
		GovernmentRate: decimal.NewFromFloat(0.10),
		InsuranceFee:   decimal.NewFromInt(25),
		CourierFee:     decimal.NewFromInt(15),
	}
}

// pricingFile is the YAML shape of an override file. Absent fields keep
// their built-in values; a visa type listed under base_prices replaces the
// built-in tier for that type.
type pricingFile struct {
	Currency       *string             `yaml:"currency"`
	ExpressFee     *float64            `yaml:"express_fee"`
	GovernmentRate *float64            `yaml:"government_rate"`
	InsuranceFee   *float64            `yaml:"insurance_fee"`
	CourierFee     *float64            `yaml:"courier_fee"`
	BasePrices     map[string]tierFile `yaml:"base_prices"`
}

type tierFile struct {
	UpTo30Days float64 `yaml:"up_to_30_days"`
	UpTo90Days float64 `yaml:"up_to_90_days"`
	Over90Days float64 `yaml:"over_90_days"`
}

func LoadPricing(path string) (*Pricing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file pricingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	pricing := DefaultPricing()
	if file.Currency != nil {
		pricing.Currency = *file.Currency
	}
	if file.ExpressFee != nil {
		pricing.ExpressFee = decimal.NewFromFloat(*file.ExpressFee)
	}
	if file.GovernmentRate != nil {
		pricing.GovernmentRate = decimal.NewFromFloat(*file.GovernmentRate)
	}
	if file.InsuranceFee != nil {
		pricing.InsuranceFee = decimal.NewFromFloat(*file.InsuranceFee)
	}
	if file.CourierFee != nil {
		pricing.CourierFee = decimal.NewFromFloat(*file.CourierFee)
	}

	for name, tier := range file.BasePrices {
		visaType := domain.VisaType(name)
		if !visaType.IsValid() {
			return nil, fmt.Errorf("unknown visa type %q in %s", name, path)
		}
		pricing.BasePrices[visaType] = Tier{
			UpTo30Days: decimal.NewFromFloat(tier.UpTo30Days),
			UpTo90Days: decimal.NewFromFloat(tier.UpTo90Days),
			Over90Days: decimal.NewFromFloat(tier.Over90Days),
		}
	}

	return pricing, nil
}
