package costestimate

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"visa-processing/internal/config"
	"visa-processing/internal/domain"
)

var ErrInvalidVisaType = errors.New("invalid visa type")

type EstimateInput struct {
	VisaType     string `json:"visa_type" validate:"required"`
	DurationDays int    `json:"duration_days" validate:"required,min=1,max=365"`
	Express      bool   `json:"express"`
}

// Estimate is an itemized quote. It is advisory only; the fees an admin
// eventually sends on an application are entered by hand and may differ.
type Estimate struct {
	VisaType      domain.VisaType `json:"visa_type"`
	DurationDays  int             `json:"duration_days"`
	Express       bool            `json:"express"`
	Currency      string          `json:"currency"`
	BaseFee       decimal.Decimal `json:"base_fee"`
	ExpressFee    decimal.Decimal `json:"express_fee"`
	GovernmentFee decimal.Decimal `json:"government_fee"`
	InsuranceFee  decimal.Decimal `json:"insurance_fee"`
	CourierFee    decimal.Decimal `json:"courier_fee"`
	Total         decimal.Decimal `json:"total"`
}

type VisaTypeInfo struct {
	VisaType    string          `json:"visa_type"`
	PriceUpTo30 decimal.Decimal `json:"price_up_to_30_days"`
	PriceUpTo90 decimal.Decimal `json:"price_up_to_90_days"`
	PriceOver90 decimal.Decimal `json:"price_over_90_days"`
}

type Catalog struct {
	Currency       string          `json:"currency"`
	ExpressFee     decimal.Decimal `json:"express_fee"`
	GovernmentRate decimal.Decimal `json:"government_rate"`
	InsuranceFee   decimal.Decimal `json:"insurance_fee"`
	CourierFee     decimal.Decimal `json:"courier_fee"`
	VisaTypes      []VisaTypeInfo  `json:"visa_types"`
}

type Service interface {
	Estimate(input EstimateInput) (*Estimate, error)
	VisaTypes() Catalog
}

type service struct {
	pricing *Pricing
}

func NewService(cfg *config.Config) Service {
	pricing := DefaultPricing()
	if cfg.PricingFile != "" {
		loaded, err := LoadPricing(cfg.PricingFile)
		if err != nil {
			log.Printf("Failed to load pricing file %s: %v, using built-in table", cfg.PricingFile, err)
		} else {
			pricing = loaded
		}
	}
	return &service{pricing: pricing}
}

func (s *service) Estimate(input EstimateInput) (*Estimate, error) {
	visaType := domain.VisaType(input.VisaType)
	tier, ok := s.pricing.BasePrices[visaType]
	if !ok || !visaType.IsValid() {
		return nil, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidVisaType, input.VisaType, strings.Join(domain.ValidVisaTypes(), ", "))
	}

	base := tier.Over90Days
	switch {
	case input.DurationDays <= 30:
		base = tier.UpTo30Days
	case input.DurationDays <= 90:
		base = tier.UpTo90Days
	}

	express := decimal.Zero
	if input.Express {
		express = s.pricing.ExpressFee
	}

	government := base.Add(express).Mul(s.pricing.GovernmentRate).Round(2)

	estimate := &Estimate{
		VisaType:      visaType,
		DurationDays:  input.DurationDays,
		Express:       input.Express,
		Currency:      s.pricing.Currency,
		BaseFee:       base,
		ExpressFee:    express,
		GovernmentFee: government,
		InsuranceFee:  s.pricing.InsuranceFee,
		CourierFee:    s.pricing.CourierFee,
	}
	estimate.Total = base.Add(express).Add(government).Add(estimate.InsuranceFee).Add(estimate.CourierFee)

	return estimate, nil
}

func (s *service) VisaTypes() Catalog {
	catalog := Catalog{
		Currency:       s.pricing.Currency,
		ExpressFee:     s.pricing.ExpressFee,
		GovernmentRate: s.pricing.GovernmentRate,
		InsuranceFee:   s.pricing.InsuranceFee,
		CourierFee:     s.pricing.CourierFee,
	}
	for _, name := range domain.ValidVisaTypes() {
		tier := s.pricing.BasePrices[domain.VisaType(name)]
		catalog.VisaTypes = append(catalog.VisaTypes, VisaTypeInfo{
			VisaType:    name,
			PriceUpTo30: tier.UpTo30Days,
			PriceUpTo90: tier.UpTo90Days,
			PriceOver90: tier.Over90Days,
		})
	}
	return catalog
}
