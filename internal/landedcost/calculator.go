package landedcost

import (
	"errors"
	"fmt"
	"math"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
)

// Validation errors. All wrap domain.ErrInvalidInput.
var (
	ErrInvalidPrice        = fmt.Errorf("%w: price must be a finite non-negative number", domain.ErrInvalidInput)
	ErrInvalidWeight       = fmt.Errorf("%w: weightKg must be greater than zero", domain.ErrInvalidInput)
	ErrInvalidDimension    = fmt.Errorf("%w: dimensions must be finite non-negative numbers", domain.ErrInvalidInput)
	ErrInvalidICMS         = fmt.Errorf("%w: icmsRate must be within [0, 1]", domain.ErrInvalidInput)
	ErrInvalidQuantity     = fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	ErrInvalidExchangeRate = fmt.Errorf("%w: exchangeRate must be a finite positive number", domain.ErrInvalidInput)
	ErrOutOfRange          = fmt.Errorf("%w: inputs produce a landed cost that is zero or not finite", domain.ErrInvalidInput)
)

// Calculator computes scenario results from a fee schedule.
// It performs no I/O and is safe for concurrent use.
type Calculator struct {
	params Params
}

// NewCalculator creates a calculator with the given fee schedule.
func NewCalculator(params Params) *Calculator {
	return &Calculator{params: params}
}

// Params returns the calculator's fee schedule.
func (c *Calculator) Params() Params {
	return c.params
}

// Calculate runs the three scenarios with the default fee schedule.
func Calculate(req AnalysisRequest) (*MultiScenarioResponse, error) {
	return NewCalculator(DefaultParams()).Calculate(req)
}

// resolved is a validated request with defaults applied.
type resolved struct {
	sourceUSD     float64
	competitorBRL float64
	weightKg      float64
	scaleQty      int
	rate          float64
	rateSupplied  bool
	title         string
}

// Calculate validates req and computes the unitary, MOQ and scale scenarios.
func (c *Calculator) Calculate(req AnalysisRequest) (*MultiScenarioResponse, error) {
	in, err := c.resolve(req)
	if err != nil {
		return nil, err
	}

	scenarios := &Scenarios{
		Unitary: c.scenario(in, TierUnitary, 1, ModeCourierAir, 0),
		MOQ:     c.scenario(in, TierMOQ, c.params.MOQQuantity, ModeCourierAir, c.params.MOQDiscount),
		Scale:   c.scenario(in, TierScale, in.scaleQty, ModeSeaLCL, c.params.ScaleDiscount),
	}
	for _, t := range Tiers {
		r, _ := scenarios.Get(t)
		if !representable(r) {
			return nil, fmt.Errorf("%s: %w", t, ErrOutOfRange)
		}
	}

	return &MultiScenarioResponse{
		ProductTitle:       in.title,
		CompetitorPriceBRL: in.competitorBRL,
		ExchangeRate:       in.rate,
		RiskAssessment:     assessRisk(in, scenarios),
		Scenarios:          scenarios,
	}, nil
}

func (c *Calculator) resolve(req AnalysisRequest) (resolved, error) {
	in := resolved{
		sourceUSD:     c.params.DefaultSourcePriceUSD,
		competitorBRL: c.params.DefaultCompetitorPriceBRL,
		weightKg:      req.Logistics.WeightKg,
		scaleQty:      c.params.DefaultScaleQuantity,
		rate:          c.params.ExchangeRate,
		title:         c.params.DefaultProductTitle,
	}

	if req.SourcePriceUSD != nil {
		if !nonNegative(*req.SourcePriceUSD) {
			return resolved{}, fmt.Errorf("sourcePriceUsd: %w", ErrInvalidPrice)
		}
		in.sourceUSD = *req.SourcePriceUSD
	}
	if req.CompetitorPriceBRL != nil {
		if !nonNegative(*req.CompetitorPriceBRL) {
			return resolved{}, fmt.Errorf("competitorPriceBrl: %w", ErrInvalidPrice)
		}
		in.competitorBRL = *req.CompetitorPriceBRL
	}
	if math.IsNaN(req.ICMSRate) || req.ICMSRate < 0 || req.ICMSRate > 1 {
		return resolved{}, ErrInvalidICMS
	}
	if math.IsNaN(in.weightKg) || math.IsInf(in.weightKg, 0) || in.weightKg <= 0 {
		return resolved{}, ErrInvalidWeight
	}
	for _, d := range []float64{req.Logistics.WidthCm, req.Logistics.HeightCm, req.Logistics.LengthCm} {
		if !nonNegative(d) {
			return resolved{}, ErrInvalidDimension
		}
	}
	if req.TargetScaleQty != nil {
		if *req.TargetScaleQty < 1 {
			return resolved{}, fmt.Errorf("targetScaleQty: %w", ErrInvalidQuantity)
		}
		in.scaleQty = *req.TargetScaleQty
	}
	if req.ExchangeRate != nil {
		r := *req.ExchangeRate
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return resolved{}, ErrInvalidExchangeRate
		}
		in.rate = r
		in.rateSupplied = true
	}
	if req.ProductTitle != "" {
		in.title = req.ProductTitle
	}

	// Divisors and rate may come from a custom schedule.
	if c.params.MOQQuantity < 1 {
		return resolved{}, fmt.Errorf("moq: %w", ErrInvalidQuantity)
	}
	if in.scaleQty < 1 {
		return resolved{}, fmt.Errorf("scale: %w", ErrInvalidQuantity)
	}
	if !(in.rate > 0) || math.IsInf(in.rate, 0) {
		return resolved{}, ErrInvalidExchangeRate
	}

	return in, nil
}

func (c *Calculator) scenario(in resolved, tier Tier, qty int, mode LogisticsMode, discount float64) ScenarioResult {
	unitFobUSD := in.sourceUSD * (1 - discount)
	freightUSD := in.weightKg * c.params.freightRate(mode)

	fobBRL := unitFobUSD * in.rate
	freightBRL := freightUSD * in.rate

	b := Breakdown{
		FOB:            fobBRL,
		FreightInt:     freightBRL,
		FreightDom:     c.params.DomesticFreightBRL,
		Taxes:          c.params.ImportTaxRate * (fobBRL + freightBRL),
		ClearanceFixed: c.params.clearancePool(mode) / float64(qty),
	}

	landed := b.Total()
	profit := in.competitorBRL - landed

	verdict := VerdictNotViable
	if profit > 0 {
		verdict = VerdictViable
	}

	return ScenarioResult{
		ScenarioName:      tier.DisplayName(),
		LogisticsMode:     mode,
		Quantity:          qty,
		UnitFobUSD:        unitFobUSD,
		TotalBatchUSD:     unitFobUSD * float64(qty),
		UnitLandedCostBRL: landed,
		UnitNetProfitBRL:  profit,
		UnitROIPercent:    profit / landed * 100,
		Verdict:           verdict,
		Breakdown:         b,
	}
}

func assessRisk(in resolved, s *Scenarios) string {
	rate := "câmbio de referência"
	if in.rateSupplied {
		rate = "câmbio informado"
	}

	for _, t := range Tiers {
		r, _ := s.Get(t)
		if r.Verdict == VerdictViable {
			return fmt.Sprintf("Estimativa com %s %.2f BRL/USD. Primeiro cenário viável: %s (%d un, ROI %.1f%%).",
				rate, in.rate, r.ScenarioName, r.Quantity, r.UnitROIPercent)
		}
	}
	return fmt.Sprintf("Estimativa com %s %.2f BRL/USD. Nenhum cenário viável ao preço do concorrente.", rate, in.rate)
}

// representable reports whether every number in r is finite and the ROI
// divisor is non-zero.
func representable(r ScenarioResult) bool {
	if r.UnitLandedCostBRL == 0 {
		return false
	}
	b := r.Breakdown
	for _, v := range []float64{
		r.UnitFobUSD, r.TotalBatchUSD, r.UnitLandedCostBRL, r.UnitNetProfitBRL, r.UnitROIPercent,
		b.FOB, b.FreightInt, b.FreightDom, b.Taxes, b.ClearanceFixed,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// IsValidationError reports whether err came from request validation.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput)
}
