// Package landedcost computes the per-unit landed cost of importing a product
// into Brazil under three purchase scenarios and compares it with a competitor
// retail price.
package landedcost

// LogisticsMode is the international shipping mode of a scenario.
type LogisticsMode string

const (
	ModeCourierAir LogisticsMode = "CourierAir"
	ModeSeaLCL     LogisticsMode = "SeaLCL"
)

// Verdict tells whether a scenario yields a positive unit profit.
type Verdict string

const (
	VerdictViable    Verdict = "Viable"
	VerdictNotViable Verdict = "NotViable"
)

// Tier identifies one of the three purchase scenarios.
type Tier string

const (
	TierUnitary Tier = "unitary"
	TierMOQ     Tier = "moq"
	TierScale   Tier = "scale"
)

// Tiers lists the scenarios in pipeline order.
var Tiers = []Tier{TierUnitary, TierMOQ, TierScale}

// DisplayName returns the operator-facing stage name of a tier.
func (t Tier) DisplayName() string {
	switch t {
	case TierUnitary:
		return "Validação"
	case TierMOQ:
		return "Tração"
	case TierScale:
		return "Escala"
	}
	return string(t)
}

// Logistics describes the shipped package.
type Logistics struct {
	WeightKg         float64 `json:"weightKg"`
	WidthCm          float64 `json:"widthCm"`
	HeightCm         float64 `json:"heightCm"`
	LengthCm         float64 `json:"lengthCm"`
	DestinationState string  `json:"destinationState"`
}

// AnalysisRequest is the input of a simulation. Pointer fields are optional
// and fall back to Params defaults when nil.
type AnalysisRequest struct {
	SourcePriceUSD     *float64  `json:"sourcePriceUsd,omitempty"`
	CompetitorPriceBRL *float64  `json:"competitorPriceBrl,omitempty"`
	ICMSRate           float64   `json:"icmsRate"`
	Logistics          Logistics `json:"logistics"`
	TargetScaleQty     *int      `json:"targetScaleQty,omitempty"`
	ExchangeRate       *float64  `json:"exchangeRate,omitempty"`
	ProductURL         string    `json:"productUrl,omitempty"`
	ProductTitle       string    `json:"productTitle,omitempty"`
}

// Breakdown is the per-unit cost composition in BRL.
type Breakdown struct {
	FOB            float64 `json:"fob"`
	FreightInt     float64 `json:"freightInt"`
	FreightDom     float64 `json:"freightDom"`
	Taxes          float64 `json:"taxes"`
	ClearanceFixed float64 `json:"clearanceFixed"`
}

// Total returns the landed cost, summed in a fixed order.
func (b Breakdown) Total() float64 {
	return b.FOB + b.FreightInt + b.FreightDom + b.Taxes + b.ClearanceFixed
}

// Logistics returns international plus domestic freight.
func (b Breakdown) Logistics() float64 {
	return b.FreightInt + b.FreightDom
}

// ScenarioResult is the outcome of one tier.
type ScenarioResult struct {
	ScenarioName      string        `json:"scenarioName"`
	LogisticsMode     LogisticsMode `json:"logisticsMode"`
	Quantity          int           `json:"quantity"`
	UnitFobUSD        float64       `json:"unitFobUsd"`
	TotalBatchUSD     float64       `json:"totalBatchUsd"`
	UnitLandedCostBRL float64       `json:"unitLandedCostBrl"`
	UnitNetProfitBRL  float64       `json:"unitNetProfitBrl"`
	UnitROIPercent    float64       `json:"unitRoiPercent"`
	Verdict           Verdict       `json:"verdict"`
	Breakdown         Breakdown     `json:"breakdown"`
}

// BatchLandedCostBRL returns the landed cost of the whole batch.
func (r ScenarioResult) BatchLandedCostBRL() float64 {
	return r.UnitLandedCostBRL * float64(r.Quantity)
}

// Scenarios holds exactly one result per tier.
type Scenarios struct {
	Unitary ScenarioResult `json:"unitary"`
	MOQ     ScenarioResult `json:"moq"`
	Scale   ScenarioResult `json:"scale"`
}

// Get returns the result of a tier.
func (s *Scenarios) Get(t Tier) (ScenarioResult, bool) {
	switch t {
	case TierUnitary:
		return s.Unitary, true
	case TierMOQ:
		return s.MOQ, true
	case TierScale:
		return s.Scale, true
	}
	return ScenarioResult{}, false
}

// MultiScenarioResponse is the result of a simulation. Scenarios is nil while
// a response is pending.
type MultiScenarioResponse struct {
	ProductTitle       string     `json:"productTitle"`
	CompetitorPriceBRL float64    `json:"competitorPriceBrl"`
	ExchangeRate       float64    `json:"exchangeRate"`
	RiskAssessment     string     `json:"riskAssessment"`
	Scenarios          *Scenarios `json:"scenarios,omitempty"`
}
