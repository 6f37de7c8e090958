package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/landedcost"
)

// Competitiveness compares a unit landed cost with the competitor price.
type Competitiveness string

const (
	Competitive Competitiveness = "Competitive"
	Attention   Competitiveness = "Attention"
)

// Label returns the operator-facing badge.
func (c Competitiveness) Label() string {
	if c == Competitive {
		return "✅ Competitivo"
	}
	return "⚠️ Atenção"
}

// Report bundles the two presentations of a simulation.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Pipeline    Pipeline  `json:"pipeline"`
	Table       CostTable `json:"table"`
}

// Pipeline is the three-stage view Validação → Tração → Escala.
// When Pending is true no stages are present.
type Pipeline struct {
	Pending            bool            `json:"pending"`
	ProductTitle       string          `json:"productTitle,omitempty"`
	CompetitorPriceBRL decimal.Decimal `json:"competitorPriceBrl"`
	ExchangeRate       decimal.Decimal `json:"exchangeRate"`
	RiskAssessment     string          `json:"riskAssessment,omitempty"`
	Stages             []Stage         `json:"stages,omitempty"`
}

// Stage is one pipeline step. Currency values are BRL rounded half-even to cents.
type Stage struct {
	Tier            landedcost.Tier          `json:"tier"`
	Name            string                   `json:"name"`
	Title           string                   `json:"title"`
	LogisticsMode   landedcost.LogisticsMode `json:"logisticsMode"`
	Quantity        int                      `json:"quantity"`
	Product         decimal.Decimal          `json:"product"`
	Logistics       decimal.Decimal          `json:"logistics"`
	Taxes           decimal.Decimal          `json:"taxes"`
	Clearance       decimal.Decimal          `json:"clearance"`
	UnitLanded      decimal.Decimal          `json:"unitLanded"`
	BatchTotal      decimal.Decimal          `json:"batchTotal"`
	UnitProfit      decimal.Decimal          `json:"unitProfit"`
	ROIPercent      decimal.Decimal          `json:"roiPercent"` // one decimal
	Verdict         landedcost.Verdict       `json:"verdict"`
	Competitiveness Competitiveness          `json:"competitiveness"`
	ProfitLabel     string                   `json:"profitLabel"`
}

// CostTable is the per-scenario X-ray of the landed cost.
type CostTable struct {
	Pending bool      `json:"pending"`
	Rows    []CostRow `json:"rows,omitempty"`
}

// CostRow is one scenario of the cost table.
type CostRow struct {
	Scenario   string             `json:"scenario"`
	Quantity   int                `json:"quantity"`
	UnitFobUSD decimal.Decimal    `json:"unitFobUsd"`
	FobBRL     decimal.Decimal    `json:"fobBrl"`
	Logistics  decimal.Decimal    `json:"logistics"`
	Taxes      decimal.Decimal    `json:"taxes"`
	Clearance  decimal.Decimal    `json:"clearance"`
	Landed     decimal.Decimal    `json:"landed"`
	Profit     decimal.Decimal    `json:"profit"`
	ROIPercent decimal.Decimal    `json:"roiPercent"`
	Verdict    landedcost.Verdict `json:"verdict"`
}
