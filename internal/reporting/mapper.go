package reporting

import (
	"fmt"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/landedcost"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/money"
)

// BuildReport maps a simulation response into both presentations.
// A nil response yields a pending report.
func BuildReport(resp *landedcost.MultiScenarioResponse, now time.Time) *Report {
	return &Report{
		GeneratedAt: now.UTC(),
		Pipeline:    BuildPipeline(resp),
		Table:       BuildCostTable(resp),
	}
}

// BuildPipeline maps a response to the three-stage pipeline view.
func BuildPipeline(resp *landedcost.MultiScenarioResponse) Pipeline {
	if resp == nil || resp.Scenarios == nil {
		return Pipeline{Pending: true}
	}

	p := Pipeline{
		ProductTitle:       resp.ProductTitle,
		CompetitorPriceBRL: money.Round2(resp.CompetitorPriceBRL),
		ExchangeRate:       money.Round2(resp.ExchangeRate),
		RiskAssessment:     resp.RiskAssessment,
		Stages:             make([]Stage, 0, len(landedcost.Tiers)),
	}

	for _, tier := range landedcost.Tiers {
		r, _ := resp.Scenarios.Get(tier)
		p.Stages = append(p.Stages, buildStage(tier, r, resp.CompetitorPriceBRL))
	}
	return p
}

func buildStage(tier landedcost.Tier, r landedcost.ScenarioResult, competitor float64) Stage {
	b := r.Breakdown

	competitiveness := Attention
	if r.UnitLandedCostBRL < competitor {
		competitiveness = Competitive
	}

	return Stage{
		Tier:            tier,
		Name:            r.ScenarioName,
		Title:           stageTitle(tier, r.Quantity),
		LogisticsMode:   r.LogisticsMode,
		Quantity:        r.Quantity,
		Product:         money.Round2(b.FOB),
		Logistics:       money.Round2(b.Logistics()),
		Taxes:           money.Round2(b.Taxes),
		Clearance:       money.Round2(b.ClearanceFixed),
		UnitLanded:      money.Round2(r.UnitLandedCostBRL),
		BatchTotal:      money.Round2(r.BatchLandedCostBRL()),
		UnitProfit:      money.Round2(r.UnitNetProfitBRL),
		ROIPercent:      money.Round(r.UnitROIPercent, 1),
		Verdict:         r.Verdict,
		Competitiveness: competitiveness,
		ProfitLabel:     profitLabel(tier, r.UnitNetProfitBRL),
	}
}

func stageTitle(tier landedcost.Tier, qty int) string {
	switch tier {
	case landedcost.TierUnitary:
		return fmt.Sprintf("Validação (%d un)", qty)
	case landedcost.TierMOQ:
		return fmt.Sprintf("Lote Teste (%d un)", qty)
	default:
		return fmt.Sprintf("Formal (%d+ un)", qty)
	}
}

// profitLabel names the unit result. A loss on the unitary sample is
// treated as a research cost rather than a failure.
func profitLabel(tier landedcost.Tier, profit float64) string {
	if tier == landedcost.TierUnitary {
		if profit > 0 {
			return "Lucro Confirmado"
		}
		return "Custo de P&D (Prejuízo)"
	}
	if profit > 0 {
		return "Lucro Unitário"
	}
	return "Prejuízo Unitário"
}

// BuildCostTable maps a response to the per-scenario cost X-ray.
func BuildCostTable(resp *landedcost.MultiScenarioResponse) CostTable {
	if resp == nil || resp.Scenarios == nil {
		return CostTable{Pending: true}
	}

	t := CostTable{Rows: make([]CostRow, 0, len(landedcost.Tiers))}
	for _, tier := range landedcost.Tiers {
		r, _ := resp.Scenarios.Get(tier)
		b := r.Breakdown
		t.Rows = append(t.Rows, CostRow{
			Scenario:   r.ScenarioName,
			Quantity:   r.Quantity,
			UnitFobUSD: money.Round2(r.UnitFobUSD),
			FobBRL:     money.Round2(b.FOB),
			Logistics:  money.Round2(b.Logistics()),
			Taxes:      money.Round2(b.Taxes),
			Clearance:  money.Round2(b.ClearanceFixed),
			Landed:     money.Round2(r.UnitLandedCostBRL),
			Profit:     money.Round2(r.UnitNetProfitBRL),
			ROIPercent: money.Round(r.UnitROIPercent, 1),
			Verdict:    r.Verdict,
		})
	}
	return t
}
