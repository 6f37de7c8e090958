package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Simulação de Importação\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	if r.Pipeline.Pending || r.Table.Pending {
		sb.WriteString("_Aguardando análise._\n")
		return sb.String()
	}

	p := r.Pipeline
	sb.WriteString(fmt.Sprintf("**Produto:** %s\n\n", p.ProductTitle))
	sb.WriteString(fmt.Sprintf("**Preço concorrente:** R$ %s | **Câmbio:** %s BRL/USD\n\n",
		p.CompetitorPriceBRL.StringFixed(2), p.ExchangeRate.StringFixed(2)))
	if p.RiskAssessment != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", p.RiskAssessment))
	}

	// Pipeline
	sb.WriteString("## Pipeline\n\n")
	sb.WriteString("| Etapa | Produto | Logística | Impostos | Desembaraço | Custo Unit. | Total Lote | Lucro Unit. | ROI | Status |\n")
	sb.WriteString("|-------|---------|-----------|----------|-------------|-------------|------------|-------------|-----|--------|\n")
	for _, s := range p.Stages {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s%% | %s |\n",
			s.Title,
			s.Product.StringFixed(2),
			s.Logistics.StringFixed(2),
			s.Taxes.StringFixed(2),
			s.Clearance.StringFixed(2),
			s.UnitLanded.StringFixed(2),
			s.BatchTotal.StringFixed(2),
			s.UnitProfit.StringFixed(2),
			s.ROIPercent.StringFixed(1),
			s.Competitiveness.Label(),
		))
	}
	sb.WriteString("\n")

	// Cost X-ray
	sb.WriteString("## Raio-X de Custos\n\n")
	sb.WriteString("| Cenário | Qtd | FOB (US$) | FOB (R$) | Logística | Impostos | Desembaraço | Landed | Veredito |\n")
	sb.WriteString("|---------|-----|-----------|----------|-----------|----------|-------------|--------|----------|\n")
	for _, row := range r.Table.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
			row.Scenario,
			row.Quantity,
			row.UnitFobUSD.StringFixed(2),
			row.FobBRL.StringFixed(2),
			row.Logistics.StringFixed(2),
			row.Taxes.StringFixed(2),
			row.Clearance.StringFixed(2),
			row.Landed.StringFixed(2),
			row.Verdict,
		))
	}

	return sb.String()
}
