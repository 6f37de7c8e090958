package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the cost table as CSV string. A pending table renders
// the header only.
func RenderCSV(t CostTable) string {
	var sb strings.Builder

	// Header
	sb.WriteString("scenario,quantity,unit_fob_usd,fob_brl,logistics_brl,taxes_brl,")
	sb.WriteString("clearance_brl,landed_brl,profit_brl,roi_percent,verdict\n")

	// Rows
	for _, r := range t.Rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			r.Scenario,
			r.Quantity,
			r.UnitFobUSD.StringFixed(2),
			r.FobBRL.StringFixed(2),
			r.Logistics.StringFixed(2),
			r.Taxes.StringFixed(2),
			r.Clearance.StringFixed(2),
			r.Landed.StringFixed(2),
			r.Profit.StringFixed(2),
			r.ROIPercent.StringFixed(1),
			r.Verdict,
		))
	}

	return sb.String()
}
