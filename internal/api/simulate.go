package api

import (
	"net/http"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/fxrate"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/landedcost"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/reporting"
)

// SimulateResponse carries the raw scenarios and both presentations.
type SimulateResponse struct {
	Response   *landedcost.MultiScenarioResponse `json:"response"`
	Report     *reporting.Report                 `json:"report"`
	RateSource string                            `json:"rateSource"`
}

// handleSimulate runs the landed-cost calculator. When the request carries
// no exchange rate, a live quote is resolved first; the calculator's
// reference rate applies when the quote falls back.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req landedcost.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		observability.RecordSimulation("invalid")
		s.writeError(w, err)
		return
	}

	source := "request"
	if req.ExchangeRate == nil {
		source = fxrate.SourceFallback
		if s.rates != nil {
			q := s.rates.Resolve(r.Context())
			source = q.Source
			if q.Source != fxrate.SourceFallback {
				rate := q.Rate
				req.ExchangeRate = &rate
			}
		}
	}

	resp, err := s.calculator.Calculate(req)
	if err != nil {
		observability.RecordSimulation("invalid")
		s.writeError(w, err)
		return
	}
	observability.RecordSimulation("ok")

	writeJSON(w, http.StatusOK, SimulateResponse{
		Response:   resp,
		Report:     reporting.BuildReport(resp, s.now()),
		RateSource: source,
	})
}
