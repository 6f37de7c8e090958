package landedcost

// Params holds the fee schedule used by the calculator.
// All monetary values are per unit unless stated otherwise.
type Params struct {
	// ExchangeRate is the BRL/USD rate used when the request carries none.
	ExchangeRate float64

	// International freight per kg, in USD.
	AirFreightUSDPerKg float64
	SeaFreightUSDPerKg float64

	// ImportTaxRate is applied to (FOB + international freight) in BRL.
	ImportTaxRate float64

	// Fixed clearance pools in BRL, divided by batch quantity.
	AirClearanceFeeBRL float64
	SeaClearanceFeeBRL float64

	// DomesticFreightBRL is the flat last-mile cost per unit.
	DomesticFreightBRL float64

	MOQQuantity   int
	MOQDiscount   float64
	ScaleDiscount float64

	// Defaults for optional request fields.
	DefaultSourcePriceUSD     float64
	DefaultCompetitorPriceBRL float64
	DefaultScaleQuantity      int
	DefaultDestinationState   string
	DefaultProductTitle       string
}

// DefaultParams returns the reference fee schedule.
func DefaultParams() Params {
	return Params{
		ExchangeRate:              6.10,
		AirFreightUSDPerKg:        12.0,
		SeaFreightUSDPerKg:        200.0 / 500.0,
		ImportTaxRate:             0.60,
		AirClearanceFeeBRL:        20.0,
		SeaClearanceFeeBRL:        1500.0,
		DomesticFreightBRL:        15.0,
		MOQQuantity:               50,
		MOQDiscount:               0.05,
		ScaleDiscount:             0.15,
		DefaultSourcePriceUSD:     5.0,
		DefaultCompetitorPriceBRL: 150.0,
		DefaultScaleQuantity:      500,
		DefaultDestinationState:   "SP",
		DefaultProductTitle:       "Produto Simulado",
	}
}

// freightRate returns the USD/kg rate for a logistics mode.
func (p Params) freightRate(mode LogisticsMode) float64 {
	if mode == ModeSeaLCL {
		return p.SeaFreightUSDPerKg
	}
	return p.AirFreightUSDPerKg
}

// clearancePool returns the fixed clearance pool in BRL for a logistics mode.
func (p Params) clearancePool(mode LogisticsMode) float64 {
	if mode == ModeSeaLCL {
		return p.SeaClearanceFeeBRL
	}
	return p.AirClearanceFeeBRL
}
