// Package main runs a landed-cost simulation from the command line and prints
// the three-stage report.
//
// Usage:
//
//	simulate --weight 0.5 --source-price-usd 5 --competitor-price-brl 150 [--live-rate] [--format markdown|csv|json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/config"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/fxrate"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/landedcost"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/reporting"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "simulate",
		Usage: "Landed-cost simulation for importing a product into Brazil",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "source-price-usd", Usage: "Unit price at the source, in USD"},
			&cli.Float64Flag{Name: "competitor-price-brl", Usage: "Local competitor price, in BRL"},
			&cli.Float64Flag{Name: "icms", Value: 0.17, Usage: "ICMS rate within [0, 1]"},
			&cli.Float64Flag{Name: "weight", Aliases: []string{"w"}, Usage: "Package weight in kg", Required: true},
			&cli.Float64Flag{Name: "width", Usage: "Package width in cm"},
			&cli.Float64Flag{Name: "height", Usage: "Package height in cm"},
			&cli.Float64Flag{Name: "length", Usage: "Package length in cm"},
			&cli.StringFlag{Name: "state", Value: "SP", Usage: "Destination state"},
			&cli.IntFlag{Name: "scale-qty", Usage: "Units in the Escala scenario"},
			&cli.Float64Flag{Name: "exchange-rate", Usage: "USD to BRL rate; overrides --live-rate"},
			&cli.BoolFlag{Name: "live-rate", Usage: "Resolve the current USD-BRL quote"},
			&cli.StringFlag{
				Name:    "quote-url",
				Usage:   "Exchange-rate quote endpoint",
				EnvVars: []string{"FX_QUOTE_URL"},
			},
			&cli.StringFlag{Name: "title", Usage: "Product title"},
			&cli.StringFlag{Name: "url", Usage: "Product URL"},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "markdown",
				Usage:   "Output format (markdown, csv, json)",
			},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to file instead of stdout"},
		},
		Action: runSimulate,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSimulate(c *cli.Context) error {
	req := landedcost.AnalysisRequest{
		ICMSRate: c.Float64("icms"),
		Logistics: landedcost.Logistics{
			WeightKg:         c.Float64("weight"),
			WidthCm:          c.Float64("width"),
			HeightCm:         c.Float64("height"),
			LengthCm:         c.Float64("length"),
			DestinationState: c.String("state"),
		},
		ProductTitle: c.String("title"),
		ProductURL:   c.String("url"),
	}
	if c.IsSet("source-price-usd") {
		v := c.Float64("source-price-usd")
		req.SourcePriceUSD = &v
	}
	if c.IsSet("competitor-price-brl") {
		v := c.Float64("competitor-price-brl")
		req.CompetitorPriceBRL = &v
	}
	if c.IsSet("scale-qty") {
		v := c.Int("scale-qty")
		req.TargetScaleQty = &v
	}

	switch {
	case c.IsSet("exchange-rate"):
		v := c.Float64("exchange-rate")
		req.ExchangeRate = &v
	case c.Bool("live-rate"):
		q := resolveRate(c.Context, c.String("quote-url"))
		fmt.Fprintf(os.Stderr, "Exchange rate %.4f (%s)\n", q.Rate, q.Source)
		if q.Source != fxrate.SourceFallback {
			req.ExchangeRate = &q.Rate
		}
	}

	resp, err := landedcost.Calculate(req)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return render(out, c.String("format"), resp, time.Now())
}

func resolveRate(ctx context.Context, quoteURL string) fxrate.Quote {
	p := fxrate.NewProvider(fxrate.Options{
		Client:   httpx.NewClient(httpx.WithMaxRetries(1)),
		QuoteURL: quoteURL,
		Logger:   log.New(os.Stderr, "[fxrate] ", log.LstdFlags),
	})
	return p.Resolve(ctx)
}

func render(w io.Writer, format string, resp *landedcost.MultiScenarioResponse, now time.Time) error {
	switch format {
	case "markdown", "md":
		_, err := io.WriteString(w, reporting.RenderMarkdown(reporting.BuildReport(resp, now)))
		return err
	case "csv":
		_, err := io.WriteString(w, reporting.RenderCSV(reporting.BuildCostTable(resp)))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Response *landedcost.MultiScenarioResponse `json:"response"`
			Report   *reporting.Report                 `json:"report"`
		}{resp, reporting.BuildReport(resp, now)})
	default:
		return fmt.Errorf("unknown format %q (markdown, csv, json)", format)
	}
}
