// Command rcmctl prints KPI reports and validates datasets offline.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MayuriEngAust/RCM/internal/config"
	"github.com/MayuriEngAust/RCM/internal/filter"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/render"
	"github.com/MayuriEngAust/RCM/internal/store"
)

var errInvalidDataset = errors.New("dataset is invalid")

// app carries the settings shared by every subcommand.
type app struct {
	cfg    config.Config
	seed   int64
	in     string
	nowStr string
	now    time.Time
}

// load reads --in when given and generates from --seed otherwise.
func (a *app) load() (models.Dataset, store.Source, error) {
	if a.in != "" {
		ds, err := store.ReadDataset(a.in)
		if err != nil {
			return models.Dataset{}, "", err
		}
		return ds, store.SourceFile, nil
	}
	return generator.New(a.seed, a.now).GenerateAll(a.cfg.GeneratorConfig()), store.SourceGenerator, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "rcmctl",
		Short:         "Offline RCM KPI reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()
			a.cfg = cfg
			if !cmd.Flags().Changed("seed") {
				a.seed = cfg.GeneratorSeed
			}

			a.now = time.Now()
			if a.nowStr != "" {
				if a.now, err = filter.ParseDate(a.nowStr, false); err != nil {
					return err
				}
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.Int64Var(&a.seed, "seed", 42, "generator seed (default from GENERATOR_SEED)")
	pf.StringVar(&a.in, "in", "", `read the dataset from a JSON file ("-" for stdin) instead of generating it`)
	pf.StringVar(&a.nowStr, "now", "", "reference time, RFC3339 or YYYY-MM-DD (default: current time)")

	root.AddCommand(newReportCmd(a), newValidateCmd(a))
	return root
}

func newReportCmd(a *app) *cobra.Command {
	var (
		c        filter.Criteria
		from, to string
		format   string
		top      int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print KPIs, top failing assets, schedule compliance and RCA status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, source, err := a.load()
			if err != nil {
				return err
			}
			if c.From, err = filter.ParseDate(from, false); err != nil {
				return err
			}
			if c.To, err = filter.ParseDate(to, true); err != nil {
				return err
			}
			if !c.HasDateRange() {
				if dFrom, dTo, ok := filter.DefaultRange(data); ok {
					c.From, c.To = dFrom, dTo
				}
			}
			if !c.From.IsZero() && !c.To.IsZero() && c.From.After(c.To) {
				return errors.New("--from must not be after --to")
			}

			report := render.NewReport(data, c, kpi.NewCalculator(a.cfg.KPIOptions()), a.now, string(source), top)
			return render.Write(cmd.OutOrStdout(), render.Format(format), report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.AssetType, "asset-type", filter.All, "asset type")
	f.StringVar(&c.Location, "location", filter.All, "location")
	f.StringVar(&c.Criticality, "criticality", filter.All, "criticality level")
	f.StringVar(&from, "from", "", "start date (default: last year of data)")
	f.StringVar(&to, "to", "", "end date, inclusive")
	f.StringVarP(&format, "format", "f", string(render.FormatTable), "output format: table, json or yaml")
	f.IntVar(&top, "top", 10, "number of assets in the top failures list")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check required fields and cross references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, source, err := a.load()
			if err != nil {
				return err
			}
			res := filter.Validate(data)
			printValidation(cmd.OutOrStdout(), res)
			log.WithFields(log.Fields{
				"source":   source,
				"errors":   len(res.Errors),
				"warnings": len(res.Warnings),
			}).Debug("Validated dataset")
			if !res.Valid {
				return errInvalidDataset
			}
			return nil
		},
	}
}

func printValidation(w io.Writer, res filter.ValidationResult) {
	if res.Valid {
		fmt.Fprintln(w, "dataset is valid")
	} else {
		fmt.Fprintln(w, "dataset is invalid")
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
