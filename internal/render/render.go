// Package render writes the offline KPI report as a text table, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/MayuriEngAust/RCM/internal/analysis"
	"github.com/MayuriEngAust/RCM/internal/filter"
	"github.com/MayuriEngAust/RCM/internal/format"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/models"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Report is everything printed by the report command.
type Report struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Source      string                      `json:"source"`
	Criteria    filter.Criteria             `json:"criteria"`
	Counts      models.DatasetCounts        `json:"counts"`
	KPIs        kpi.KPIs                    `json:"kpis"`
	TopAssets   []analysis.AssetOverviewRow `json:"top_assets"`
	Compliance  analysis.Compliance         `json:"schedule_compliance"`
	RCA         analysis.RCASummary         `json:"rca"`
}

// NewReport filters data by c and computes the report as of now.
func NewReport(data models.Dataset, c filter.Criteria, calc *kpi.Calculator, now time.Time, source string, top int) Report {
	d := filter.Apply(data, c)
	return Report{
		GeneratedAt: now,
		Source:      source,
		Criteria:    c,
		Counts:      d.Counts(),
		KPIs:        calc.CalculateAll(d, now),
		TopAssets:   analysis.TopAssetsByFailures(analysis.AssetOverview(d), top),
		Compliance:  analysis.ScheduleCompliance(d.WorkOrders),
		RCA:         analysis.SummarizeRCA(d.Failures),
	}
}

// Write encodes r in the requested format.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatTable, "":
		return Table(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML:
		return YAML(w, r)
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", f)
	}
}

// JSON writes r as indented JSON.
func JSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAML writes r with the same keys and field order as JSON.
func YAML(w io.Writer, r Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("convert report: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles inherited from the JSON source.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Table writes r as aligned text for a terminal.
func Table(w io.Writer, r Report) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	k := r.KPIs

	fmt.Fprintf(tw, "RCM KPI report\t%s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Source\t%s\n", r.Source)
	fmt.Fprintf(tw, "Filter\t%s\n", describe(r.Criteria))
	fmt.Fprintf(tw, "Records\t%s\n", p.Sprintf("%d assets, %d failures, %d work orders, %d costs",
		r.Counts.Assets, r.Counts.Failures, r.Counts.WorkOrders, r.Counts.MaintenanceCosts))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "KPI\tVALUE\tCHANGE")
	fmt.Fprintf(tw, "MTBF\t%.1f days\t%s\n", k.MTBF, format.Change(k.MTBFChange))
	fmt.Fprintf(tw, "MTTR\t%s\t%s\n", format.Duration(k.MTTR), format.Change(k.MTTRChange))
	fmt.Fprintf(tw, "OEE\t%s\t%s\n", format.Percentage(k.OEE), format.Change(k.OEEChange))
	fmt.Fprintf(tw, "Maintenance cost (month)\t%s\t%s\n", format.Currency(k.TotalCost), format.Change(k.CostChange))
	fmt.Fprintf(tw, "Utilization\t%s\t%d of %d assets active\n", format.Percentage(k.Utilization), k.ActiveAssets, k.TotalAssets)
	fmt.Fprintf(tw, "Failure rate\t%.2f per asset\t%d failures\n", k.FailureRate, k.TotalFailures)
	fmt.Fprintf(tw, "Schedule compliance\t%s\t%d of %d on time\n", format.Percentage(r.Compliance.CompliancePct), r.Compliance.OnTime, r.Compliance.Completed)
	fmt.Fprintf(tw, "Open investigations\t%d\t%d completed\n", r.RCA.Open+r.RCA.InProgress, r.RCA.Completed)

	if len(k.CriticalityDistribution) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "CRITICALITY\tSHARE\t")
		levels := make([]string, 0, len(k.CriticalityDistribution))
		for level := range k.CriticalityDistribution {
			levels = append(levels, string(level))
		}
		sort.Strings(levels)
		for _, level := range levels {
			fmt.Fprintf(tw, "%s\t%s\t\n", level, format.Percentage(k.CriticalityDistribution[models.CriticalityLevel(level)]))
		}
	}

	if len(r.TopAssets) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "ASSET\tNAME\tTYPE\tFAILURES\tDOWNTIME\tREPAIR COST")
		for _, a := range r.TopAssets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", a.AssetID, a.AssetName, a.AssetType,
				a.TotalFailures, format.Duration(a.TotalDowntime), p.Sprintf("$%.0f", a.TotalRepairCost))
		}
	}
	return tw.Flush()
}

func describe(c filter.Criteria) string {
	var parts []string
	add := func(name, v string) {
		if v != "" && v != filter.All {
			parts = append(parts, name+"="+v)
		}
	}
	add("asset_type", c.AssetType)
	add("location", c.Location)
	add("criticality", c.Criticality)
	if !c.From.IsZero() {
		parts = append(parts, "from="+c.From.Format(time.DateOnly))
	}
	if !c.To.IsZero() {
		parts = append(parts, "to="+c.To.Format(time.DateOnly))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
