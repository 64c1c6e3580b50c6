package kpi

// Options tunes the KPI calculations. Zero or negative values fall back to defaults.
type Options struct {
	// TrendWindowDays is the length of the current and previous trend windows.
	TrendWindowDays int
	// FailureRatePeriodDays is the look-back used by FailureRate in CalculateAll.
	FailureRatePeriodDays int
	// QualityRate and PerformanceRate are the fixed OEE factors, as fractions.
	QualityRate     float64
	PerformanceRate float64
}

const (
	DefaultTrendWindowDays       = 30
	DefaultFailureRatePeriodDays = 30
	DefaultQualityRate           = 0.95
	DefaultPerformanceRate       = 0.90
)

// DefaultOptions returns the standard dashboard settings.
func DefaultOptions() Options {
	return Options{
		TrendWindowDays:       DefaultTrendWindowDays,
		FailureRatePeriodDays: DefaultFailureRatePeriodDays,
		QualityRate:           DefaultQualityRate,
		PerformanceRate:       DefaultPerformanceRate,
	}
}

func (o Options) withDefaults() Options {
	if o.TrendWindowDays <= 0 {
		o.TrendWindowDays = DefaultTrendWindowDays
	}
	if o.FailureRatePeriodDays <= 0 {
		o.FailureRatePeriodDays = DefaultFailureRatePeriodDays
	}
	if o.QualityRate <= 0 {
		o.QualityRate = DefaultQualityRate
	}
	if o.PerformanceRate <= 0 {
		o.PerformanceRate = DefaultPerformanceRate
	}
	return o
}
