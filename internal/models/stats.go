package models

import "time"

// StatMetrics is one day of raw counters for a plan/creative on a
// platform. The stored ctr/cvr/roi columns come from the external sync
// and may be stale; the aggregator recomputes ratios from raw sums.
type StatMetrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	CTR         float64 `json:"ctr"`
	CVR         float64 `json:"cvr"`
	ROI         float64 `json:"roi"`
}

// StatRecord is one row of ingested performance data. Records are
// written by the external sync process; this service only reads them.
type StatRecord struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	PlanID     string      `json:"planId,omitempty"`
	CreativeID string      `json:"creativeId,omitempty"`
	Date       time.Time   `json:"date"`
	Platform   string      `json:"platform"`
	Metrics    StatMetrics `json:"metrics"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// StatsSummary is the aggregated totals block with recomputed ratios.
// Ratios are fixed two-decimal strings so the textual representation is
// exact regardless of binary float rounding.
type StatsSummary struct {
	TotalImpressions int64   `json:"totalImpressions"`
	TotalClicks      int64   `json:"totalClicks"`
	TotalConversions int64   `json:"totalConversions"`
	TotalCost        float64 `json:"totalCost"`
	TotalRevenue     float64 `json:"totalRevenue"`
	CTR              string  `json:"ctr"`
	CVR              string  `json:"cvr"`
	ROI              string  `json:"roi"`
}

// CostTrend is the daily series for the trend chart: parallel slices
// ordered by ascending date string.
type CostTrend struct {
	Dates       []string  `json:"dates"`
	Costs       []float64 `json:"costs"`
	Conversions []int64   `json:"conversions"`
}

// PlatformComparison is the per-platform breakdown: parallel slices in
// stable grouping order.
type PlatformComparison struct {
	Platforms   []string  `json:"platforms"`
	Costs       []float64 `json:"costs"`
	Conversions []int64   `json:"conversions"`
	ROIs        []string  `json:"rois"`
}

// Statistics is the full dashboard statistics payload.
type Statistics struct {
	Summary            StatsSummary       `json:"summary"`
	CostTrend          CostTrend          `json:"costTrend"`
	PlatformComparison PlatformComparison `json:"platformComparison"`
}
