// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	metrics "github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all marketplace metrics
type Metrics struct {
	metricsInstance metrics.Metrics

	// Zone metrics
	ZonesCreated   metrics.Counter
	ZonesActivated metrics.Counter
	ZonesDeleted   metrics.Counter

	// Campaign metrics
	RequestsSubmitted  metrics.Counter
	RequestsApproved   metrics.Counter
	RequestsRejected   metrics.Counter
	CampaignsCompleted metrics.Counter
	ApprovalsBlocked   metrics.Counter

	// Reward metrics
	AdsCollected   metrics.Counter
	RewardsClaimed metrics.Counter
	PointsAwarded  metrics.Counter

	// Wallet metrics
	SettlementVolume metrics.Counter
	Withdrawals      metrics.CounterVec

	// API metrics
	RequestsProcessed metrics.CounterVec
	LocationUpdates   metrics.Counter

	// Performance metrics
	CollectionScan metrics.Histogram
}

// NewMetrics creates a new metrics instance
func NewMetrics() (*Metrics, error) {
	factory := metrics.NewPrometheusFactory()
	metricsInstance := factory.New("adinci")

	m := &Metrics{
		metricsInstance: metricsInstance,
	}

	m.ZonesCreated = metricsInstance.NewCounter("zones_created_total", "Total number of ad zones created")
	m.ZonesActivated = metricsInstance.NewCounter("zones_activated_total", "Total number of zone activation payments")
	m.ZonesDeleted = metricsInstance.NewCounter("zones_deleted_total", "Total number of ad zones deleted")

	m.RequestsSubmitted = metricsInstance.NewCounter("rental_requests_submitted_total", "Total number of rental requests submitted")
	m.RequestsApproved = metricsInstance.NewCounter("rental_requests_approved_total", "Total number of rental requests approved")
	m.RequestsRejected = metricsInstance.NewCounter("rental_requests_rejected_total", "Total number of rental requests rejected")
	m.CampaignsCompleted = metricsInstance.NewCounter("campaigns_completed_total", "Total number of campaigns that reached their view target")
	m.ApprovalsBlocked = metricsInstance.NewCounter("approvals_blocked_total", "Total number of approvals blocked by insufficient funds")

	m.AdsCollected = metricsInstance.NewCounter("ads_collected_total", "Total number of ads collected on geofence entry")
	m.RewardsClaimed = metricsInstance.NewCounter("rewards_claimed_total", "Total number of watch-and-claim rewards")
	m.PointsAwarded = metricsInstance.NewCounter("points_awarded_total", "Total reward points credited to users")

	m.SettlementVolume = metricsInstance.NewCounter("settlement_volume_usd_total", "Total settled campaign volume in USD")
	m.Withdrawals = metricsInstance.NewCounterVec(
		"withdrawals_total",
		"Total withdrawals by kind",
		[]string{"kind"},
	)

	m.RequestsProcessed = metricsInstance.NewCounterVec(
		"api_requests_processed_total",
		"Total number of API requests processed",
		[]string{"method", "status"},
	)
	m.LocationUpdates = metricsInstance.NewCounter("location_updates_total", "Total location updates received")

	m.CollectionScan = metricsInstance.NewHistogram(
		"collection_scan_duration_seconds",
		"Time to evaluate a location update against all zones",
		prometheus.DefBuckets,
	)

	return m, nil
}

// GetGatherer returns the prometheus gatherer for metrics export
func (m *Metrics) GetGatherer() prometheus.Gatherer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultGatherer
}

// GetRegisterer returns the prometheus registerer
func (m *Metrics) GetRegisterer() prometheus.Registerer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultRegisterer
}
