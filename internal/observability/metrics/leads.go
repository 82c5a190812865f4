package metrics

import "github.com/prometheus/client_golang/prometheus"

// Import row outcomes.
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// LeadMetrics counts import rows, journal appends and bulk chunks. A nil
// *LeadMetrics is valid and records nothing.
type LeadMetrics struct {
	importRows     *prometheus.CounterVec
	journalAppends *prometheus.CounterVec
	bulkCommitted  *prometheus.CounterVec
	bulkFailures   *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_import_rows_total",
			Help: "CSV rows processed by the importer, by outcome",
		}, []string{"outcome"}),
		journalAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_entries_appended_total",
			Help: "Journal entries appended to leads, by entry type",
		}, []string{"type"}),
		bulkCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_chunks_committed_total",
			Help: "Bulk operation chunks committed",
		}, []string{"operation"}),
		bulkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_chunk_failures_total",
			Help: "Bulk operation chunks that failed to commit",
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.importRows, m.journalAppends, m.bulkCommitted, m.bulkFailures)
	return m
}

func (m *LeadMetrics) ObserveImportRow(outcome string) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveJournalAppend(entryType string) {
	if m == nil {
		return
	}
	m.journalAppends.WithLabelValues(entryType).Inc()
}

func (m *LeadMetrics) ObserveBulkChunk(operation string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.bulkFailures.WithLabelValues(operation).Inc()
		return
	}
	m.bulkCommitted.WithLabelValues(operation).Inc()
}
