package metrics

import "time"

// IncrementAssignmentAccepted counts a successful accept
func (m *Metrics) IncrementAssignmentAccepted() {
	m.safeExecute("IncrementAssignmentAccepted", func() {
		m.AssignmentsAcceptedTotal.Inc()
	})
}

// IncrementAssignmentRejected counts an accept refused for reason (error code)
func (m *Metrics) IncrementAssignmentRejected(reason string) {
	m.safeExecute("IncrementAssignmentRejected", func() {
		m.AssignmentsRejectedTotal.WithLabelValues(reason).Inc()
	})
}

func (m *Metrics) IncrementAssignmentCancelled() {
	m.safeExecute("IncrementAssignmentCancelled", func() {
		m.AssignmentsCancelledTotal.Inc()
	})
}

// IncrementSubmissionCreated counts a new version; kind is "initial" or "resubmission"
func (m *Metrics) IncrementSubmissionCreated(kind string) {
	m.safeExecute("IncrementSubmissionCreated", func() {
		m.SubmissionsCreatedTotal.WithLabelValues(kind).Inc()
	})
}

func (m *Metrics) IncrementSubmissionReviewed(decision string) {
	m.safeExecute("IncrementSubmissionReviewed", func() {
		m.SubmissionReviewsTotal.WithLabelValues(decision).Inc()
	})
}

func (m *Metrics) IncrementFeedbackCreated() {
	m.safeExecute("IncrementFeedbackCreated", func() {
		m.FeedbackCreatedTotal.Inc()
	})
}

func (m *Metrics) IncrementFeedbackResolved(outcome string) {
	m.safeExecute("IncrementFeedbackResolved", func() {
		m.FeedbackResolvedTotal.WithLabelValues(outcome).Inc()
	})
}

func (m *Metrics) IncrementSettlementRecorded(settlementType string) {
	m.safeExecute("IncrementSettlementRecorded", func() {
		m.SettlementsRecordedTotal.WithLabelValues(settlementType).Inc()
	})
}

// RecordSettlementRound records the outcome counts and duration of one round
func (m *Metrics) RecordSettlementRound(completed, failed int, duration time.Duration) {
	m.safeExecute("RecordSettlementRound", func() {
		m.SettlementsProcessedTotal.WithLabelValues("COMPLETED").Add(float64(completed))
		m.SettlementsProcessedTotal.WithLabelValues("FAILED").Add(float64(failed))
		m.SettlementRoundDuration.Observe(duration.Seconds())
	})
}

// SetOpenRequests sets the open requests gauge
func (m *Metrics) SetOpenRequests(count int64) {
	m.safeExecute("SetOpenRequests", func() {
		m.OpenRequests.Set(float64(count))
	})
}

// SetPendingSettlements sets the pending settlements gauge
func (m *Metrics) SetPendingSettlements(count int64) {
	m.safeExecute("SetPendingSettlements", func() {
		m.PendingSettlements.Set(float64(count))
	})
}
