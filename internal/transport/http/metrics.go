package httptransport

import "expvar"

var (
	metricActionTotal  = expvar.NewInt("action_total")
	metricActionErrors = expvar.NewInt("action_errors_total")

	metricSessionsQueryTotal = expvar.NewInt("sessions_query_total")
)
