package handler

import (
	"net/http"
)

// ----- Handler: GET /tracking/health -----

// handleHealth reports liveness, the subscriber count and the RabbitMQ state.
// A broker outage does not fail the check: broadcasting keeps working without it.
func (handler *TrackingHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		Status      string `json:"status"`
		Subscribers int    `json:"subscribers"`
		Broker      string `json:"broker"`
	}
	handler.jsonResponse(r.Context(), w, http.StatusOK, resp{
		Status:      "ok",
		Subscribers: handler.svc.Subscribers(),
		Broker:      handler.svc.BrokerStatus(),
	})
}
