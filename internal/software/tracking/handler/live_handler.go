package handler

import (
	"context"
	"net/http"
	"time"
)

// --- Handler: GET /vehicles/live ---

func (handler *TrackingHTTPHandler) handleLive(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update, err := handler.svc.LiveSnapshot(ctxWithTimeout)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to read live positions", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, update)
}
