package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/contracts"
	"fleet-tracker/internal/general/jwt"
)

// --- Handler: PATCH /vehicles/{vehicle_id} ---
// Body: the VehicleCommand fields (status, lifecycle, zone_id, trips_allowed, clear_position).

type vehicleResponse struct {
	ID             string     `json:"id"`
	ZoneID         string     `json:"zone_id"`
	Lifecycle      string     `json:"lifecycle"`
	Status         string     `json:"status"`
	Speed          float64    `json:"speed"`
	TripsCompleted int        `json:"trips_completed"`
	TripsAllowed   int        `json:"trips_allowed"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	LastUpdate     *time.Time `json:"last_update"`
}

func (handler *TrackingHTTPHandler) handlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "content type must be application/json", nil)
		return
	}

	var cmd contracts.VehicleCommand
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	cmd.VehicleID = r.PathValue("vehicle_id")

	patch, err := cmd.Patch()
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	v, err := handler.svc.ApplyPatch(ctxWithTimeout, cmd.VehicleID, patch)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "vehicle not found", err)
			return
		}
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to update vehicle", err)
		return
	}

	details := map[string]any{"status": v.Status.String(), "lifecycle": v.Lifecycle.String(), "zone_id": v.ZoneID}
	if claims := jwt.RequireClaims(r); claims != nil {
		details["actor"] = claims.Subject
	}
	handler.logger.Info(ctxWithTimeout, "vehicle_patched", "Vehicle updated over HTTP", details)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, toVehicleResponse(v))
}

func toVehicleResponse(v vehicle.Vehicle) vehicleResponse {
	out := vehicleResponse{
		ID:             v.ID,
		ZoneID:         v.ZoneID,
		Lifecycle:      v.Lifecycle.String(),
		Status:         v.Status.String(),
		Speed:          v.SpeedKmh,
		TripsCompleted: v.TripsCompleted,
		TripsAllowed:   v.TripsAllowed,
	}
	if v.Position != nil {
		lat, lng := v.Position.Latitude, v.Position.Longitude
		out.Latitude, out.Longitude = &lat, &lng
	}
	if !v.LastUpdate.IsZero() {
		ts := v.LastUpdate
		out.LastUpdate = &ts
	}
	return out
}
