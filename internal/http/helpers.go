package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wdkapps/fillup/internal/core"
)

// vehiclePayload is the wire shape of a vehicle.
type vehiclePayload struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TankCapacity float32 `json:"tank_capacity"`
}

// mileagePayload is the wire shape of a closed mileage segment.
type mileagePayload struct {
	StartOdometer int     `json:"start_odometer"`
	EndOdometer   int     `json:"end_odometer"`
	FuelUsed      float32 `json:"fuel_used"`
	Distance      int     `json:"distance"`
	Mileage       float32 `json:"mileage"`
	Label         string  `json:"label"`
}

// recordPayload is the wire shape of a refuel record.
type recordPayload struct {
	ID        int64           `json:"id"`
	VehicleID int64           `json:"vehicle_id"`
	Time      time.Time       `json:"time"`
	Odometer  int             `json:"odometer"`
	Volume    float32         `json:"volume"`
	Cost      float64         `json:"cost"`
	Price     float64         `json:"price"`
	FullTank  bool            `json:"full_tank"`
	Hidden    bool            `json:"hidden"`
	Notes     string          `json:"notes"`
	Mileage   *mileagePayload `json:"mileage,omitempty"`
}

func toVehiclePayload(v core.Vehicle) vehiclePayload {
	return vehiclePayload{ID: v.ID, Name: v.Name, TankCapacity: v.TankCapacity}
}

func toRecordPayload(r *core.RefuelRecord, units core.UnitSystem) recordPayload {
	p := recordPayload{
		ID:        r.ID,
		VehicleID: r.VehicleID,
		Time:      r.Time,
		Odometer:  r.Odometer,
		Volume:    r.Volume,
		Cost:      r.Cost,
		Price:     r.Price(),
		FullTank:  r.FullTank,
		Hidden:    r.HideCalc,
		Notes:     r.Notes,
	}
	if r.Calc != nil {
		p.Mileage = &mileagePayload{
			StartOdometer: r.Calc.StartOdometer,
			EndOdometer:   r.Calc.EndOdometer,
			FuelUsed:      r.Calc.FuelUsed,
			Distance:      r.Calc.Distance(),
			Mileage:       r.Calc.Mileage(),
			Label:         units.EfficiencyLabel(),
		}
	}
	return p
}

func (p recordPayload) toRecord(vehicleID int64) core.RefuelRecord {
	return core.RefuelRecord{
		ID:        p.ID,
		VehicleID: vehicleID,
		Time:      p.Time,
		Odometer:  p.Odometer,
		Volume:    p.Volume,
		Cost:      p.Cost,
		FullTank:  p.FullTank,
		HideCalc:  p.Hidden,
		Notes:     p.Notes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels to HTTP statuses and emits a JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var malformed *core.MalformedLineError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateName), errors.Is(err, core.ErrDuplicateOdometer):
		status = http.StatusConflict
	case errors.As(err, &malformed),
		errors.Is(err, core.ErrOutOfRange),
		errors.Is(err, core.ErrInvalidName),
		errors.Is(err, core.ErrInconsistentInput),
		errors.Is(err, core.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
	} else {
		slog.WarnContext(r.Context(), "Request rejected", "url", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorPayload{Error: err.Error()})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
