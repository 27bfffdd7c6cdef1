package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/wdkapps/fillup/internal/core"
	"github.com/wdkapps/fillup/internal/report"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.service.Settings()
	writeJSON(w, http.StatusOK, map[string]any{
		"units":           settings.Units.String(),
		"plot_date_range": settings.PlotDateRange.String(),
		"data_entry_mode": settings.DataEntryMode.String(),
		"cost_required":   settings.CostRequired,
		"currency_symbol": settings.Currency.Symbol,
	})
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.service.Vehicles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := make([]vehiclePayload, 0, len(vehicles))
	for _, v := range vehicles {
		payload = append(payload, toVehiclePayload(v))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var body vehiclePayload
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	created, err := s.service.CreateVehicle(r.Context(), body.Name, body.TankCapacity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVehiclePayload(created))
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	var body vehiclePayload
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	v := core.Vehicle{ID: id, Name: body.Name, TankCapacity: body.TankCapacity}
	if err := s.service.UpdateVehicle(r.Context(), v); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateVehicle(id)
	writeJSON(w, http.StatusOK, toVehiclePayload(v))
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	if err := s.service.DeleteVehicle(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateVehicle(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	records, err := s.cachedRecords(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	units := s.service.Settings().Units
	payload := make([]recordPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toRecordPayload(rec, units))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	var body recordPayload
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	created, err := s.service.CreateRecord(r.Context(), body.toRecord(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateVehicle(id)
	writeJSON(w, http.StatusCreated, toRecordPayload(&created, s.service.Settings().Units))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}
	rid, err := pathID(r, "rid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid record id"})
		return
	}

	var body recordPayload
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	rec := body.toRecord(id)
	rec.ID = rid
	if err := s.service.UpdateRecord(r.Context(), rec); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateVehicle(id)
	writeJSON(w, http.StatusOK, toRecordPayload(&rec, s.service.Settings().Units))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}
	rid, err := pathID(r, "rid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid record id"})
		return
	}

	if err := s.service.DeleteRecord(r.Context(), id, rid); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateVehicle(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}
	rid, err := pathID(r, "rid")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid record id"})
		return
	}

	gauge, err := strconv.ParseFloat(r.URL.Query().Get("gauge"), 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid gauge value"})
		return
	}

	calc, err := s.service.Estimate(r.Context(), id, rid, float32(gauge))
	if err != nil {
		writeError(w, r, err)
		return
	}

	units := s.service.Settings().Units
	writeJSON(w, http.StatusOK, mileagePayload{
		StartOdometer: calc.StartOdometer,
		EndOdometer:   calc.EndOdometer,
		FuelUsed:      calc.FuelUsed,
		Distance:      calc.Distance(),
		Mileage:       calc.Mileage(),
		Label:         units.EfficiencyLabel(),
	})
}

// monthRow is one month of the aggregated trips view.
type monthRow struct {
	Month        string  `json:"month"`
	Distance     int     `json:"distance"`
	Volume       float32 `json:"volume"`
	Cost         float64 `json:"cost"`
	AveragePrice float64 `json:"average_price"`
	RecordCount  int     `json:"record_count"`
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	rng, err := s.queryRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
		return
	}

	records, err := s.cachedRecords(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	trips := core.NewMonthlyTrips(records)
	rows := make([]monthRow, 0)
	for _, month := range trips.Months(rng) {
		trip := trips.TripsFor(month)
		rows = append(rows, monthRow{
			Month:        month.LongLabel(),
			Distance:     trip.Distance,
			Volume:       trip.Volume,
			Cost:         trip.Cost,
			AveragePrice: trip.AveragePrice(),
			RecordCount:  len(trip.RecordIDs),
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	rng, err := s.queryRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
		return
	}

	records, err := s.cachedRecords(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	settings := s.service.Settings()
	stats := report.Build(records, rng, settings.Units)

	type monthStat struct {
		Month        string  `json:"month"`
		Distance     int     `json:"distance"`
		Volume       float32 `json:"volume"`
		Cost         float64 `json:"cost"`
		AveragePrice float64 `json:"average_price"`
	}
	payload := struct {
		Range           string      `json:"range"`
		Units           string      `json:"units"`
		Months          []monthStat `json:"months"`
		TotalDistance   int         `json:"total_distance"`
		TotalVolume     float32     `json:"total_volume"`
		TotalCost       float64     `json:"total_cost"`
		AverageDistance float64     `json:"average_distance"`
		AverageVolume   float64     `json:"average_volume"`
		AverageCost     float64     `json:"average_cost"`
		CostPerDistance float64     `json:"cost_per_distance"`
		Summary         any         `json:"mileage_summary,omitempty"`
		Rendered        string      `json:"rendered"`
	}{
		Range:           rng.Kind.String(),
		Units:           settings.Units.String(),
		TotalDistance:   stats.TotalDistance,
		TotalVolume:     stats.TotalVolume,
		TotalCost:       stats.TotalCost,
		AverageDistance: stats.AverageDistance,
		AverageVolume:   stats.AverageVolume,
		AverageCost:     stats.AverageCost,
		CostPerDistance: stats.CostPerDistance,
		Rendered:        stats.Render(settings.Currency),
	}
	for _, m := range stats.Months {
		payload.Months = append(payload.Months, monthStat{
			Month:        m.Month.LongLabel(),
			Distance:     m.Distance,
			Volume:       m.Volume,
			Cost:         m.Cost,
			AveragePrice: m.AveragePrice,
		})
	}
	if stats.Summary != nil {
		payload.Summary = map[string]any{
			"min":     stats.Summary.Min,
			"average": stats.Summary.Average,
			"max":     stats.Summary.Max,
			"count":   stats.Summary.Count,
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=fuel-log.csv")
	if _, err := s.service.Export(r.Context(), id, w); err != nil {
		// headers already sent; nothing better to do than log
		writeError(w, r, err)
		return
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid vehicle id"})
		return
	}

	n, err := s.service.Import(r.Context(), id, r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateVehicle(id)
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// queryRange resolves the optional range query parameter, defaulting to the
// configured plot range.
func (s *Server) queryRange(r *http.Request) (core.DateRange, error) {
	now := time.Now()
	if v := r.URL.Query().Get("range"); v != "" {
		kind, err := core.ParseRangeKind(v)
		if err != nil {
			return core.DateRange{}, err
		}
		return core.NewDateRange(kind, now), nil
	}
	return s.service.PlotRange(now), nil
}
