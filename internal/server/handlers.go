package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/egomobility/vehicle-signals/pkg/signal"
	"github.com/egomobility/vehicle-signals/pkg/store"
)

// eventPageLimit caps how many unhandled events a single poll returns.
const eventPageLimit = 100

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// managerFor binds a signal manager to the request's vehicle. Managers are
// cheap request-scoped facades; the cache and store behind them are shared.
func (s *HTTPServer) managerFor(vehicleID string) *signal.Manager {
	return signal.NewManager(vehicleID, s.registry, s.store, s.cache)
}

// vehicleFromRequest resolves the vehicle of a request, writing a 404 when
// it does not exist.
func (s *HTTPServer) vehicleFromRequest(w http.ResponseWriter, r *http.Request) *store.Vehicle {
	id := mux.Vars(r)["vehicle_id"]

	vehicle, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	if vehicle == nil {
		respondError(w, http.StatusNotFound, "Vehicle not found")
		return nil
	}

	return vehicle
}

func (s *HTTPServer) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, vehicles)
}

func (s *HTTPServer) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle store.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if vehicle.LicensePlate == "" {
		respondError(w, http.StatusBadRequest, "license_plate is required")
		return
	}

	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	}
	vehicle.CreationTime = time.Now().UTC()

	existing, err := s.store.GetVehicle(r.Context(), vehicle.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "Vehicle already exists")
		return
	}

	if err := s.store.CreateVehicle(r.Context(), &vehicle); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, vehicle)
}

func (s *HTTPServer) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	respondJSON(w, http.StatusOK, vehicle)
}

func (s *HTTPServer) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	if err := s.store.DeleteVehicle(r.Context(), vehicle.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// drop the now-dangling snapshot
	s.cache.Set(r.Context(), vehicle.ID, signal.SnapshotCacheKey, nil)

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleGetSignals(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	snapshot, err := s.managerFor(vehicle.ID).GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *HTTPServer) handlePatchSignals(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	patches, err := decodeSignalPatch(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	manager := s.managerFor(vehicle.ID)
	for _, p := range patches {
		ok, err := manager.Set(r.Context(), p.Name, p.Value)
		if err != nil {
			var validationErr *signal.ValidationError
			if errors.As(err, &validationErr) || errors.Is(err, signal.ErrSignalReadOnly) {
				respondError(w, http.StatusNotAcceptable, err.Error())
				return
			}
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			respondError(w, http.StatusNotAcceptable,
				"PATCH FAILED: Signal '"+p.Name+"' does not exist!")
			return
		}
	}

	snapshot, err := manager.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// signalPatch is one name/value assignment of a PATCH body.
type signalPatch struct {
	Name  string
	Value any
}

// decodeSignalPatch reads a PATCH body as an ordered list of assignments.
// Decoding into a map would lose the body's key order; writes are applied
// in the order the caller sent them.
func decodeSignalPatch(body io.Reader) ([]signalPatch, error) {
	dec := json.NewDecoder(body)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var patches []signalPatch
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		patches = append(patches, signalPatch{Name: name, Value: value})
	}

	return patches, nil
}

func (s *HTTPServer) handleResetSignals(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	if err := s.store.DeleteOverrides(r.Context(), vehicle.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snapshot, err := s.managerFor(vehicle.ID).Refresh(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *HTTPServer) handleGetSignal(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	name := mux.Vars(r)["name"]
	value, ok, err := s.managerFor(vehicle.ID).Get(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Signal '"+name+"' does not exist!")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"name":  signal.NormalizeName(name),
		"value": value,
	})
}

func (s *HTTPServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	var filter *regexp.Regexp
	if raw := r.URL.Query().Get("filter"); raw != "" {
		var err error
		filter, err = regexp.Compile("(?i)" + raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid filter expression")
			return
		}
	}

	events, err := s.store.UnhandledEvents(r.Context(), vehicle.ID, filter, eventPageLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// handing events to the caller consumes them
	if err := s.store.MarkEventsHandled(r.Context(), vehicle.ID, events, time.Now().UTC()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, events)
}

func (s *HTTPServer) handleDeleteEvents(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	if err := s.store.DeleteEvents(r.Context(), vehicle.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleGetSignalLogs(w http.ResponseWriter, r *http.Request) {
	vehicle := s.vehicleFromRequest(w, r)
	if vehicle == nil {
		return
	}

	limit := int64(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := s.store.SignalLogs(r.Context(), vehicle.ID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
