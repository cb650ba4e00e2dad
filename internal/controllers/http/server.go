package httpctrl

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/controllers/dto"
	"github.com/Agrid-Dev/hvacrux/internal/load"
	"github.com/Agrid-Dev/hvacrux/internal/ports"
)

type Server struct {
	svc    ports.EstimatorService
	srv    *http.Server
	siteID string
	log    *slog.Logger
}

// New returns a runnable server. A nil logger falls back to slog.Default().
func New(svc ports.EstimatorService, addr string, siteID string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	s := &Server{svc: svc, siteID: siteID, log: logger.With("controller", "http", "site_id", siteID)}

	// Read
	mux.HandleFunc("GET /v1", s.handleGet)
	mux.HandleFunc("GET /v1/materials", s.handleGetMaterials)

	// Write: one endpoint per variable
	mux.HandleFunc("POST /v1/outdoor_temperature", s.handlePostOutdoor)
	mux.HandleFunc("POST /v1/indoor_temperature", s.handlePostIndoor)
	mux.HandleFunc("POST /v1/envelope", s.handlePostEnvelope)
	mux.HandleFunc("POST /v1/location", s.handlePostLocation)
	mux.HandleFunc("POST /v1/floors", s.handlePostFloors)
	mux.HandleFunc("POST /v1/floor_count", s.handlePostFloorCount)
	mux.HandleFunc("POST /v1/floors/{floor}/room_count", s.handlePostRoomCount)
	mux.HandleFunc("POST /v1/floors/{floor}/rooms/{room}", s.handlePostRoom)

	// Stateless calculation
	mux.HandleFunc("POST /v1/estimate", s.handlePostEstimate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	s.log.Info("listening", "addr", s.srv.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- DTOs ----

type materialDTO struct {
	Name   string  `json:"name"`
	UValue float64 `json:"u_value"`
}

type catalogDTO struct {
	Wall   []materialDTO `json:"wall"`
	Roof   []materialDTO `json:"roof"`
	Window []materialDTO `json:"window"`
}

type estimateReq struct {
	Building   *dto.Building   `json:"building"`
	Conditions *dto.Conditions `json:"conditions"`
}

// ---- Handlers ----

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.respondSnapshot(w)
}

func (s *Server) handleGetMaterials(w http.ResponseWriter, _ *http.Request) {
	var c catalogDTO
	for _, m := range building.WallMaterials() {
		c.Wall = append(c.Wall, materialDTO{Name: m.String(), UValue: m.UValue()})
	}
	for _, m := range building.RoofMaterials() {
		c.Roof = append(c.Roof, materialDTO{Name: m.String(), UValue: m.UValue()})
	}
	for _, m := range building.WindowMaterials() {
		c.Window = append(c.Window, materialDTO{Name: m.String(), UValue: m.UValue()})
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePostOutdoor(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetOutdoorTemperature)
}

func (s *Server) handlePostIndoor(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetIndoorTemperature)
}

func (s *Server) handlePostEnvelope(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v dto.Envelope) error {
		return s.svc.SetEnvelope(v.ToDomain())
	})
}

func (s *Server) handlePostLocation(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v dto.Location) error {
		return s.svc.SetLocation(v.ToDomain())
	})
}

func (s *Server) handlePostFloors(w http.ResponseWriter, r *http.Request) {
	// body: {"value": [{"rooms": [...]}, ...]}
	postValue(s, w, r, func(v []dto.Floor) error {
		return s.svc.SetFloors(dto.ToFloors(v))
	})
}

func (s *Server) handlePostFloorCount(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetFloorCount)
}

func (s *Server) handlePostRoomCount(w http.ResponseWriter, r *http.Request) {
	floor, err := pathIndex(r, "floor")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	postValue(s, w, r, func(n int) error {
		return s.svc.SetRoomCount(floor, n)
	})
}

func (s *Server) handlePostRoom(w http.ResponseWriter, r *http.Request) {
	floor, err := pathIndex(r, "floor")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := pathIndex(r, "room")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	postValue(s, w, r, func(v dto.Room) error {
		return s.svc.SetRoom(floor, room, v.ToDomain())
	})
}

func (s *Server) handlePostEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Building == nil || req.Conditions == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'building' or 'conditions'")
		return
	}
	b := req.Building.ToDomain()
	c := req.Conditions.ToDomain()
	if err := b.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.FromReport(load.Estimate(b, c)))
}

// ---- generic helpers ----
func (s *Server) respondSnapshot(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, dto.FromSnapshot(s.siteID, s.svc.Get()))
}

func postValue[T any](s *Server, w http.ResponseWriter, r *http.Request, apply func(T) error) {
	dec := json.NewDecoder(r.Body)
	var req struct {
		Value *T `json:"value"`
	}
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'value'")
		return
	}

	if err := apply(*req.Value); err != nil {
		s.log.Debug("rejected write", "path", r.URL.Path, "err", err)
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondSnapshot(w)
}

func pathIndex(r *http.Request, name string) (int, error) {
	i, err := strconv.Atoi(r.PathValue(name))
	if err != nil || i < 0 {
		return 0, errors.New("invalid " + name + " index")
	}
	return i, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
