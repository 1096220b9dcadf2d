package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/copyleftdev/chemsweep/internal/errors"
	"github.com/copyleftdev/chemsweep/internal/logging"
	"github.com/copyleftdev/chemsweep/internal/process"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// defaultSubstanceTemperature is used when the substance query has no temperature.
const defaultSubstanceTemperature = 298.0

// Logger defines the logging interface used by the server
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server implements the HTTP and JSON-RPC surface of the process advisor.
// Every request is answered synchronously; the server holds no per-request state.
type Server struct {
	logger  Logger
	advisor *process.Advisor
}

// NewServer creates a new server instance with the given logger and advisor.
func NewServer(logger Logger, advisor *process.Advisor) *Server {
	return &Server{
		logger:  logger,
		advisor: advisor,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sweep/{target}", s.handleSweep)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/kinetics", s.handleKinetics)
		r.Post("/titration", s.handleTitration)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/compounds", s.handleCompounds)
			r.Get("/elements", s.handleElements)
			r.Get("/substances", s.handleSubstances)
			r.Get("/substances/{name}", s.handleSubstance)
		})
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// rpcRequest is a JSON-RPC 2.0 request. Params may be an object or a
// single-element array holding the object.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&request); err != nil {
		s.respondWithError(w, apierrors.RPCParseError, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" || request.Method == "" {
		s.respondWithError(w, apierrors.RPCInvalidRequest, "Invalid Request", request.ID)
		return
	}

	params, err := unwrapParams(request.Params)
	if err != nil {
		s.respondWithError(w, apierrors.RPCInvalidParams, err.Error(), request.ID)
		return
	}

	ctx := r.Context()
	var result interface{}

	switch request.Method {
	case "sweep.rate", "sweep.energy", "sweep.equilibrium", "sweep.ph", "sweep.phase":
		target, _ := process.ParseTarget(request.Method[len("sweep."):])
		result, err = s.sweep(ctx, target, params)
	case "process.evaluate":
		result, err = s.evaluate(ctx, params)
	case "process.kinetics":
		var req process.KineticsRequest
		if err = decodeParams(params, &req); err == nil {
			result, err = s.advisor.Kinetics(req)
		}
	case "process.titration":
		var req process.TitrationRequest
		if err = decodeParams(params, &req); err == nil {
			result, err = s.advisor.Titration(req)
		}
	case "catalog.compounds":
		result = s.advisor.Catalog().Compounds()
	case "catalog.substances":
		result = s.advisor.Catalog().Substances()
	case "catalog.elements":
		result = s.advisor.Catalog().Elements()
	default:
		s.respondWithError(w, apierrors.RPCMethodNotFound, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithDomainError(w, r, err, request.ID)
		return
	}

	s.respondWithResult(w, result, request.ID)
}

// respondWithResult sends a JSON-RPC 2.0 result. The response is encoded
// before anything is written so an unencodable result still yields an error object.
func (s *Server) respondWithResult(w http.ResponseWriter, result, id interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
	if err != nil {
		s.logger.Error("Failed to encode RPC result", map[string]interface{}{"error": err.Error()})
		s.respondWithError(w, apierrors.RPCServerError, "failed to encode result", id)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}

func unwrapParams(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return raw, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("invalid params: %v", err)
	}
	switch len(list) {
	case 0:
		return nil, nil
	case 1:
		return list[0], nil
	default:
		return nil, fmt.Errorf("invalid params: expected one object, got %d", len(list))
	}
}

// decodeParams decodes raw into v; empty or null params leave v unchanged.
func decodeParams(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierrors.BadRequest("invalid params: %v", err)
	}
	return nil
}

// readBody reads a bounded request body.
func readBody(r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, apierrors.BadRequest("failed to read request body: %v", err)
	}
	if len(data) > maxBodyBytes {
		return nil, apierrors.BadRequest("request body exceeds %d bytes", maxBodyBytes)
	}
	return data, nil
}

// sweep decodes the request for target and runs it.
func (s *Server) sweep(ctx context.Context, target process.Target, params json.RawMessage) (*process.SweepOutcome, error) {
	switch target {
	case process.TargetRate:
		var req process.RateRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return s.advisor.OptimizeRate(ctx, req)
	case process.TargetEnergy, process.TargetEquilibrium:
		var req process.ThermoRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if target == process.TargetEnergy {
			return s.advisor.OptimizeEnergy(ctx, req)
		}
		return s.advisor.OptimizeEquilibrium(ctx, req)
	case process.TargetPH:
		var req process.PHRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return s.advisor.OptimizePH(ctx, req)
	case process.TargetPhase:
		var req process.PhaseRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return s.advisor.OptimizePhase(ctx, req)
	default:
		return nil, apierrors.Errorf("unknown sweep target %q", target).WithStatus(http.StatusNotFound, apierrors.CodeNotFound)
	}
}

// evaluate starts from the default conditions so omitted fields keep them.
func (s *Server) evaluate(ctx context.Context, params json.RawMessage) (*process.Dashboard, error) {
	c := process.DefaultConditions()
	if err := decodeParams(params, &c); err != nil {
		return nil, err
	}
	return s.advisor.Evaluate(ctx, c)
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Debug("RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// respondWithDomainError maps an advisor error onto a JSON-RPC error.
func (s *Server) respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, id interface{}) {
	e := apierrors.FromDomain(err)
	s.logFailure(r, e)
	s.respondWithError(w, e.RPCCode(), e.ClientMessage(), id)
}

// logFailure logs server-side failures with their cause; client errors stay at debug.
func (s *Server) logFailure(r *http.Request, e *apierrors.Error) {
	fields := map[string]interface{}{
		"status": e.HTTPStatus(),
		"code":   e.Code,
		"error":  e.Error(),
		"path":   r.URL.Path,
	}
	if e.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error("Request failed", fields)
		return
	}
	s.logger.Debug("Request rejected", fields)
}

// respondJSON encodes before writing the header so a value JSON cannot carry
// turns into a clean 500 instead of a truncated body.
func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
		apierrors.WriteJSON(w, apierrors.Wrap(err, "failed to encode response").WithStatus(http.StatusInternalServerError, apierrors.CodeInternal))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.logFailure(r, apierrors.FromDomain(err))
	apierrors.WriteJSON(w, err)
}

// handleSweep handles POST /api/v1/sweep/{target}
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "target")
	target, ok := process.ParseTarget(name)
	if !ok {
		s.respondError(w, r, apierrors.Errorf("unknown sweep target %q", name).WithStatus(http.StatusNotFound, apierrors.CodeNotFound))
		return
	}

	body, err := readBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	out, err := s.sweep(r.Context(), target, body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("Sweep served", map[string]interface{}{
		"target":  string(target),
		"best_x":  out.BestX,
		"elapsed": time.Since(start).String(),
	})
	s.respondJSON(w, http.StatusOK, out)
}

// handleEvaluate handles POST /api/v1/evaluate
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.evaluate(r.Context(), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, d)
}

// handleKinetics handles POST /api/v1/kinetics
func (s *Server) handleKinetics(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req process.KineticsRequest
	if err := decodeParams(body, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	report, err := s.advisor.Kinetics(req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// handleTitration handles POST /api/v1/titration
func (s *Server) handleTitration(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req process.TitrationRequest
	if err := decodeParams(body, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	report, err := s.advisor.Titration(req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompounds(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.advisor.Catalog().Compounds())
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.advisor.Catalog().Elements())
}

func (s *Server) handleSubstances(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.advisor.Catalog().Substances())
}

// handleSubstance handles GET /api/v1/catalog/substances/{name}?temperature=
func (s *Server) handleSubstance(w http.ResponseWriter, r *http.Request) {
	temperature := defaultSubstanceTemperature
	if q := r.URL.Query().Get("temperature"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			s.respondError(w, r, apierrors.BadRequest("invalid temperature %q", q))
			return
		}
		temperature = v
	}

	report, err := s.advisor.DescribeSubstance(chi.URLParam(r, "name"), temperature)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// Close releases server resources. Requests are synchronous, so nothing is
// left in flight once the HTTP server has shut down.
func (s *Server) Close() error {
	s.logger.Debug("Server closed")
	return nil
}
