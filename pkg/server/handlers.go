package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mercator-hq/ganymede/pkg/audit"
	"mercator-hq/ganymede/pkg/policy"
)

const maxAuditQueryLimit = 1000

// policyResponse describes the active policy identity.
type policyResponse struct {
	Identity string `json:"identity"`
	Short    string `json:"short"`
}

// rotateRequest is the body of POST /v1/policy/rotate.
type rotateRequest struct {
	Identity string `json:"identity"`
}

// rotateResponse reports the rotation outcome.
type rotateResponse struct {
	Rotated  bool   `json:"rotated"`
	Identity string `json:"identity"`
}

// cacheResponse describes verdict cache occupancy.
type cacheResponse struct {
	Entries  int `json:"entries"`
	Capacity int `json:"capacity"`
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Holder.Current().IsZero() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no policy identity loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handlePolicy(w http.ResponseWriter, _ *http.Request) {
	id := s.deps.Holder.Current()
	if id.IsZero() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no policy identity loaded"})
		return
	}
	writeJSON(w, http.StatusOK, policyResponse{
		Identity: id.String(),
		Short:    id.Short(),
	})
}

func (s *Server) handlePolicyRotate(w http.ResponseWriter, r *http.Request) {
	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	next := policy.Identity(strings.TrimSpace(req.Identity))
	if next.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "identity must not be empty"})
		return
	}

	rotated := s.deps.Holder.Rotate(next)
	if rotated {
		s.logger.Info("policy rotated via admin endpoint", "identity", next.Short())
	}
	writeJSON(w, http.StatusOK, rotateResponse{
		Rotated:  rotated,
		Identity: next.String(),
	})
}

func (s *Server) handleCache(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, cacheResponse{
		Entries:  s.deps.Gate.CacheLen(),
		Capacity: s.deps.Gate.CacheCapacity(),
	})
}

func (s *Server) handleAuditRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, err := s.deps.AuditStorage.Query(r.Context(), filter)
	if err != nil {
		s.logger.Error("audit query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "audit query failed"})
		return
	}
	if records == nil {
		records = []*audit.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// parseAuditFilter builds an audit filter from query parameters.
func parseAuditFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{
		Fingerprint:    q.Get("fingerprint"),
		PolicyIdentity: q.Get("policy_identity"),
		Decision:       q.Get("decision"),
		Limit:          100,
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return audit.Filter{}, errInvalidParam("limit", raw)
		}
		if limit > maxAuditQueryLimit {
			limit = maxAuditQueryLimit
		}
		filter.Limit = limit
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filter{}, errInvalidParam("since", raw)
		}
		filter.Since = since
	}
	return filter, nil
}

type paramError struct {
	name  string
	value string
}

func errInvalidParam(name, value string) error {
	return &paramError{name: name, value: value}
}

func (e *paramError) Error() string {
	return "invalid query parameter " + e.name + ": " + strconv.Quote(e.value)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
