package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/canvasgraph/pkg/buildinfo"
	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/errors"
	"github.com/matzehuels/canvasgraph/pkg/interact"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type positionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type nudgeRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type sizeRequest struct {
	Width  *float64 `json:"width" validate:"required,gte=0"`
	Height *float64 `json:"height" validate:"required,gte=0"`
}

type refreshResponse struct {
	Refreshed int `json:"refreshed"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"build":   buildinfo.Current(),
		"nodes":   s.store.Nodes.Len(),
		"anchors": s.store.Anchors.Len(),
		"edges":   s.store.Edges.Len(),
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nodes := s.store.NodesWhere(diagram.NodeFilter{CanvasID: q.Get("canvas")})
	writeJSON(w, http.StatusOK, nonNil(nodes))
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := s.store.Nodes.Get(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) nodeAnchors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Nodes.Get(id); !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(s.store.AnchorsOf(id)))
}

func (s *Server) listAnchors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := diagram.Role(q.Get("role"))
	if role != "" && !role.Valid() {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "role must be source or target, got %q", role))
		return
	}
	anchors := s.store.AnchorsWhere(diagram.AnchorFilter{
		NodeID:    q.Get("node"),
		EdgeLabel: q.Get("label"),
		Role:      role,
		CanvasID:  q.Get("canvas"),
	})
	writeJSON(w, http.StatusOK, nonNil(anchors))
}

func (s *Server) listEdges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	edges := s.store.EdgesWhere(diagram.EdgeFilter{
		Label:    q.Get("label"),
		SourceID: q.Get("source"),
		TargetID: q.Get("target"),
		CanvasID: q.Get("canvas"),
	})
	writeJSON(w, http.StatusOK, nonNil(edges))
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, err := s.ctrl.MoveNode(r.Context(), chi.URLParam(r, "id"), *req.X, *req.Y)
	s.respondNode(w, n, err)
}

func (s *Server) nudgeNode(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, err := s.ctrl.NudgeNode(r.Context(), chi.URLParam(r, "id"), req.DX, req.DY)
	s.respondNode(w, n, err)
}

func (s *Server) resizeNode(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, err := s.ctrl.ResizeNode(r.Context(), chi.URLParam(r, "id"), *req.Width, *req.Height)
	s.respondNode(w, n, err)
}

func (s *Server) refreshEdges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, refreshResponse{Refreshed: s.ctrl.RefreshEdges()})
}

// decode reads and validates a JSON body, writing the error response
// itself when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	if err := validate.Struct(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request"))
		return false
	}
	return true
}

func (s *Server) respondNode(w http.ResponseWriter, n diagram.Node, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, n)
	case stderrors.Is(err, diagram.ErrUnknownNode):
		s.writeError(w, errors.Wrap(errors.ErrCodeNotFound, err, "node not found"))
	case stderrors.Is(err, interact.ErrInvalidSize):
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid size"))
	default:
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "edit failed"))
	}
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeUnknownNode, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidSpec:
		return http.StatusBadRequest
	case errors.ErrCodeBrokenInvariant:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	msg := errors.UserMessage(err)
	if status < 500 {
		msg = errors.Detail(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
