package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/schemas"
	"github.com/jonathan/listing-pipeline/internal/server/middleware"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// pingInterval is how often an idle event stream sends a keep-alive.
const pingInterval = 15 * time.Second

// ReviewRequest is the body of a review decision.
type ReviewRequest struct {
	Approved *bool  `json:"approved"`
	Reviewer string `json:"reviewer,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// pipelineID parses the {id} path value.
func pipelineID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid pipeline id"}
	}
	return id, nil
}

// handleCreatePipeline validates the trigger synchronously and starts the run
// in the background.
func (s *Server) handleCreatePipeline(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Syntax errors are reported before the schema sees the document.
	var doc json.RawMessage
	if err := unmarshalBody(data, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := schemas.ValidatePipelineRequest(data); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.PipelineRequest
	if err := unmarshalBody(data, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.orch.Start(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	run, err := s.orch.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/pipelines/"+id.String())
	s.jsonResponse(w, http.StatusAccepted, pipeline.NewView(run))
}

func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := s.orch.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]pipeline.View, 0, len(runs))
	for _, run := range runs {
		views = append(views, pipeline.NewView(run))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"pipelines": views, "count": len(views)})
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.orch.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pipeline.NewView(run))
}

func (s *Server) handlePausePipeline(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.orch.Pause(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pipeline.NewView(run))
}

func (s *Server) handleResumePipeline(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.orch.Resume(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pipeline.NewView(run))
}

func (s *Server) handleSkipStep(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.orch.Skip(r.Context(), id, r.PathValue("step"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pipeline.NewView(run))
}

// handleReview delivers a decision to a run awaiting manual review. With
// token auth the token subject is the recorded reviewer.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Approved == nil {
		s.writeError(w, r, &ErrValidation{Field: "approved", Message: "approved is required"})
		return
	}

	reviewer := req.Reviewer
	if subject, err := middleware.GetReviewer(r); err == nil {
		reviewer = subject
	}
	if reviewer == "" {
		reviewer = "anonymous"
	}

	decision := pipeline.Decision{Approved: *req.Approved, Reviewer: reviewer, Comments: req.Comments}
	if err := s.orch.Approve(r.Context(), id, decision); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("review submitted",
		zap.String("pipeline_id", id.String()),
		zap.String("reviewer", reviewer),
		zap.Bool("approved", decision.Approved))
	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"pipelineId": id,
		"decision":   decision,
	})
}

// handlePipelineEvents streams a run's events until it completes or the
// client disconnects. The first event is a snapshot of the run.
func (s *Server) handlePipelineEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.bus == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	// Subscribe before reading the run so no event falls between the two.
	ch, cancel := s.bus.Subscribe(id.String())
	defer cancel()

	run, err := s.orch.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	if err := sse.WriteEvent("snapshot", pipeline.NewView(run)); err != nil {
		return
	}
	if run.Status.Terminal() {
		sse.WriteComplete(id.String(), string(run.Status))
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := sse.WritePing(); err != nil {
				return
			}
		case env, ok := <-ch:
			if !ok {
				sse.WriteError("event stream closed")
				return
			}
			if err := sse.WriteEvent(env.Name, env); err != nil {
				return
			}
			if env.Terminal() {
				status := ""
				if ce, ok := env.Data.(pipeline.CompletionEvent); ok {
					status = string(ce.Status)
				}
				sse.WriteComplete(id.String(), status)
				return
			}
		}
	}
}
