package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/nana-intelligence/agent-juliette/internal/retrieval"
	"github.com/nana-intelligence/agent-juliette/internal/tally"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// maxWebhookBody bounds webhook request bodies. Tally submissions are a few
// kilobytes; anything near the limit is not a form response.
const maxWebhookBody = 1 << 20

// handleWebhook processes a Tally form submission end to end: verify, parse,
// deduplicate, run the pipeline, and answer with the run result.
//
// Deterministic failures answer 200 so Tally does not redeliver a submission
// that will fail identically every time.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if s.webhookSecret != "" {
		signature := r.Header.Get(tally.SignatureHeader)
		if !tally.VerifySignature(body, signature, s.webhookSecret) {
			log.Printf("[webhook] rejected delivery with bad signature from %s", r.RemoteAddr)
			s.errorResponse(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	payload, err := tally.ParseWebhook(body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if payload.EventType != tally.EventTypeFormResponse {
		s.jsonResponse(w, http.StatusOK, map[string]string{
			"status": "ignored",
			"reason": "unsupported event type " + payload.EventType,
		})
		return
	}

	if cached, ok := s.cache.Get(payload.Data.ResponseID); ok {
		log.Printf("[webhook] duplicate delivery for %s, returning cached result", payload.Data.ResponseID)
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"status": "duplicate",
			"result": cached,
		})
		return
	}

	lead, err := tally.ParseLead(payload)
	if err != nil {
		log.Printf("[webhook] unusable submission %s: %v", payload.Data.ResponseID, err)
		s.jsonResponse(w, http.StatusOK, map[string]string{
			"status": "rejected",
			"reason": err.Error(),
		})
		return
	}

	// The run must not die with the HTTP connection: a sender timing out
	// mid-LLM-call abandons the response, not the pipeline.
	result := s.runner.Run(context.WithoutCancel(r.Context()), lead)

	// Only successful runs are cached. Tally's redelivery is the retry
	// path for transient failures, so a failed run must not answer the
	// next delivery for an hour.
	if result.Success {
		s.cache.Put(lead.ResponseID, result)
	}

	if result.Err != nil {
		log.Printf("[webhook] run for %s failed at %s (%s): %v",
			lead.ResponseID, result.FailureStage, result.FailureReason, result.Err)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "processed",
		"result": result,
	})
}

// handleTestQuote runs the pipeline on a lead supplied directly as JSON,
// bypassing Tally. Used to exercise the agent manually.
func (s *Server) handleTestQuote(w http.ResponseWriter, r *http.Request) {
	var lead types.Lead
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&lead); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid lead payload: "+err.Error())
		return
	}
	if err := lead.Validate(); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result := s.runner.Run(context.WithoutCancel(r.Context()), &lead)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRAGInfo reports the knowledge base collection status.
func (s *Server) handleRAGInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.knowledge.Info(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, info)
}

// handleRAGSearch runs an ad-hoc similarity search, for tuning the
// knowledge base.
func (s *Server) handleRAGSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.errorResponse(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	limit := retrieval.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	snippets, err := s.knowledge.Retrieve(r.Context(), query, limit)
	if err != nil {
		if retrieval.IsInvalidQuery(err) {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		s.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"query":    query,
		"count":    len(snippets),
		"snippets": snippets,
	})
}

// handleCacheStatus reports idempotency cache statistics.
func (s *Server) handleCacheStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.cache.Status())
}
