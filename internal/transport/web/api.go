package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/responder"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const (
	maxRequestSize    = 1 << 20
	defaultTurnsLimit = 50
	noMessageError    = "No message provided"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromCtx(ctx)

	var req core.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
		logger.Debug().Err(err).Msg("invalid chat request")
		writeJSON(ctx, w, http.StatusBadRequest, core.ChatResponse{Error: noMessageError})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(ctx, w, http.StatusBadRequest, core.ChatResponse{Error: noMessageError})
		return
	}

	reply, err := s.deps.Responder.Respond(ctx, req.Message, req.History)
	if err != nil {
		if errors.Is(err, responder.ErrNoMessage) {
			writeJSON(ctx, w, http.StatusBadRequest, core.ChatResponse{Error: noMessageError})
			return
		}
		logger.Error().Err(err).Msg("responder failed")
		writeJSON(ctx, w, http.StatusInternalServerError, core.ChatResponse{Error: err.Error()})
		return
	}

	writeJSON(ctx, w, http.StatusOK, core.ChatResponse{Success: true, Response: &reply})
}

func (s *Server) handleTurns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultTurnsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	turns, err := s.deps.Turns.ListTurns(ctx, limit)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to list turns")
		http.Error(w, "failed to list turns", http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"count": len(turns),
		"turns": turns,
	})
}

func (s *Server) handleCars(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cars, err := s.deps.Cars.ListCars(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to list cars")
		writeJSON(ctx, w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if cars == nil {
		cars = []core.Car{}
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success": true,
		"cars":    cars,
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to write response")
	}
}
