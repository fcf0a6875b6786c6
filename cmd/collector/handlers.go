package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

type TrackBatchRequest struct {
	Events []tracking.Event `json:"events"`
}

type TrackBatchResponse struct {
	Accepted int `json:"accepted"`
}

func (s *Server) handleTrackBatch(w http.ResponseWriter, r *http.Request) {
	var req TrackBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Events) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("batch is empty"))
		return
	}
	for i := range req.Events {
		if err := req.Events[i].Validate(); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	for i := range req.Events {
		s.eventsReceived.WithLabelValues(string(req.Events[i].Type)).Inc()
	}
	s.cfg.Logger.Info("batch received",
		zap.Int("events", len(req.Events)),
		zap.String("session_id", string(req.Events[0].SessionID)),
		zap.String("request_id", requestID(r.Context())),
	)
	s.writeJSON(w, http.StatusAccepted, TrackBatchResponse{Accepted: len(req.Events)})
}

type ConsentSetRequest struct {
	UserID      string  `json:"user_id"`
	ConsentType string  `json:"consent_type"`
	IsGranted   bool    `json:"is_granted"`
	UserAgent   string  `json:"user_agent"`
	IPAddress   *string `json:"ip_address"`
}

type ConsentSetResponse struct {
	Recorded bool `json:"recorded"`
}

func (s *Server) handleConsentSet(w http.ResponseWriter, r *http.Request) {
	var req ConsentSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ConsentType == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("consent_type is required"))
		return
	}
	s.consentUpdates.WithLabelValues(req.ConsentType, strconv.FormatBool(req.IsGranted)).Inc()
	s.cfg.Logger.Info("consent update",
		zap.String("user_id", req.UserID),
		zap.String("consent_type", req.ConsentType),
		zap.Bool("is_granted", req.IsGranted),
		zap.Bool("ip_present", req.IPAddress != nil),
	)
	s.writeJSON(w, http.StatusOK, ConsentSetResponse{Recorded: true})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
