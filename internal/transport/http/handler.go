package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nearby/internal/domain"
	"nearby/internal/dto"
	"nearby/internal/observability/metrics"
	"nearby/internal/service"
)

type Handler struct {
	auth     *service.AuthService
	presence *service.PresenceService
	chat     *service.ChatService
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			writeError(w, http.StatusBadRequest, "Username already exists")
		case errors.Is(err, domain.ErrValidation), errors.Is(err, service.ErrEmptyPassword):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, "username and password are required")
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
			writeError(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, domain.ErrInvalidPassword):
			metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
			writeError(w, http.StatusUnauthorized, "Invalid password")
		case errors.Is(err, domain.ErrValidation):
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, "username and password are required")
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.presence.UpdateLocation(r.Context(), req.UserID, req.Lat, req.Lng); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LocationUpdatesTotal.WithLabelValues("unknown_user").Inc()
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrValidation):
			metrics.LocationUpdatesTotal.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, "userId is required")
		default:
			metrics.LocationUpdatesTotal.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	metrics.LocationUpdatesTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.presence.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleMessageHistory(w http.ResponseWriter, r *http.Request) {
	userID, err1 := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	peerID, err2 := strconv.ParseInt(r.URL.Query().Get("peerId"), 10, 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "userId and peerId are required")
		return
	}
	msgs, err := h.chat.History(r.Context(), userID, peerID)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, "userId and peerId are required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
