package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	svcErr "github.com/moodpair/moodpair/internal/errors"
	"github.com/moodpair/moodpair/internal/service/match"
)

// MatchHandler adapts the matching service onto HTTP. The route shapes are
// thin; all behavior lives in the service.
type MatchHandler struct {
	svc *match.Service
}

func NewMatchHandler(svc *match.Service) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// RunDaily triggers an automatic matching run. Intended for the scheduler,
// not end users.
func (h *MatchHandler) RunDaily(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target_keyword")

	pairs, err := h.svc.RunDailyMatching(r.Context(), target)
	if err != nil {
		h.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pairs)
}

func (h *MatchHandler) RequestExchange(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}

	result, err := h.svc.RequestExchange(r.Context(), userID)
	if err != nil {
		h.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MatchHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}

	var input struct {
		RequesterID uint64 `json:"requester_id"`
		Action      string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	if err := h.svc.RespondToRequest(r.Context(), input.RequesterID, userID, input.Action); err != nil {
		h.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func (h *MatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}

	status, err := h.svc.GetStatus(r.Context(), userID)
	if err != nil {
		h.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *MatchHandler) PartnerDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}
	partnerID, ok := pathID(r, "partner_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid partner id")
		return
	}

	entries, err := h.svc.GetPartnerDiary(r.Context(), userID, partnerID)
	if err != nil {
		h.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *MatchHandler) writeMatchError(w http.ResponseWriter, err error) {
	status := svcErr.HTTPStatus(err)
	switch {
	case errors.Is(err, svcErr.ErrNotEligible):
		writeError(w, status, "NOT_ELIGIBLE", "already matched or pending")
	case errors.Is(err, svcErr.ErrRateLimited):
		writeError(w, status, "RATE_LIMITED", "match limit reached, try again later")
	case errors.Is(err, svcErr.ErrNotFound):
		writeError(w, status, "NOT_FOUND", "no such request")
	case errors.Is(err, svcErr.ErrForbidden):
		writeError(w, status, "FORBIDDEN", "not matched with this user")
	case errors.Is(err, svcErr.ErrConflict):
		writeError(w, status, "CONFLICT", "pairing already active")
	case errors.Is(err, svcErr.ErrInvalidArgument):
		writeError(w, status, "INVALID_ARGUMENT", err.Error())
	default:
		writeError(w, status, "INTERNAL", "something went wrong")
	}
}
