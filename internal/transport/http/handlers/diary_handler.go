package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	svcErr "github.com/moodpair/moodpair/internal/errors"
	"github.com/moodpair/moodpair/internal/service/diary"
)

type DiaryHandler struct {
	svc *diary.Service
}

func NewDiaryHandler(svc *diary.Service) *DiaryHandler {
	return &DiaryHandler{svc: svc}
}

type entryInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	IsPublic bool   `json:"is_public"`
	Date     string `json:"date"` // YYYY-MM-DD, optional
}

func (in entryInput) toService() (diary.EntryInput, error) {
	input := diary.EntryInput{
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		IsPublic: in.IsPublic,
	}
	if in.Date != "" {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return diary.EntryInput{}, err
		}
		input.Date = date
	}
	return input, nil
}

func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}

	var in entryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	input, err := in.toService()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}

	entry, err := h.svc.CreateEntry(r.Context(), userID, input)
	if err != nil {
		h.writeDiaryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *DiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}
	entryID, ok := pathID(r, "entry_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid entry id")
		return
	}

	entry, err := h.svc.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		h.writeDiaryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}

	var token *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		token = &t
	}

	entries, next, err := h.svc.ListEntries(r.Context(), userID, token, 20)
	if err != nil {
		h.writeDiaryError(w, err)
		return
	}

	resp := map[string]any{"entries": entries}
	if next != nil {
		resp["next_page_token"] = *next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}
	entryID, ok := pathID(r, "entry_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid entry id")
		return
	}

	var in entryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	input, err := in.toService()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}

	entry, err := h.svc.UpdateEntry(r.Context(), userID, entryID, input)
	if err != nil {
		h.writeDiaryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}
	entryID, ok := pathID(r, "entry_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid entry id")
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), userID, entryID); err != nil {
		h.writeDiaryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

func (h *DiaryHandler) CheckinMood(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}

	var in struct {
		Score   int    `json:"score"`
		Weather string `json:"weather"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	mood, err := h.svc.CheckinMood(r.Context(), userID, in.Score, in.Weather)
	if err != nil {
		h.writeDiaryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mood)
}

func (h *DiaryHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.likeAction(w, r, h.svc.LikeEntry)
}

func (h *DiaryHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.likeAction(w, r, h.svc.UnlikeEntry)
}

func (h *DiaryHandler) likeAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, userID, entryID uint64) error) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user")
		return
	}
	entryID, ok := pathID(r, "entry_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid entry id")
		return
	}

	if err := action(r.Context(), userID, entryID); err != nil {
		h.writeDiaryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DiaryHandler) writeDiaryError(w http.ResponseWriter, err error) {
	status := svcErr.HTTPStatus(err)
	switch {
	case errors.Is(err, svcErr.ErrNotFound):
		writeError(w, status, "NOT_FOUND", "entry not found")
	case errors.Is(err, svcErr.ErrForbidden):
		writeError(w, status, "FORBIDDEN", "entry is not public")
	case errors.Is(err, svcErr.ErrInvalidArgument):
		writeError(w, status, "INVALID_ARGUMENT", err.Error())
	default:
		writeError(w, status, "INTERNAL", "something went wrong")
	}
}
