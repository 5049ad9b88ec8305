package handlers

import (
	"net/http"

	"github.com/moodpair/moodpair/internal/service/diary"
	"github.com/moodpair/moodpair/internal/service/match"
)

// MatchRoutes mounts the matching endpoints.
type MatchRoutes struct {
	h *MatchHandler
}

func NewMatchRoutes(svc *match.Service) *MatchRoutes {
	return &MatchRoutes{h: NewMatchHandler(svc)}
}

func (r *MatchRoutes) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/matching/run", r.h.RunDaily)
	mux.HandleFunc("POST /api/v1/matching/request_exchange", r.h.RequestExchange)
	mux.HandleFunc("POST /api/v1/matching/respond", r.h.Respond)
	mux.HandleFunc("GET /api/v1/matching/status", r.h.Status)
	mux.HandleFunc("GET /api/v1/matching/partner/{partner_id}/diary", r.h.PartnerDiary)
}

// DiaryRoutes mounts the diary, mood and like endpoints.
type DiaryRoutes struct {
	h *DiaryHandler
}

func NewDiaryRoutes(svc *diary.Service) *DiaryRoutes {
	return &DiaryRoutes{h: NewDiaryHandler(svc)}
}

func (r *DiaryRoutes) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/diary", r.h.Create)
	mux.HandleFunc("GET /api/v1/diary", r.h.List)
	mux.HandleFunc("GET /api/v1/diary/{entry_id}", r.h.Get)
	mux.HandleFunc("PUT /api/v1/diary/{entry_id}", r.h.Update)
	mux.HandleFunc("DELETE /api/v1/diary/{entry_id}", r.h.Delete)
	mux.HandleFunc("POST /api/v1/diary/{entry_id}/like", r.h.Like)
	mux.HandleFunc("DELETE /api/v1/diary/{entry_id}/like", r.h.Unlike)
	mux.HandleFunc("POST /api/v1/moods", r.h.CheckinMood)
}
