package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/broadcast"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/present"
)

// panelResponse is the envelope of every JSON view model
type panelResponse struct {
	Data    any              `json:"data"`
	Origin  backend.Origin   `json:"origin"`
	Banners []present.Banner `json:"banners,omitempty"`
}

func panelJSON(w http.ResponseWriter, data any, meta backend.Meta) {
	writeJSON(w, http.StatusOK, panelResponse{Data: data, Origin: meta.Origin, Banners: bannersFor(meta)})
}

func (s *Server) apiCredibility(w http.ResponseWriter, r *http.Request) {
	rows, meta, err := s.credibility(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panelJSON(w, rows, meta)
}

func (s *Server) apiClaims(w http.ResponseWriter, r *http.Request) {
	items, meta, err := s.claimFeed(r.Context(), strings.TrimSpace(r.URL.Query().Get("topic")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panelJSON(w, items, meta)
}

type verifyResponse struct {
	Verdict *model.ClaimVerdict   `json:"verdict"`
	Display present.StatusDisplay `json:"display"`
}

func (s *Server) apiVerifyClaim(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Claim) == "" {
		badRequest(w, "claim is required")
		return
	}

	verdict, err := s.store.VerifyClaim(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Verdict: verdict, Display: present.StatusDisplayFor(verdict.Status)})
}

func (s *Server) apiTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var level present.RiskLevel
	if raw := q.Get("risk"); raw != "" {
		l, ok := present.ParseRiskLevel(raw)
		if !ok {
			badRequest(w, "risk must be one of high, medium, low")
			return
		}
		level = l
	}

	refresh, _ := strconv.ParseBool(q.Get("refresh"))
	view, meta, err := s.topicCards(r.Context(), level, refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panelJSON(w, view, meta)
}

func (s *Server) apiAnalyzeTopics(w http.ResponseWriter, r *http.Request) {
	topics, meta, err := s.store.AnalyzeTopics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panelJSON(w, newTopicsView(topics, ""), meta)
}

func (s *Server) apiTopic(w http.ResponseWriter, r *http.Request) {
	detail, meta, err := s.store.Topic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := newTopicData(detail, s.now())
	panelJSON(w, map[string]any{
		"topic":      data.Card,
		"feed":       data.Feed,
		"comparison": data.Comparison,
	}, meta)
}

func (s *Server) apiChart(w http.ResponseWriter, r *http.Request) {
	var (
		chart any
		meta  backend.Meta
		err   error
	)
	switch chi.URLParam(r, "chart") {
	case "claims":
		chart, meta, err = s.claimsChart(r.Context())
	case "sources":
		chart, meta, err = s.sourcesChart(r.Context())
	case "trend":
		chart, meta, err = s.trendChart(r.Context())
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown chart; expected claims, sources or trend"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panelJSON(w, chart, meta)
}

func (s *Server) apiGraph(w http.ResponseWriter, r *http.Request) {
	view, meta, err := s.graph(r.Context(), strings.TrimSpace(r.URL.Query().Get("topic")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panelJSON(w, view, meta)
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	cards, meta, err := s.statCards(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panelJSON(w, cards, meta)
}

func (s *Server) apiListBriefings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.briefings.List())
}

func readBriefingRequest(r *http.Request) (broadcast.Request, error) {
	var req broadcast.Request
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req = broadcast.Request{
			Topic:    r.PostFormValue("topic"),
			Tone:     r.PostFormValue("tone"),
			Duration: r.PostFormValue("duration"),
			Voice:    r.PostFormValue("voice"),
		}
	}
	req.Topic = strings.TrimSpace(req.Topic)
	return req, nil
}

func (s *Server) apiSubmitBriefing(w http.ResponseWriter, r *http.Request) {
	req, err := readBriefingRequest(r)
	if err != nil {
		badRequest(w, "invalid briefing request: "+err.Error())
		return
	}
	if req.Topic == "" {
		if wantsHTML(r) {
			s.renderAnchor(w, r, http.StatusBadRequest, []present.Banner{{Variant: present.VariantWarning, Message: "Enter a topic for the briefing."}}, req)
			return
		}
		badRequest(w, "topic is required")
		return
	}

	job, err := s.briefings.Submit(r.Context(), req)
	if err != nil {
		if wantsHTML(r) {
			banner := present.Banner{Variant: present.VariantDanger, Message: err.Error()}
			if errors.Is(err, model.ErrUnreachableService) {
				banner = present.BannerStudioOffline
			}
			s.renderAnchor(w, r, statusFor(err), []present.Banner{banner}, req)
			return
		}
		s.writeError(w, r, err)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/anchor", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) apiPreviewBriefing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := broadcast.Request{
		Topic:    strings.TrimSpace(q.Get("topic")),
		Tone:     q.Get("tone"),
		Duration: q.Get("duration"),
	}
	if req.Topic == "" {
		badRequest(w, "topic is required")
		return
	}

	result, err := s.briefings.Script(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) apiGetBriefing(w http.ResponseWriter, r *http.Request) {
	job, ok := s.briefings.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, r, broadcast.ErrJobNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) apiCancelBriefing(w http.ResponseWriter, r *http.Request) {
	job, err := s.briefings.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, model.ErrUnreachableService) {
		if wantsHTML(r) && errors.Is(err, broadcast.ErrJobFinished) {
			http.Redirect(w, r, "/anchor", http.StatusSeeOther)
			return
		}
		s.writeError(w, r, err)
		return
	}
	if err != nil {
		s.logger.Warn("studio did not acknowledge cancel", zap.String("job", job.ID), zap.Error(err))
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/anchor", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
