package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"noticeperiod/internal/achievement"
	"noticeperiod/internal/certificate"
	"noticeperiod/internal/config"
	"noticeperiod/internal/game"
	"noticeperiod/internal/share"
	"noticeperiod/internal/viral"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const identityContextKey contextKey = "identity"

const (
	headerPostID = "X-Post-Id"
	headerUserID = "X-User-Id"
)

// Publisher posts share text somewhere public. *share.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, post share.Post) (string, error)
}

type Server struct {
	cfg   config.APIConfig
	log   *slog.Logger
	game  *game.Service
	viral *viral.Generator
	share Publisher
	now   func() time.Time
	mux   *chi.Mux
}

// New wires the router. publisher may be nil, in which case /api/share
// answers 503.
func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service, gen *viral.Generator, publisher Publisher) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = viral.NewGenerator(cfg.RandSeed)
	}
	s := &Server{
		cfg:   cfg,
		log:   logger,
		game:  gameSvc,
		viral: gen,
		share: publisher,
		now:   time.Now,
		mux:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/challenge", s.handleChallenge)
		r.Post("/ai/generate", s.handleAIGenerate)

		r.Group(func(r chi.Router) {
			r.Use(s.identityMiddleware)
			r.Get("/init", s.handleInit)
			r.Get("/game/state", s.handleState)
			r.Post("/game/choice", s.handleChoice)
			r.Post("/game/reset", s.handleReset)
			r.Get("/game/certificate", s.handleCertificate)
			r.Get("/achievements", s.handleAchievements)
			r.Post("/share", s.handleShare)
		})
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// identityMiddleware reads the platform identity. Handlers decide which
// parts are required.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := game.Identity{
			PostID: firstNonEmpty(r.Header.Get(headerPostID), r.URL.Query().Get("postId")),
			UserID: firstNonEmpty(r.Header.Get(headerUserID), r.URL.Query().Get("userId")),
		}
		ctx := context.WithValue(r.Context(), identityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) game.Identity {
	id, _ := ctx.Value(identityContextKey).(game.Identity)
	return id
}

// playerIdentity returns false after writing a 400 when either id is missing.
func playerIdentity(w http.ResponseWriter, r *http.Request) (game.Identity, bool) {
	id := identityFromContext(r.Context())
	if id.PostID == "" || id.UserID == "" {
		writeError(w, http.StatusBadRequest, "postId and userId required")
		return id, false
	}
	return id, true
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	if id.PostID == "" {
		writeError(w, http.StatusBadRequest, "postId is required but missing from context")
		return
	}
	if _, err := s.game.InitPost(r.Context(), id.PostID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "postId": id.PostID})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIdentity(w, r)
	if !ok {
		return
	}
	state, err := s.game.State(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"gameState": map[string]any{
			"player":       state.Player,
			"currentStep":  state.CurrentStep,
			"gameComplete": state.GameComplete,
			"leaderboard":  s.leaderboard(r.Context()),
		},
	})
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIdentity(w, r)
	if !ok {
		return
	}
	var in struct {
		Choice      string `json:"choice"`
		ChoiceIndex *int   `json:"choiceIndex"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Choice) == "" {
		writeError(w, http.StatusBadRequest, "Choice is required")
		return
	}
	if in.ChoiceIndex == nil {
		writeError(w, http.StatusBadRequest, "choiceIndex is required")
		return
	}

	res, err := s.game.ApplyChoice(r.Context(), game.ChoiceInput{
		Identity:       id,
		Choice:         in.Choice,
		ChoiceIndex:    *in.ChoiceIndex,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	days := res.Player.DaysSurvived()
	choice := strings.TrimSpace(in.Choice)
	unlocked := make([]achievement.Status, 0, len(res.NewAchievements))
	for _, a := range res.NewAchievements {
		unlocked = append(unlocked, achievement.Status{Achievement: a, Unlocked: true})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"player":          res.Player,
		"nextStep":        res.NextStep,
		"viralPost":       s.viral.RedditPost(days, res.Player.StressLevel, res.Step.Scenario, choice),
		"achievement":     s.viral.ShareableAchievement(days, choice, res.Player.StressLevel),
		"stressChange":    res.StressChange,
		"moneyChange":     res.MoneyChange,
		"newAchievements": unlocked,
		"gameComplete":    res.GameComplete,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIdentity(w, r)
	if !ok {
		return
	}
	if _, err := s.game.ResetPlayer(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Game reset successfully"})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIdentity(w, r)
	if !ok {
		return
	}
	list, err := s.game.Achievements(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "achievements": list})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "leaderboard": s.leaderboard(r.Context())})
}

// leaderboard prefers the worker's snapshot. Failures fall back to the
// simulated board since the numbers are cosmetic.
func (s *Server) leaderboard(ctx context.Context) viral.LeaderboardData {
	lb, found, err := s.game.LeaderboardSnapshot(ctx)
	if err != nil {
		s.log.Warn("leaderboard snapshot unavailable", "err", err)
	}
	if err == nil && found {
		return lb
	}
	return s.viral.Leaderboard()
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	week := viral.CurrentWeek(s.now())
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "week must be an integer")
			return
		}
		week = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "challenge": s.viral.CommunityChallenge(week)})
}

func (s *Server) handleAIGenerate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Prompt string `json:"prompt"`
		Step   int    `json:"step"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "content": viral.Generate(in.Prompt, in.Step)})
}

func (s *Server) handleCertificate(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIdentity(w, r)
	if !ok {
		return
	}
	p, err := s.game.Player(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	pdf, err := certificate.Generate(p, r.URL.Query().Get("name"), s.now())
	if err != nil {
		s.log.Error("certificate render failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to render certificate")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="notice-period-certificate.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIdentity(w, r)
	if !ok {
		return
	}
	if s.share == nil {
		writeError(w, http.StatusServiceUnavailable, share.ErrNotConfigured.Error())
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	p, err := s.game.Player(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		last := ""
		if n := len(p.ChoicesMade); n > 0 {
			last = p.ChoicesMade[n-1]
		}
		text = s.viral.ShareableAchievement(p.DaysSurvived(), last, p.StressLevel)
	}
	msgID, err := s.share.Publish(r.Context(), share.Post{
		Title: fmt.Sprintf("Day %d of The Notice Period", p.DaysSurvived()),
		Text:  text,
		URL:   s.cfg.ShareURL,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "messageId": msgID})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrDuplicateChoice):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON ignores unknown fields; embedding clients add their own.
func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": "error", "message": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Idempotency-Key"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
