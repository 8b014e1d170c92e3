package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/client"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/history"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/hub"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/matchcontext"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/valuation"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/value-engine/sports/soccer"
)

// maxBodyBytes bounds snapshot request bodies
const maxBodyBytes = 1 << 20

// maxHistoryLimit bounds the limit query parameter of history routes
const maxHistoryLimit = 100

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HealthCheck is a named dependency probe
type HealthCheck func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	engine   *valuation.Engine
	archives matchcontext.ArchiveProvider
	contexts *matchcontext.Builder
	hub      *hub.Hub // Optional; nil disables /ws
	soccer   *soccer.Config
	checks   map[string]HealthCheck
	logger   *zap.Logger

	// ctx outlives requests so WebSocket pumps survive the upgrade handler
	ctx context.Context
	now func() time.Time
}

// NewHandler creates a new handler
func NewHandler(
	ctx context.Context,
	engine *valuation.Engine,
	archives matchcontext.ArchiveProvider,
	contexts *matchcontext.Builder,
	h *hub.Hub,
	soccerConfig *soccer.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:   engine,
		archives: archives,
		contexts: contexts,
		hub:      h,
		soccer:   soccerConfig,
		checks:   make(map[string]HealthCheck),
		logger:   logger,
		ctx:      ctx,
		now:      time.Now,
	}
}

// AddHealthCheck registers a dependency probe reported by /health
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// ValuationRequest is a snapshot plus an optional allow-list override.
// A present but empty allowed_bookmakers makes every bookmaker eligible.
type ValuationRequest struct {
	models.FixtureSnapshot
	AllowedBookmakers *[]string `json:"allowed_bookmakers,omitempty"`
}

// ValuationResponse is a valuation with its outcomes above the minimum edge
type ValuationResponse struct {
	models.Valuation
	MinEdgePct    float64               `json:"min_edge_pct"`
	ValueOutcomes []models.ValueOutcome `json:"value_outcomes"`
}

// StakeRequest sizes a single outcome
type StakeRequest struct {
	Outcome         models.Outcome `json:"outcome,omitempty"`
	BestPrice       float64        `json:"best_price"`
	ReferencePrice  float64        `json:"reference_price"`
	FairProbability float64        `json:"fair_probability,omitempty"`
	Bankroll        float64        `json:"bankroll,omitempty"`
	KellyMultiplier float64        `json:"kelly_multiplier,omitempty"`
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]interface{}{
		"status":  "healthy",
		"service": "value-engine",
		"checks":  checks,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if h.hub != nil {
		body["active_clients"] = h.hub.GetClientCount()
	}

	respondJSON(w, status, body)
}

// Valuate values one snapshot
func (h *Handler) Valuate(w http.ResponseWriter, r *http.Request) {
	var req ValuationRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.FixtureID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	var v models.Valuation
	if req.AllowedBookmakers != nil {
		v = h.engine.EvaluateWithAllowList(req.FixtureSnapshot, *req.AllowedBookmakers)
	} else {
		v = h.engine.Evaluate(req.FixtureSnapshot)
	}
	v.ValuationID = uuid.NewString()
	v.ValuedAt = h.now().UTC()

	outcomes := v.ValueOutcomes(h.soccer.MinEdgePct)
	if outcomes == nil {
		outcomes = []models.ValueOutcome{}
	}

	respondJSON(w, http.StatusOK, ValuationResponse{
		Valuation:     v,
		MinEdgePct:    h.soccer.MinEdgePct,
		ValueOutcomes: outcomes,
	})
}

// Stake sizes a stake from raw prices
func (h *Handler) Stake(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.Bankroll == 0 {
		req.Bankroll = h.soccer.DefaultBankroll
	}
	if req.Bankroll < 0 {
		respondError(w, http.StatusBadRequest, "bankroll must be non-negative")
		return
	}
	if req.KellyMultiplier < 0 || req.KellyMultiplier > 1.0 {
		respondError(w, http.StatusBadRequest, "kelly_multiplier must be between 0 and 1")
		return
	}
	if req.BestPrice <= 1 {
		respondError(w, http.StatusBadRequest, "best_price must be greater than 1")
		return
	}
	if req.ReferencePrice <= 1 && req.FairProbability <= 0 {
		respondError(w, http.StatusBadRequest, "reference_price or fair_probability is required")
		return
	}

	rec := h.engine.Sizer().Size(valuation.StakeInput{
		Outcome:         req.Outcome,
		Bankroll:        req.Bankroll,
		BestPrice:       req.BestPrice,
		ReferencePrice:  req.ReferencePrice,
		FairProbability: req.FairProbability,
		Multiplier:      req.KellyMultiplier,
	})

	respondJSON(w, http.StatusOK, rec)
}

// HeadToHead returns recent meetings between two teams
func (h *Handler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	home, away := r.URL.Query().Get("home"), r.URL.Query().Get("away")
	if home == "" || away == "" {
		respondError(w, http.StatusBadRequest, "home and away are required")
		return
	}
	limit, err := queryInt(r, "limit", history.DefaultHeadToHeadLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	archive, ok := h.archive(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, archive.HeadToHead(home, away, limit))
}

// Form returns a team's recent results
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		respondError(w, http.StatusBadRequest, "team is required")
		return
	}
	limit, err := queryInt(r, "limit", history.DefaultFormLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	archive, ok := h.archive(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, archive.Form(team, limit))
}

// OddsPerformance backtests a team at a price
func (h *Handler) OddsPerformance(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		respondError(w, http.StatusBadRequest, "team is required")
		return
	}
	odds, err := strconv.ParseFloat(r.URL.Query().Get("odds"), 64)
	if err != nil || odds <= 1 {
		respondError(w, http.StatusBadRequest, "odds must be a decimal price greater than 1")
		return
	}

	archive, ok := h.archive(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, archive.OddsPerformance(team, odds))
}

// MatchContext builds the narrative context for a snapshot
// The league comes from ?league= or the snapshot's sport key.
func (h *Handler) MatchContext(w http.ResponseWriter, r *http.Request) {
	var snapshot models.FixtureSnapshot
	if err := decodeBody(w, r, &snapshot); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if snapshot.FixtureID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	league := r.URL.Query().Get("league")
	if league == "" {
		code, ok := soccer.ArchiveLeague(snapshot.SportKey)
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("no archive league for sport %q, pass ?league=", snapshot.SportKey))
			return
		}
		league = code
	}

	mc, cached, err := h.contexts.Build(r.Context(), league, snapshot)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	respondJSON(w, http.StatusOK, mc)
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "live valuations are disabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("⚠️  WebSocket upgrade error", zap.Error(err))
		return
	}

	c := client.NewClient(uuid.NewString(), conn, h.hub, h.logger)
	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

// archive loads the {league} archive, writing a 503 on failure
func (h *Handler) archive(w http.ResponseWriter, r *http.Request) (*history.Archive, bool) {
	league := chi.URLParam(r, "league")
	archive, err := h.archives.Archive(r.Context(), league)
	if err != nil {
		h.logger.Warn("archive unavailable", zap.String("league", league), zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "archive unavailable")
		return nil, false
	}
	return archive, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 || parsed > maxHistoryLimit {
		return 0, fmt.Errorf("%s must be an integer between 1 and %d", key, maxHistoryLimit)
	}
	return parsed, nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
