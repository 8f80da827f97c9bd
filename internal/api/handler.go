package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/binpacking/internal/benchmark"
	"github.com/eugenenazirov/binpacking/internal/metrics"
	"github.com/eugenenazirov/binpacking/internal/packing"
	"github.com/eugenenazirov/binpacking/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// BenchmarkLimits caps the sweeps accepted by the benchmark endpoint.
type BenchmarkLimits struct {
	MaxSizes  int
	MaxItems  int
	MaxTrials int
}

// unknownStrategyLabel replaces unresolvable strategy names in metric labels.
const unknownStrategyLabel = "unknown"

var defaultBenchmarkLimits = BenchmarkLimits{MaxSizes: 50, MaxItems: 5000, MaxTrials: 20}

// Handler wires packer, storage and harness dependencies into HTTP handlers.
type Handler struct {
	packer  packing.Packer
	storage storage.Storage
	harness *benchmark.Harness
	metrics metrics.Recorder
	limits  BenchmarkLimits

	clock func() time.Time

	mu                sync.RWMutex
	settingsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics sets the recorder that observes pack requests.
func WithMetrics(recorder metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		h.metrics = recorder
	}
}

// WithHarness overrides the benchmark harness.
func WithHarness(harness *benchmark.Harness) HandlerOption {
	return func(h *Handler) {
		h.harness = harness
	}
}

// WithBenchmarkLimits overrides the sweep limits of the benchmark endpoint.
func WithBenchmarkLimits(limits BenchmarkLimits) HandlerOption {
	return func(h *Handler) {
		h.limits = limits
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(packer packing.Packer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:  packer,
		storage: store,
		metrics: metrics.NewNop(),
		limits:  defaultBenchmarkLimits,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.harness == nil {
		h.harness = benchmark.New(packer)
	}
	h.settingsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStrategies(w http.ResponseWriter, r *http.Request) {
	_ = r
	all := packing.Strategies()
	resp := strategiesResponse{
		Strategies:    make([]strategyInfo, 0, len(all)),
		MaxExactItems: packing.MaxExactItems,
	}
	for _, s := range all {
		resp.Strategies = append(resp.Strategies, strategyInfo{
			Name:      s,
			Aliases:   s.Aliases(),
			Heuristic: s.Heuristic(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(settings, ""))
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	current, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if req.Capacity != nil {
		current.Capacity = *req.Capacity
	}
	if req.Strategy != nil {
		current.Strategy = packing.Strategy(*req.Strategy)
	}

	if err := h.storage.SetSettings(current); err != nil {
		if errors.Is(err, storage.ErrInvalidCapacity) || errors.Is(err, storage.ErrInvalidStrategy) {
			writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markSettingsUpdated()

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(settings, "Settings updated successfully"))
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	capacity := settings.Capacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}

	strategy := settings.Strategy
	if req.Strategy != "" {
		strategy, err = packing.ParseStrategy(req.Strategy)
		if err != nil {
			h.metrics.IncPackError(unknownStrategyLabel, "unknown_strategy")
			writeError(w, http.StatusBadRequest, "Invalid strategy", err.Error())
			return
		}
	}

	start := time.Now()
	result, packErr := h.packer.Pack(r.Context(), req.Items, capacity, strategy)
	elapsed := time.Since(start)

	if packErr != nil {
		h.writePackError(w, strategy, len(req.Items), packErr)
		return
	}

	utilization := result.Utilization(capacity)
	h.metrics.ObservePack(string(strategy), elapsed, result.Bins(), utilization)

	resp := packResponse{
		Strategy:          strategy,
		Capacity:          capacity,
		Items:             len(req.Items),
		Bins:              result,
		BinCount:          result.Bins(),
		TotalSize:         result.Total(),
		Utilization:       utilization,
		CalculationTimeUs: elapsed.Microseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writePackError(w http.ResponseWriter, strategy packing.Strategy, items int, err error) {
	var itemErr *packing.ItemError
	switch {
	case errors.As(err, &itemErr):
		h.metrics.IncPackError(string(strategy), "invalid_item")
		writeError(w, http.StatusBadRequest, "Invalid item", err.Error())
	case errors.Is(err, packing.ErrInvalidCapacity):
		h.metrics.IncPackError(string(strategy), "invalid_capacity")
		writeError(w, http.StatusBadRequest, "Invalid capacity", err.Error())
	case errors.Is(err, packing.ErrTooManyItems):
		h.metrics.IncPackError(string(strategy), "too_many_items")
		suggestion := fmt.Sprintf("Reduce the order to at most %d items or choose a heuristic strategy such as %s for %d items",
			packing.MaxExactItems, packing.StrategyFirstFitDecreasing, items)
		writeError(w, http.StatusUnprocessableEntity, "Too many items for exact solver", err.Error(), suggestion)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.metrics.IncPackError(string(strategy), "canceled")
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
	default:
		h.metrics.IncPackError(string(strategy), "internal")
		writeInternalError(w, err)
	}
}

func (h *Handler) handleValidateBin(w http.ResponseWriter, r *http.Request) {
	var req validateBinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	capacity := 0.0
	if req.Capacity != nil {
		capacity = *req.Capacity
	} else {
		settings, err := h.storage.GetSettings()
		if err != nil {
			writeInternalError(w, err)
			return
		}
		capacity = settings.Capacity
	}
	if !(capacity > 0) {
		writeError(w, http.StatusBadRequest, "Invalid capacity", packing.ErrInvalidCapacity.Error())
		return
	}

	var total float64
	for _, item := range req.Items {
		total += item
	}

	writeJSON(w, http.StatusOK, validateBinResponse{
		Valid:    packing.IsValidBin(req.Items, capacity),
		Total:    total,
		Capacity: capacity,
	})
}

func (h *Handler) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	var req benchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	cfg, err := h.benchmarkConfig(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid benchmark", err.Error())
		return
	}

	report, err := h.harness.Run(r.Context(), cfg)
	if err != nil {
		switch {
		case errors.Is(err, benchmark.ErrInvalidConfig):
			writeError(w, http.StatusBadRequest, "Invalid benchmark", err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// benchmarkConfig translates a request into a harness configuration and
// enforces the service limits.
func (h *Handler) benchmarkConfig(req benchmarkRequest) (benchmark.Config, error) {
	cfg := benchmark.Config{
		Sizes:   req.Sizes,
		Trials:  req.Trials,
		MinItem: req.MinItem,
		MaxItem: req.MaxItem,
		Seed:    req.Seed,
	}

	if req.Capacity != nil {
		cfg.Capacity = *req.Capacity
	} else {
		settings, err := h.storage.GetSettings()
		if err != nil {
			return benchmark.Config{}, err
		}
		cfg.Capacity = settings.Capacity
	}

	for _, raw := range req.Strategies {
		s, err := packing.ParseStrategy(raw)
		if err != nil {
			return benchmark.Config{}, err
		}
		cfg.Strategies = append(cfg.Strategies, s)
	}

	if len(cfg.Sizes) == 0 {
		cfg.Sizes = benchmark.DefaultSizes()
	}
	if len(cfg.Sizes) > h.limits.MaxSizes {
		return benchmark.Config{}, fmt.Errorf("at most %d sizes are allowed, got %d", h.limits.MaxSizes, len(cfg.Sizes))
	}
	for _, n := range cfg.Sizes {
		if n > h.limits.MaxItems {
			return benchmark.Config{}, fmt.Errorf("size %d exceeds the limit of %d items", n, h.limits.MaxItems)
		}
	}
	if cfg.Trials > h.limits.MaxTrials {
		return benchmark.Config{}, fmt.Errorf("at most %d trials are allowed, got %d", h.limits.MaxTrials, cfg.Trials)
	}

	return cfg, nil
}

func (h *Handler) settingsResponse(settings storage.Settings, message string) settingsResponse {
	return settingsResponse{
		Capacity:  settings.Capacity,
		Strategy:  settings.Strategy,
		UpdatedAt: h.currentSettingsUpdatedAt(),
		Message:   message,
	}
}

func (h *Handler) currentSettingsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settingsUpdatedAt
}

func (h *Handler) markSettingsUpdated() {
	h.mu.Lock()
	h.settingsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type packRequest struct {
	Items    []float64 `json:"items"`
	Capacity *float64  `json:"capacity,omitempty"`
	Strategy string    `json:"strategy,omitempty"`
}

type packResponse struct {
	Strategy          packing.Strategy `json:"strategy"`
	Capacity          float64          `json:"capacity"`
	Items             int              `json:"items"`
	Bins              packing.Result   `json:"bins"`
	BinCount          int              `json:"binCount"`
	TotalSize         float64          `json:"totalSize"`
	Utilization       float64          `json:"utilization"`
	CalculationTimeUs int64            `json:"calculationTimeUs"`
}

type validateBinRequest struct {
	Items    []float64 `json:"items"`
	Capacity *float64  `json:"capacity,omitempty"`
}

type validateBinResponse struct {
	Valid    bool    `json:"valid"`
	Total    float64 `json:"total"`
	Capacity float64 `json:"capacity"`
}

type benchmarkRequest struct {
	Sizes      []int    `json:"sizes"`
	Trials     int      `json:"trials"`
	Capacity   *float64 `json:"capacity,omitempty"`
	MinItem    float64  `json:"minItem"`
	MaxItem    float64  `json:"maxItem"`
	Strategies []string `json:"strategies"`
	Seed       uint64   `json:"seed"`
}

type settingsRequest struct {
	Capacity *float64 `json:"capacity"`
	Strategy *string  `json:"strategy"`
}

type settingsResponse struct {
	Capacity  float64          `json:"capacity"`
	Strategy  packing.Strategy `json:"strategy"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Message   string           `json:"message,omitempty"`
}

type strategyInfo struct {
	Name      packing.Strategy `json:"name"`
	Aliases   []string         `json:"aliases"`
	Heuristic bool             `json:"heuristic"`
}

type strategiesResponse struct {
	Strategies    []strategyInfo `json:"strategies"`
	MaxExactItems int            `json:"maxExactItems"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
