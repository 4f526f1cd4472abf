// Package main provides the ledger service binary:
// - HTTP API for the seven ledger instructions and read queries
// - WebSocket stream of committed ledger events
// - Prometheus metrics endpoint
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/engine"
	"duel-crowd-bets/internal/observability"
	"duel-crowd-bets/internal/storage"
	chstore "duel-crowd-bets/internal/storage/clickhouse"
	"duel-crowd-bets/internal/storage/memory"
	"duel-crowd-bets/internal/storage/migrations"
	pgstore "duel-crowd-bets/internal/storage/postgres"
	"duel-crowd-bets/internal/stream"
)

// Server holds all components of the ledger service.
type Server struct {
	processor *engine.Processor
	ledger    storage.LedgerStore
	events    storage.EventStore
	hub       *stream.Hub
	logger    *log.Logger
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP API listen address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ledger, events, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	hub := stream.NewHub(nil)
	defer hub.Close()

	sink := &fanoutSink{
		events: events,
		hub:    hub,
		logger: logger,
	}

	server := &Server{
		processor: engine.NewProcessor(ledger, engine.SystemClock{}, sink),
		ledger:    ledger,
		events:    events,
		hub:       hub,
		logger:    logger,
	}

	// Prometheus metrics server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		logger.Printf("Starting metrics server on %s", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	httpServer := &http.Server{
		Addr:         *listenAddr,
		Handler:      server.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Starting API server on %s", *listenAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the ledger and event stores, running migrations for
// the database-backed pair.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (storage.LedgerStore, storage.EventStore, func(), error) {
	if useMemory {
		return memory.NewLedgerStore(), memory.NewEventStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Println("PostgreSQL migrations applied")

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	logger.Println("ClickHouse migrations applied")

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return pgstore.NewLedgerStore(pool), chstore.NewEventStore(chConn), cleanup, nil
}

// fanoutSink persists committed events and broadcasts them to stream
// subscribers. Both legs are best-effort: the instruction already committed.
type fanoutSink struct {
	events storage.EventStore
	hub    *stream.Hub
	logger *log.Logger
}

func (s *fanoutSink) Publish(ctx context.Context, e domain.LedgerEvent) {
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.events.Insert(insertCtx, &e); err != nil {
		s.logger.Printf("Failed to persist event %s for duel %s: %v", e.Kind, e.Duel, err)
	}
	s.hub.Publish(ctx, e)
	observability.DefaultMetrics.LastCommitTimestamp.Set(float64(e.Timestamp))
}

// routes builds the HTTP API.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/ws", s.hub)

	mux.HandleFunc("POST /v1/duels", s.handleCreate)
	mux.HandleFunc("GET /v1/duels/{address}", s.handleGetDuel)
	mux.HandleFunc("GET /v1/duels/{address}/supports", s.handleListSupports)
	mux.HandleFunc("GET /v1/duels/{address}/events", s.handleListEvents)
	mux.HandleFunc("POST /v1/duels/{address}/deposit", s.handleDeposit)
	mux.HandleFunc("POST /v1/duels/{address}/support", s.handleSupport)
	mux.HandleFunc("POST /v1/duels/{address}/declare-winner", s.handleDeclareWinner)
	mux.HandleFunc("POST /v1/duels/{address}/withdraw-principal", s.handleWithdrawPrincipal)
	mux.HandleFunc("POST /v1/duels/{address}/claim-support", s.handleClaimSupport)
	mux.HandleFunc("POST /v1/duels/{address}/withdraw-spread", s.handleWithdrawSpread)

	return mux
}

// duelResponse is the JSON view of a duel record.
type duelResponse struct {
	Address            domain.Identity `json:"address"`
	ChallengerA        domain.Identity `json:"challenger_a"`
	ChallengerB        domain.Identity `json:"challenger_b"`
	Arbiter            domain.Identity `json:"arbiter"`
	Treasury           domain.Identity `json:"treasury"`
	StakeLamports      uint64          `json:"stake_lamports"`
	DepositedA         bool            `json:"deposited_a"`
	DepositedB         bool            `json:"deposited_b"`
	DeadlineDeposit    int64           `json:"deadline_deposit"`
	DeadlineCrowd      int64           `json:"deadline_crowd"`
	ResolveNotBefore   int64           `json:"resolve_not_before"`
	CrowdPoolA         uint64          `json:"crowd_pool_a"`
	CrowdPoolB         uint64          `json:"crowd_pool_b"`
	SpreadPoolCreators uint64          `json:"spread_pool_creators"`
	SpreadPoolArbiter  uint64          `json:"spread_pool_arbiter"`
	SpreadPoolProtocol uint64          `json:"spread_pool_protocol"`
	SpreadBps          uint16          `json:"spread_bps"`
	CreatorShareBps    uint16          `json:"creator_share_bps"`
	ArbiterShareBps    uint16          `json:"arbiter_share_bps"`
	ProtocolShareBps   uint16          `json:"protocol_share_bps"`
	Status             string          `json:"status"`
	WinnerSide         *domain.Side    `json:"winner_side,omitempty"`
	PrincipalWithdrawn bool            `json:"principal_withdrawn"`
	EscrowLamports     uint64          `json:"escrow_lamports"`
	Bump               uint8           `json:"bump"`
	CreatedAt          int64           `json:"created_at"`
}

func duelView(d *domain.Duel) duelResponse {
	return duelResponse{
		Address:            d.Address,
		ChallengerA:        d.ChallengerA,
		ChallengerB:        d.ChallengerB,
		Arbiter:            d.Arbiter,
		Treasury:           d.Treasury,
		StakeLamports:      d.StakeLamports,
		DepositedA:         d.DepositedA,
		DepositedB:         d.DepositedB,
		DeadlineDeposit:    d.DeadlineDeposit,
		DeadlineCrowd:      d.DeadlineCrowd,
		ResolveNotBefore:   d.ResolveNotBefore,
		CrowdPoolA:         d.CrowdPoolA,
		CrowdPoolB:         d.CrowdPoolB,
		SpreadPoolCreators: d.SpreadPoolCreators,
		SpreadPoolArbiter:  d.SpreadPoolArbiter,
		SpreadPoolProtocol: d.SpreadPoolProtocol,
		SpreadBps:          d.SpreadBps,
		CreatorShareBps:    d.CreatorShareBps,
		ArbiterShareBps:    d.ArbiterShareBps,
		ProtocolShareBps:   d.ProtocolShareBps,
		Status:             d.Status.String(),
		WinnerSide:         d.WinnerSide,
		PrincipalWithdrawn: d.PrincipalWithdrawn,
		EscrowLamports:     d.EscrowLamports,
		Bump:               d.Bump,
		CreatedAt:          d.CreatedAt,
	}
}

// supportResponse is the JSON view of a support position.
type supportResponse struct {
	Address   domain.Identity `json:"address"`
	Duel      domain.Identity `json:"duel"`
	Backer    domain.Identity `json:"backer"`
	Side      domain.Side     `json:"side"`
	NetAmount uint64          `json:"net_amount"`
	Claimed   bool            `json:"claimed"`
	Bump      uint8           `json:"bump"`
	CreatedAt int64           `json:"created_at"`
}

func supportView(p *domain.SupportPosition) supportResponse {
	return supportResponse{
		Address:   p.Address,
		Duel:      p.Duel,
		Backer:    p.Backer,
		Side:      p.Side,
		NetAmount: p.NetAmount,
		Claimed:   p.Claimed,
		Bump:      p.Bump,
		CreatedAt: p.CreatedAt,
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChallengerA      string `json:"challenger_a"`
		ChallengerB      string `json:"challenger_b"`
		Arbiter          string `json:"arbiter"`
		Treasury         string `json:"treasury"`
		StakeLamports    uint64 `json:"stake_lamports"`
		DeadlineDeposit  int64  `json:"deadline_deposit"`
		DeadlineCrowd    int64  `json:"deadline_crowd"`
		ResolveNotBefore int64  `json:"resolve_not_before"`
		SpreadBps        uint16 `json:"spread_bps"`
		CreatorShareBps  uint16 `json:"creator_share_bps"`
		ArbiterShareBps  uint16 `json:"arbiter_share_bps"`
		ProtocolShareBps uint16 `json:"protocol_share_bps"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	params := engine.CreateParams{
		StakeLamports:    req.StakeLamports,
		DeadlineDeposit:  req.DeadlineDeposit,
		DeadlineCrowd:    req.DeadlineCrowd,
		ResolveNotBefore: req.ResolveNotBefore,
		SpreadBps:        req.SpreadBps,
		CreatorShareBps:  req.CreatorShareBps,
		ArbiterShareBps:  req.ArbiterShareBps,
		ProtocolShareBps: req.ProtocolShareBps,
	}
	ok := parseIdent(w, req.ChallengerA, "challenger_a", &params.ChallengerA) &&
		parseIdent(w, req.ChallengerB, "challenger_b", &params.ChallengerB) &&
		parseIdent(w, req.Arbiter, "arbiter", &params.Arbiter) &&
		parseIdent(w, req.Treasury, "treasury", &params.Treasury)
	if !ok {
		return
	}

	start := time.Now()
	d, err := s.processor.Create(r.Context(), params)
	observability.RecordInstruction("create_bet", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeEngineError(w, "create_bet", err)
		return
	}
	observability.DefaultMetrics.DuelsCreated.Inc()
	writeJSON(w, http.StatusCreated, duelView(d))
}

func (s *Server) handleGetDuel(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	d, err := s.ledger.GetDuel(r.Context(), addr)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "duel not found")
			return
		}
		s.logger.Printf("Get duel %s: %v", addr, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, duelView(d))
}

func (s *Server) handleListSupports(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	positions, err := s.ledger.ListSupportsByDuel(r.Context(), addr)
	if err != nil {
		s.logger.Printf("List supports for %s: %v", addr, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]supportResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, supportView(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be in 1..1000")
			return
		}
		limit = n
	}
	events, err := s.events.ListByDuel(r.Context(), addr, limit)
	if err != nil {
		s.logger.Printf("List events for %s: %v", addr, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller string `json:"caller"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	params := engine.DepositParams{Duel: addr}
	if !parseIdent(w, req.Caller, "caller", &params.Caller) {
		return
	}

	start := time.Now()
	res, err := s.processor.Deposit(r.Context(), params)
	observability.RecordInstruction("deposit_participant", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeEngineError(w, "deposit_participant", err)
		return
	}
	observability.DefaultMetrics.LamportsEscrowed.Add(float64(res.Amount))
	writeJSON(w, http.StatusOK, map[string]any{
		"amount": res.Amount,
		"side":   res.Side,
	})
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	var req struct {
		Backer      string `json:"backer"`
		Side        string `json:"side"`
		GrossAmount uint64 `json:"gross_amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	params := engine.SupportParams{Duel: addr, GrossAmount: req.GrossAmount}
	if !parseIdent(w, req.Backer, "backer", &params.Backer) {
		return
	}
	side, sideOK := domain.ParseSide(req.Side)
	if !sideOK {
		writeError(w, http.StatusBadRequest, "side must be A or B")
		return
	}
	params.Side = side

	start := time.Now()
	res, err := s.processor.Support(r.Context(), params)
	observability.RecordInstruction("support_bet", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeEngineError(w, "support_bet", err)
		return
	}
	observability.DefaultMetrics.SupportPlaced.Inc()
	observability.DefaultMetrics.LamportsEscrowed.Add(float64(req.GrossAmount))
	writeJSON(w, http.StatusOK, map[string]any{
		"fee":      res.Fee,
		"net":      res.Net,
		"position": supportView(res.Position),
	})
}

func (s *Server) handleDeclareWinner(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller string `json:"caller"`
		Winner string `json:"winner"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	params := engine.DeclareWinnerParams{Duel: addr}
	if !parseIdent(w, req.Caller, "caller", &params.Caller) {
		return
	}
	winner, sideOK := domain.ParseSide(req.Winner)
	if !sideOK {
		writeError(w, http.StatusBadRequest, "winner must be A or B")
		return
	}
	params.Winner = winner

	start := time.Now()
	d, err := s.processor.DeclareWinner(r.Context(), params)
	observability.RecordInstruction("declare_winner", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeEngineError(w, "declare_winner", err)
		return
	}
	observability.DefaultMetrics.DuelsResolved.Inc()
	writeJSON(w, http.StatusOK, duelView(d))
}

func (s *Server) handleWithdrawPrincipal(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller string `json:"caller"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	params := engine.WithdrawPrincipalParams{Duel: addr}
	if !parseIdent(w, req.Caller, "caller", &params.Caller) {
		return
	}

	start := time.Now()
	res, err := s.processor.WithdrawPrincipal(r.Context(), params)
	observability.RecordInstruction("withdraw_principal", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeEngineError(w, "withdraw_principal", err)
		return
	}
	observability.DefaultMetrics.LamportsPaidOut.Add(float64(res.Amount))
	writeJSON(w, http.StatusOK, map[string]any{"amount": res.Amount})
}

func (s *Server) handleClaimSupport(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	var req struct {
		Backer string `json:"backer"`
		Side   string `json:"side"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	params := engine.ClaimSupportParams{Duel: addr}
	if !parseIdent(w, req.Backer, "backer", &params.Backer) {
		return
	}
	side, sideOK := domain.ParseSide(req.Side)
	if !sideOK {
		writeError(w, http.StatusBadRequest, "side must be A or B")
		return
	}
	params.Side = side

	start := time.Now()
	res, err := s.processor.ClaimSupport(r.Context(), params)
	observability.RecordInstruction("claim_support", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeEngineError(w, "claim_support", err)
		return
	}
	observability.DefaultMetrics.LamportsPaidOut.Add(float64(res.Payout))
	writeJSON(w, http.StatusOK, map[string]any{"payout": res.Payout})
}

func (s *Server) handleWithdrawSpread(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathIdent(w, r)
	if !ok {
		return
	}
	var req struct {
		Caller   string `json:"caller"`
		Treasury string `json:"treasury"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	params := engine.WithdrawSpreadParams{Duel: addr}
	if !parseIdent(w, req.Caller, "caller", &params.Caller) ||
		!parseIdent(w, req.Treasury, "treasury", &params.Treasury) {
		return
	}

	start := time.Now()
	res, err := s.processor.WithdrawSpread(r.Context(), params)
	observability.RecordInstruction("withdraw_spread", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeEngineError(w, "withdraw_spread", err)
		return
	}
	total := res.CreatorA + res.CreatorB + res.Arbiter + res.Protocol
	observability.DefaultMetrics.LamportsPaidOut.Add(float64(total))
	writeJSON(w, http.StatusOK, map[string]any{
		"creator_a": res.CreatorA,
		"creator_b": res.CreatorB,
		"arbiter":   res.Arbiter,
		"protocol":  res.Protocol,
	})
}

// writeEngineError maps engine errors onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, instruction string, err error) {
	var status int
	switch {
	case errors.Is(err, engine.ErrInvalidParameters),
		errors.Is(err, engine.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorized),
		errors.Is(err, engine.ErrWrongSide),
		errors.Is(err, engine.ErrTreasuryMismatch):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrRecordAlreadyExists),
		errors.Is(err, engine.ErrAlreadyDeposited),
		errors.Is(err, engine.ErrAlreadyWithdrawn),
		errors.Is(err, engine.ErrAlreadyClaimed):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrVersionConflict):
		observability.RecordVersionConflict(instruction)
		status = http.StatusConflict
	case errors.Is(err, engine.ErrDepositWindowClosed),
		errors.Is(err, engine.ErrCrowdWindowClosed),
		errors.Is(err, engine.ErrResolveWindowNotOpen),
		errors.Is(err, engine.ErrDepositsIncomplete),
		errors.Is(err, engine.ErrDuelNotOpen),
		errors.Is(err, engine.ErrDuelNotResolved),
		errors.Is(err, engine.ErrNothingToWithdraw),
		errors.Is(err, engine.ErrArithmeticOverflow):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Printf("Instruction %s failed: %v", instruction, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	observability.RecordInstructionError(instruction, http.StatusText(status))
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func parseIdent(w http.ResponseWriter, raw, field string, dst *domain.Identity) bool {
	id, err := domain.ParseIdentity(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %v", field, err))
		return false
	}
	*dst = id
	return true
}

func pathIdent(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, err := domain.ParseIdentity(r.PathValue("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid address: %v", err))
		return domain.Identity{}, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
