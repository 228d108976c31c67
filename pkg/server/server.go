// Package server exposes the per-period expense summaries over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caaosorio/expenses/pkg/api"
	"github.com/caaosorio/expenses/pkg/collector"
	"github.com/caaosorio/expenses/pkg/envelope"
	"github.com/caaosorio/expenses/pkg/store/postgres"
)

// Reporter produces records and summaries for a period. Satisfied by
// collector.Collector.
type Reporter interface {
	Collect(ctx context.Context, period api.Period) ([]api.TransactionRecord, error)
	Summary(ctx context.Context, period api.Period) (api.Summary, error)
}

// MerchantSource serves per-merchant purchase aggregates. Satisfied by
// the Postgres store; nil disables the merchants endpoint.
type MerchantSource interface {
	MerchantTotalsSince(ctx context.Context, since time.Time) ([]postgres.MerchantTotal, error)
}

// Config holds server settings.
type Config struct {
	// Addr is the listen address.
	Addr string
	// Token is the required bearer token; empty disables auth.
	Token string
}

// Server is the reporting API.
type Server struct {
	reporter  Reporter
	merchants MerchantSource
	cfg       Config
	logger    *slog.Logger
}

// New creates the server.
func New(reporter Reporter, merchants MerchantSource, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{reporter: reporter, merchants: merchants, cfg: cfg, logger: logger}
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /expenses/{period}", s.auth(s.handleSummary))
	mux.HandleFunc("GET /expenses/{period}/records", s.auth(s.handleRecords))
	mux.HandleFunc("GET /merchants/{period}", s.auth(s.handleMerchants))
	return mux
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("reporting API listening", "addr", s.cfg.Addr)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// auth verifies the bearer token with a constant-time comparison.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(r.PathValue("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown period")
		return
	}

	summary, err := s.reporter.Summary(r.Context(), period)
	if err != nil {
		s.logger.Error("summary failed", "period", string(period), "error", err)
		writeError(w, http.StatusBadGateway, "collection failed")
		return
	}

	writeJSON(w, http.StatusOK, summaryPayload(summary))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(r.PathValue("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown period")
		return
	}

	records, err := s.reporter.Collect(r.Context(), period)
	if err != nil {
		s.logger.Error("collection failed", "period", string(period), "error", err)
		writeError(w, http.StatusBadGateway, "collection failed")
		return
	}
	if records == nil {
		records = []api.TransactionRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleMerchants(w http.ResponseWriter, r *http.Request) {
	if s.merchants == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	period, ok := parsePeriod(r.PathValue("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown period")
		return
	}

	since, err := collector.PeriodStart(period, time.Now().In(envelope.CivilZone))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown period")
		return
	}

	totals, err := s.merchants.MerchantTotalsSince(r.Context(), since)
	if err != nil {
		s.logger.Error("merchant totals failed", "error", err)
		writeError(w, http.StatusBadGateway, "query failed")
		return
	}
	if totals == nil {
		totals = []postgres.MerchantTotal{}
	}

	writeJSON(w, http.StatusOK, totals)
}

// summaryBuckets fixes the JSON field per kind.
var summaryBuckets = []struct {
	field string
	kind  api.Kind
}{
	{"purchases", api.KindPurchase},
	{"withdrawals", api.KindWithdrawal},
	{"payment", api.KindPayment},
	{"transfer_reception", api.KindIncomingTransfer},
	{"transfer_qr", api.KindQRTransfer},
	{"transfer", api.KindOutgoingTransfer},
}

func summaryPayload(summary api.Summary) map[string]api.Bucket {
	payload := make(map[string]api.Bucket, len(summaryBuckets))
	for _, sb := range summaryBuckets {
		payload[sb.field] = summary.Buckets[sb.kind]
	}
	return payload
}

// parsePeriod accepts the interactive periods. The "from_origin"
// backfill is a CLI concern and deliberately not reachable over HTTP.
func parsePeriod(raw string) (api.Period, bool) {
	switch p := api.Period(raw); p {
	case api.PeriodDaily, api.PeriodWeekly, api.PeriodPartialWeekly, api.PeriodMonthly:
		return p, true
	default:
		return "", false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
