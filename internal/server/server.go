// Package server streams recompute progress and result sets to WebSocket
// subscribers, and accepts recompute and cost-change requests from them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lawnchairsociety/killrate/internal/config"
	"github.com/lawnchairsociety/killrate/internal/consumables"
	"github.com/lawnchairsociety/killrate/internal/database"
	"github.com/lawnchairsociety/killrate/internal/logger"
	"github.com/lawnchairsociety/killrate/internal/pipeline"
	"github.com/lawnchairsociety/killrate/internal/results"
)

// Server owns the engine, the current settings and the subscriber set. At
// most one batch runs at a time; a new request cancels the one in flight.
type Server struct {
	cfg    config.FeedConfig
	engine *pipeline.Engine

	db      *database.Database
	profile string

	mu       sync.Mutex
	settings pipeline.Config
	clients  map[*WebSocketClient]struct{}
	cancel   context.CancelFunc
	last     *pipeline.Batch

	runMu sync.Mutex
	wg    sync.WaitGroup
	gate  *subscriberGate
}

// NewServer creates a feed over engine with the initial settings.
func NewServer(cfg config.FeedConfig, engine *pipeline.Engine, settings pipeline.Config) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		settings: settings,
		clients:  make(map[*WebSocketClient]struct{}),
		gate:     newSubscriberGate(cfg),
	}
	engine.OnProgress = s.onProgress
	return s
}

// SetDatabase enables run history and stores cost changes under profile.
func (s *Server) SetDatabase(db *database.Database, profile string) {
	s.db = db
	s.profile = profile
}

// Handler returns the feed's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/results", s.handleResults)
	mux.HandleFunc("/rates", s.handleRates)
	return mux
}

// ListenAndServe serves until ctx is done, then cancels any running batch
// and shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Feed listening", "address", s.cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop cancels the running batch, waits for it to return and disconnects
// every subscriber.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	subscribers := make([]*WebSocketClient, 0, len(s.clients))
	for c := range s.clients {
		subscribers = append(subscribers, c)
	}
	s.mu.Unlock()
	s.wg.Wait()

	for _, c := range subscribers {
		c.Close()
	}
}

// Last returns the most recent finished batch, or nil.
func (s *Server) Last() *pipeline.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Recompute cancels any batch in flight and starts a new one over targets.
func (s *Server) Recompute(targets []results.Key) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	cfg := s.settings
	cfg.Targets = targets
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.run(ctx, cfg)
	}()
}

func (s *Server) run(ctx context.Context, cfg pipeline.Config) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	s.broadcast(Event{Type: EventStarted})

	batch, err := s.engine.Recompute(ctx, cfg)
	if batch == nil {
		s.broadcast(Event{Type: EventError, Message: err.Error()})
		return
	}
	if s.db != nil {
		run := database.Run{
			ID:         batch.ID,
			StartedAt:  batch.StartedAt,
			FinishedAt: batch.FinishedAt,
			Seed:       batch.Seed,
			Targets:    batch.Results.Len(),
			Failed:     batch.Failed,
			Cancelled:  batch.Cancelled,
		}
		if err := s.db.SaveRun(run, batch.Results); err != nil {
			logger.Error("Failed to store run", "batch", batch.ID, "error", err)
		}
	}

	if err != nil {
		s.broadcast(Event{Type: EventCancelled, BatchID: batch.ID, Results: &batch.Results, Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.last = batch
	s.mu.Unlock()
	s.broadcast(Event{Type: EventBatch, BatchID: batch.ID, Results: &batch.Results})
}

func (s *Server) onProgress(p pipeline.Progress) {
	key, ok := p.Key, p.Success
	s.broadcast(Event{
		Type:    EventProgress,
		BatchID: p.BatchID,
		Key:     &key,
		Done:    p.Done,
		Total:   p.Total,
		Success: &ok,
		Reason:  p.Reason,
	})
}

func (s *Server) broadcast(ev Event) {
	s.mu.Lock()
	clients := make([]*WebSocketClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		s.reply(c, ev)
	}
}

// reply writes ev to one subscriber. A failed write is left to the read loop
// to notice.
func (s *Server) reply(c *WebSocketClient, ev Event) {
	if err := c.Send(ev); err != nil {
		logger.Debug("Feed write failed", "remote_addr", c.RemoteAddr(), "error", err)
	}
}

// setRates replaces the engine's costs. Malformed payloads leave them as
// they were.
func (s *Server) setRates(data []byte) error {
	costs := s.engine.Costs()
	if err := costs.ImportJSON(data); err != nil {
		return err
	}
	if s.db != nil && s.profile != "" {
		if err := s.db.SaveProfile(s.profile, costs.Snapshot()); err != nil {
			logger.Error("Failed to store cost profile", "profile", s.profile, "error", err)
		}
	}
	return nil
}

func (s *Server) handle(c *WebSocketClient, req Request) {
	switch req.Type {
	case RequestRecompute:
		s.Recompute(req.Targets)

	case RequestCancel:
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()

	case RequestSetRates:
		if err := s.setRates(req.Rates); err != nil {
			s.reply(c, Event{Type: EventError, Message: err.Error()})
			return
		}
		if data, err := s.engine.Costs().ExportJSON(); err != nil {
			logger.Debug("Rates export failed", "remote_addr", c.RemoteAddr(), "error", err)
		} else {
			s.broadcast(Event{Type: EventRates, Rates: data})
		}
		s.Recompute(nil)

	case RequestApplyRates:
		if req.Apply == nil {
			s.reply(c, Event{Type: EventError, Message: "apply_rates needs an apply flag"})
			return
		}
		s.mu.Lock()
		s.settings.ApplyRates = *req.Apply
		s.mu.Unlock()
		s.Recompute(nil)

	case requestInvalid:
		s.reply(c, Event{Type: EventError, Message: "malformed request: " + req.Error})

	default:
		s.reply(c, Event{Type: EventError, Message: "unknown request type " + req.Type})
	}
}

// handleWebSocketUpgrade upgrades an HTTP connection to a feed subscription.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := clientAddress(r)

	if err := s.gate.admit(clientIP); err != nil {
		logger.Warning("Feed connection rejected",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP,
			"reason", err)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Feed connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.gate.leave(clientIP)
		return
	}

	go s.handleConnection(NewWebSocketClient(conn, s.cfg.MaxMessageSize), clientIP)
}

func (s *Server) handleConnection(c *WebSocketClient, clientIP string) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	last := s.last
	s.mu.Unlock()

	log := logger.With("client_ip", clientIP)
	subscribers, _ := s.gate.count()
	log.Info("Feed subscriber connected", "subscribers", subscribers)
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		s.gate.leave(clientIP)
		c.Close()
		log.Info("Feed subscriber disconnected")
	}()

	go c.keepAlive(pingPeriod)
	if last != nil {
		s.reply(c, Event{Type: EventBatch, BatchID: last.ID, Results: &last.Results})
	}

	for {
		req, err := c.ReadRequest()
		if err != nil {
			return
		}
		s.handle(c, req)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	last := s.Last()
	if last == nil {
		http.Error(w, "no results yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Event{Type: EventBatch, BatchID: last.ID, Results: &last.Results})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.engine.Costs().ExportJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	case http.MethodPut, http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, max(s.cfg.MaxMessageSize, 1<<16))
		var raw json.RawMessage
		if err := json.NewDecoder(body).Decode(&raw); err != nil {
			http.Error(w, consumables.ErrMalformedRates.Error()+": "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.setRates(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Recompute(nil)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, PUT, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
