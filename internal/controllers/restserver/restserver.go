// Package restserver provides a read-only HTTP API over finalized daily
// insolation totals.
package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/insolation"
	"go.uber.org/zap"
)

var dayKeyRe = regexp.MustCompile(`^\d{8}$`)

// Controller serves daily totals from the artifact cache.
type Controller struct {
	store      artifact.Store
	listenAddr string
	logger     *zap.SugaredLogger
	server     *http.Server
}

// New creates a REST controller over the given artifact store.
func New(store artifact.Store, listenAddr string, logger *zap.SugaredLogger) *Controller {
	c := &Controller{
		store:      store,
		listenAddr: listenAddr,
		logger:     logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/totals", c.handleRecent).Methods(http.MethodGet)
	router.HandleFunc("/totals/{day}", c.handleTotal).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.handleHealth).Methods(http.MethodGet)

	c.server = &http.Server{
		Addr:         listenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return c
}

// Start runs the HTTP server until the context is cancelled.
func (c *Controller) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.server.Shutdown(shutdownCtx); err != nil {
			c.logger.Warnf("REST server shutdown: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("REST server listening on %s", c.listenAddr)
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Errorf("REST server: %v", err)
		}
	}()
}

// defaultRecentLimit bounds an unqualified /totals listing.
const defaultRecentLimit = 30

// handleRecent lists the most recently finalized days, newest first. The
// optional limit query parameter caps the count.
func (c *Controller) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	days, err := c.store.ListDays(artifact.KindDailyTotal)
	if err != nil {
		c.logger.Errorf("listing finalized days: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	totals := make([]*insolation.DailyTotal, 0, limit)
	for i := len(days) - 1; i >= 0 && len(totals) < limit; i-- {
		total, ok, err := insolation.DailyTotalFor(c.store, days[i])
		if err != nil {
			c.logger.Errorf("total lookup for %s: %v", days[i], err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			continue
		}
		totals = append(totals, total)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(totals); err != nil {
		c.logger.Errorf("encoding recent totals: %v", err)
	}
}

func (c *Controller) handleTotal(w http.ResponseWriter, r *http.Request) {
	day := mux.Vars(r)["day"]
	if !dayKeyRe.MatchString(day) {
		http.Error(w, "day must be yyyymmdd", http.StatusBadRequest)
		return
	}

	total, ok, err := insolation.DailyTotalFor(c.store, day)
	if err != nil {
		c.logger.Errorf("total lookup for %s: %v", day, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "day not finalized", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(total); err != nil {
		c.logger.Errorf("encoding total for %s: %v", day, err)
	}
}

func (c *Controller) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
