// Package pylearnserver serves the chat API, the database browser and the
// admin endpoints that trigger collection and training.
package pylearnserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	metricsprom "github.com/slok/go-http-metrics/metrics/prometheus"
	metricsmw "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"

	configv1 "github.com/simsonbaroi/OrionAiTesting/pkg/apis/config/v1"
	"github.com/simsonbaroi/OrionAiTesting/pkg/api"
	"github.com/simsonbaroi/OrionAiTesting/pkg/cache"
	"github.com/simsonbaroi/OrionAiTesting/pkg/chat"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/curatedloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/docsloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/githubloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/loaderwithmetrics"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/stackloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
	"github.com/simsonbaroi/OrionAiTesting/pkg/filter"
	"github.com/simsonbaroi/OrionAiTesting/pkg/knowledge"
	"github.com/simsonbaroi/OrionAiTesting/pkg/progress"
	"github.com/simsonbaroi/OrionAiTesting/pkg/pylearnserver/metrics"
	"github.com/simsonbaroi/OrionAiTesting/pkg/querylog"
	"github.com/simsonbaroi/OrionAiTesting/pkg/trainer"
)

const defaultTableLimit = 25

type Server struct {
	listenAddr  string
	metricsAddr string

	dbc         *db.DB
	cacheClient cache.Cache
	config      *configv1.PyLearnConfig

	tracker  *progress.Tracker
	matcher  *knowledge.Matcher
	composer *chat.Composer
	queries  *querylog.Store

	httpServer *http.Server

	// collect and train are swapped out in tests.
	collect func(runID uuid.UUID)
	train   func(ctx context.Context, report func(percent int)) (*trainer.Result, error)
}

func NewServer(listenAddr, metricsAddr string, dbc *db.DB, cacheClient cache.Cache, config *configv1.PyLearnConfig) *Server {
	s := &Server{
		listenAddr:  listenAddr,
		metricsAddr: metricsAddr,
		dbc:         dbc,
		cacheClient: cacheClient,
		config:      config,
		tracker:     progress.NewTracker(),
		matcher:     knowledge.NewMatcher(dbc),
		composer:    chat.NewComposer(),
		queries:     querylog.NewStore(dbc),
	}

	s.collect = s.runLoaders
	s.train = func(ctx context.Context, report func(percent int)) (*trainer.Result, error) {
		return trainer.New(dbc).WithProgress(report).Train(ctx)
	}

	return s
}

func (s *Server) runLoaders(runID uuid.UUID) {
	loaders := []dataloader.DataLoader{
		curatedloader.New(s.dbc, runID),
		docsloader.New(s.dbc, runID, s.config.Documentation.Pages),
		stackloader.New(s.dbc, runID, s.config.StackExchange.Site, s.config.StackExchange.Tag, s.config.StackExchange.PageSize),
		githubloader.New(context.Background(), s.dbc, runID, s.config.GitHub.Repos),
	}

	s.tracker.Update(progress.PhaseCollection, 10)
	loaderwithmetrics.New(loaders).Load()
}

// Router builds the API route table; split out from Serve so httptest can
// exercise it directly.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", s.getStats).Methods(http.MethodGet)
	router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/stats", s.getStats).Methods(http.MethodGet)
	router.HandleFunc("/api/chat", s.postChat).Methods(http.MethodPost)
	router.HandleFunc("/api/rate", s.postRate).Methods(http.MethodPost)
	router.HandleFunc("/api/database/tables", s.getTables).Methods(http.MethodGet)
	router.HandleFunc("/api/database/tables/{table}", s.getTableRows).Methods(http.MethodGet)
	router.HandleFunc("/api/admin", s.getAdmin).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/collect", s.postCollect).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/train", s.postTrain).Methods(http.MethodPost)
	return router
}

func (s *Server) getStats(w http.ResponseWriter, req *http.Request) {
	stats, err := api.GetStats(s.dbc, s.cacheClient)
	if err != nil {
		log.WithError(err).Error("could not compute stats")
		api.RespondWithFailure(http.StatusInternalServerError, w, "could not compute stats")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, stats)
}

func (s *Server) getHealth(w http.ResponseWriter, req *http.Request) {
	if err := s.dbc.Ping(); err != nil {
		log.WithError(err).Error("health check could not reach the database")
		api.RespondWithFailure(http.StatusServiceUnavailable, w, "database unreachable")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer              string  `json:"answer"`
	QueryID             uint    `json:"query_id,omitempty"`
	ResponseTimeSeconds float64 `json:"response_time_seconds"`
}

func (s *Server) postChat(w http.ResponseWriter, req *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Question == "" {
		api.RespondWithFailure(http.StatusBadRequest, w, "question is required")
		return
	}

	start := time.Now()
	matches, err := s.matcher.FindRelevant(body.Question)
	if err != nil {
		// degrade to canned replies rather than failing the chat
		log.WithError(err).Error("could not search the knowledge base")
		matches = nil
	}
	answer := s.composer.Compose(body.Question, matches)
	elapsed := time.Since(start).Seconds()

	response := chatResponse{Answer: answer, ResponseTimeSeconds: elapsed}
	queryID, err := s.queries.Record(body.Question, answer, elapsed)
	if err != nil {
		log.WithError(err).Error("could not record query, answer delivered anyway")
	} else {
		response.QueryID = queryID
	}

	api.RespondWithJSON(http.StatusOK, w, response)
}

type rateRequest struct {
	QueryID uint `json:"query_id"`
	Rating  int  `json:"rating"`
}

func (s *Server) postRate(w http.ResponseWriter, req *http.Request) {
	var body rateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		api.RespondWithFailure(http.StatusBadRequest, w, "could not parse rating request")
		return
	}

	switch err := s.queries.Rate(body.QueryID, body.Rating); {
	case errors.Is(err, querylog.ErrInvalidRating):
		api.RespondWithFailure(http.StatusBadRequest, w, err.Error())
	case errors.Is(err, querylog.ErrNotFound):
		api.RespondWithFailure(http.StatusNotFound, w, err.Error())
	case err != nil:
		log.WithError(err).Error("could not store rating")
		api.RespondWithFailure(http.StatusInternalServerError, w, "could not store rating")
	default:
		api.RespondWithJSON(http.StatusOK, w, map[string]string{"status": "rated"})
	}
}

func (s *Server) getTables(w http.ResponseWriter, req *http.Request) {
	tables, err := api.ListTables(s.dbc)
	if err != nil {
		log.WithError(err).Error("could not list tables")
		api.RespondWithFailure(http.StatusInternalServerError, w, "could not list tables")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, tables)
}

func (s *Server) getTableRows(w http.ResponseWriter, req *http.Request) {
	table := mux.Vars(req)["table"]

	defaultSort, err := api.DefaultSortField(table)
	if err != nil {
		api.RespondWithFailure(http.StatusNotFound, w, "no such table")
		return
	}

	opts, err := filter.FilterOptionsFromRequest(req, defaultSort, filter.SortDescending, defaultTableLimit)
	if err != nil {
		api.RespondWithFailure(http.StatusBadRequest, w, err.Error())
		return
	}

	rows, err := api.GetTableRows(s.dbc, table, opts)
	if err != nil {
		api.RespondWithFailure(http.StatusBadRequest, w, err.Error())
		return
	}
	api.RespondWithJSON(http.StatusOK, w, rows)
}

func (s *Server) getAdmin(w http.ResponseWriter, req *http.Request) {
	tables, err := api.ListTables(s.dbc)
	if err != nil {
		log.WithError(err).Error("could not list tables")
		api.RespondWithFailure(http.StatusInternalServerError, w, "could not build dashboard")
		return
	}

	var recentRuns []models.CollectionRun
	if err := s.dbc.DB.Order("id DESC").Limit(10).Find(&recentRuns).Error; err != nil {
		log.WithError(err).Error("could not load collection runs")
		api.RespondWithFailure(http.StatusInternalServerError, w, "could not build dashboard")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"tables":      tables,
		"recent_runs": recentRuns,
		"progress":    s.tracker.Snapshot(),
	})
}

func (s *Server) postCollect(w http.ResponseWriter, req *http.Request) {
	if !s.tracker.TryStart(progress.PhaseCollection) {
		api.RespondWithFailure(http.StatusConflict, w, "collection already running")
		return
	}

	runID := uuid.New()
	go func() {
		defer s.tracker.Finish(progress.PhaseCollection)
		s.collect(runID)
		if err := metrics.Refresh(s.dbc); err != nil {
			log.WithError(err).Warning("could not refresh metrics after collection")
		}
	}()

	api.RespondWithJSON(http.StatusAccepted, w, map[string]string{"run_id": runID.String()})
}

func (s *Server) postTrain(w http.ResponseWriter, req *http.Request) {
	if !s.tracker.TryStart(progress.PhaseTraining) {
		api.RespondWithFailure(http.StatusConflict, w, "training already running")
		return
	}
	defer s.tracker.Finish(progress.PhaseTraining)

	result, err := s.train(req.Context(), func(percent int) {
		s.tracker.Update(progress.PhaseTraining, percent)
	})
	switch {
	case errors.Is(err, trainer.ErrInsufficientData):
		api.RespondWithFailure(http.StatusBadRequest, w, err.Error())
		return
	case err != nil:
		log.WithError(err).Error("training run failed")
		api.RespondWithFailure(http.StatusInternalServerError, w, "training run failed")
		return
	}

	if err := metrics.Refresh(s.dbc); err != nil {
		log.WithError(err).Warning("could not refresh metrics after training")
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"pairs_created": result.PairsCreated,
		"snapshot":      result.Snapshot,
	})
}

// Serve blocks, running the API listener and, when configured, a second
// listener exposing prometheus metrics.
func (s *Server) Serve() {
	if err := metrics.Refresh(s.dbc); err != nil {
		log.WithError(err).Warning("could not refresh metrics at startup")
	}

	if s.metricsAddr != "" {
		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", promhttp.Handler())
			log.Infof("serving metrics on %s", s.metricsAddr)
			if err := http.ListenAndServe(s.metricsAddr, metricsMux); err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server exited")
			}
		}()
	}

	middleware := metricsmw.New(metricsmw.Config{
		Recorder: metricsprom.NewRecorder(metricsprom.Config{}),
	})

	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           std.Handler("", middleware, s.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("serving API on %s", s.listenAddr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited")
	}
}

func (s *Server) GetHTTPServer() *http.Server {
	return s.httpServer
}
