package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/config"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/steps"
)

type WebServerConfig struct {
	CommonConfig
	Scheme string `errorTxt:"scheme" mandatory:"yes"`
	Addr   net.IP `errorTxt:"address" mandatory:"no"`
	Port   int    `errorTxt:"port" mandatory:"yes"`
}

// pipelineService runs the pipeline on behalf of HTTP requests.
// Runs are serialised so that only one warehouse session is active at a time.
type pipelineService struct {
	log      logger.Logger
	cfg      config.Config
	pipeline *steps.Pipeline
	runMu    sync.Mutex
	lastMu   sync.RWMutex
	last     *PipelineRun
}

func newPipelineService(log logger.Logger, cfg config.Config) (*pipelineService, error) {
	p, err := loadPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return &pipelineService{log: log, cfg: cfg, pipeline: p}, nil
}

func (s *pipelineService) run(stepName string, dryRun bool) (*PipelineRun, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	run, err := executePipeline(s.log, s.cfg, s.pipeline, stepName, dryRun)
	if err != nil {
		return nil, err
	}
	s.lastMu.Lock()
	s.last = run
	s.lastMu.Unlock()
	return run, nil
}

func (s *pipelineService) lastRun() *PipelineRun {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

// waitForIdle blocks until any in-flight run completes.
func (s *pipelineService) waitForIdle() {
	s.runMu.Lock()
	s.runMu.Unlock()
}

func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	// Check if we have valid input params.
	if err := helper.ValidateStructIsPopulated(web); err != nil {
		return err
	}
	cfg, err := web.loadConfig()
	if err != nil {
		return err
	}
	// Fail at startup rather than on the first request.
	if err = cfg.ValidateConnection(); err != nil {
		return err
	}
	log, closer, err := setupLogger(cfg, web.StackDumpOnPanic)
	if err != nil {
		return err
	}
	defer func() {
		_ = closer.Close()
	}()
	svc, err := newPipelineService(log, cfg)
	if err != nil {
		return err
	}
	// Start the web server.
	srv, chanStopServer := runServer(log, web, svc)
	// Block & wait for completion.
	return waitForServer(log, srv, chanStopServer, svc)
}

func newRouter(log logger.Logger, svc *pipelineService, chanStopServer chan string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/stop", GetHandlerStopServer(log, chanStopServer))
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path("/steps").Methods(http.MethodGet).HandlerFunc(GetHandlerStepList(log, svc))
	r.Path("/runs/last").Methods(http.MethodGet).HandlerFunc(GetHandlerLastRun(log, svc))
	r.Path("/run").Methods(http.MethodPost).HandlerFunc(GetHandlerRun(log, svc))
	return r
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server
func runServer(log logger.Logger, web *WebServerConfig, svc *pipelineService) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	srv := &http.Server{
		Addr:        fmt.Sprintf("%v:%v", web.Addr, web.Port),
		ReadTimeout: time.Second * 15,
		IdleTimeout: time.Second * 60,
		// No write timeout: a pipeline run holds the request open until it completes.
		Handler: newRouter(log, svc, chanStopServer),
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(web.Scheme), web.Addr, web.Port))
	return srv, chanStopServer
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string, svc *pipelineService) error {
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+\) will not be caught.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt)
	select {
	case <-chanStopServer:
	case <-chanOS:
	}
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down web server...")
	// Steps are never interrupted mid-transaction.
	svc.waitForIdle()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
