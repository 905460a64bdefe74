package actions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/steps"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseStepList struct {
	Status WebServerResponse `json:"status"`
	Steps  []steps.Step      `json:"steps"`
}

// RunResultItem adds the error text, which ExecutionResult omits from JSON.
type RunResultItem struct {
	steps.ExecutionResult
	Error string `json:"error,omitempty"`
}

type ResponseRun struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId,omitempty"`
	Step    string            `json:"step,omitempty"`
	DryRun  bool              `json:"dryRun"`
	Results []RunResultItem   `json:"results,omitempty"`
}

func newResponseRun(run *PipelineRun) ResponseRun {
	resp := ResponseRun{
		Status:  Okay,
		Message: fmt.Sprintf("%v of %v step(s) succeeded", countSucceeded(run.Results), run.Expected),
		RunId:   run.RunId,
		Step:    run.Step,
		DryRun:  run.DryRun,
		Results: make([]RunResultItem, 0, len(run.Results)),
	}
	if !run.Succeeded() {
		resp.Status = Error
	}
	for _, r := range run.Results {
		item := RunResultItem{ExecutionResult: r}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}

func countSucceeded(results []steps.ExecutionResult) (n int) {
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default: // already stopping
		}
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStepList(log logger.Logger, svc *pipelineService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseStepList{Status: Okay, Steps: svc.pipeline.Steps()})
	}
}

func GetHandlerLastRun(log logger.Logger, svc *pipelineService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		run := svc.lastRun()
		if run == nil {
			w.WriteHeader(http.StatusNotFound)
			respond(log, w, ResponseRun{Status: Error, Message: "no pipeline has run yet"})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, newResponseRun(run))
	}
}

// GetHandlerRun executes the step named by query parameter "step" (default all).
// Set "dry-run" to true to only report what would run.
// The response is sent once the run completes.
func GetHandlerRun(log logger.Logger, svc *pipelineService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		stepName := q.Get("step")
		dryRun := false
		if v := q.Get("dry-run"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				logAndRespond(log, err, w, http.StatusBadRequest, ResponseRun{Status: Error, Message: fmt.Sprintf("bad dry-run value %q", v)})
				return
			}
			dryRun = b
		}
		if _, err := svc.pipeline.Select(stepName); err != nil {
			logAndRespond(log, err, w, http.StatusBadRequest, ResponseRun{Status: Error, Message: err.Error()})
			return
		}
		run, err := svc.run(stepName, dryRun)
		if err != nil {
			logAndRespond(log, err, w, http.StatusInternalServerError, ResponseRun{Status: Error, Message: err.Error()})
			return
		}
		if run.Succeeded() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		respond(log, w, newResponseRun(run))
	}
}

// logAndRespond will log the error, write the status code and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, code int, r interface{}) {
	log.Error(err)
	w.WriteHeader(code)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error("error marshalling response: ", err)
		return
	}
	if _, err = fmt.Fprint(w, string(j)); err != nil {
		log.Error("error writing response: ", err)
	}
}
