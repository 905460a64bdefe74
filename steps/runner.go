package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	"github.com/rs/xid"
)

// Runner executes steps one at a time against the single session owned by Db.
// Db may be nil when only dry runs are performed.
type Runner struct {
	Log       logger.Logger
	Db        shared.Connector
	Source    SourceReader
	Variables map[string]string // values for ${name} placeholders in step SQL and validation queries
	RunId     string
}

// NewRunner returns a Runner with a fresh run ID.
func NewRunner(log logger.Logger, db shared.Connector, src SourceReader, vars map[string]string) *Runner {
	return &Runner{
		Log:       log,
		Db:        db,
		Source:    src,
		Variables: vars,
		RunId:     xid.New().String(),
	}
}

// RunPipeline executes steps strictly in order and stops at the first failure.
// It returns one result per attempted step.
func (r *Runner) RunPipeline(steps []Step, dryRun bool) []ExecutionResult {
	log := r.Log.WithField("runId", r.RunId)
	log.Info(fmt.Sprintf("Starting pipeline of %v step(s), dry-run=%v", len(steps), dryRun))
	results := make([]ExecutionResult, 0, len(steps))
	for _, step := range steps {
		if step.SQL == "" { // if we need to fetch the SQL...
			txt, err := r.readSource(step)
			if err != nil {
				res := r.newResult(step, dryRun)
				res.Status = StatusSourceFailed
				res.Message = "unable to read SQL source"
				res.Err = &StepError{Kind: SourceReadError, Step: step.Name, Err: err}
				log.WithField("step", step.Name).Error(res.Err)
				results = append(results, res)
				break
			}
			step.SQL = txt
		}
		res := r.ExecuteStep(step, dryRun)
		results = append(results, res)
		if !res.Success {
			log.Error(fmt.Sprintf("Pipeline halted at step %q: %v", step.Name, res.Err))
			break
		}
	}
	if Succeeded(results, len(steps)) {
		log.Info(fmt.Sprintf("Pipeline completed: %v step(s) succeeded", len(results)))
	} else {
		log.Warn(fmt.Sprintf("Pipeline failed: %v of %v step(s) attempted", len(results), len(steps)))
	}
	return results
}

func (r *Runner) readSource(step Step) (string, error) {
	if r.Source == nil {
		return "", errors.Errorf("step %q has no SQL and no source is configured", step.Name)
	}
	return r.Source.ReadStep(step)
}

// ExecuteStep runs all statements of step in one transaction.
// In dry-run mode nothing is sent to the database and the result only carries the statement count.
// If every statement succeeds the transaction is committed and then the step's validation rule, if any, is checked.
// A failed validation does not roll back the committed work.
func (r *Runner) ExecuteStep(step Step, dryRun bool) (res ExecutionResult) {
	log := r.Log.WithField("runId", r.RunId).WithField("step", step.Name)
	res = r.newResult(step, dryRun)
	defer func() {
		res.Duration = time.Since(res.Started)
	}()
	stmts := SplitStatements(substituteVariables(step.SQL, r.Variables))
	res.StatementCount = len(stmts)
	log.Info(fmt.Sprintf("Executing step %q with %v statement(s)", step.Name, len(stmts)))
	if dryRun {
		res.Status = StatusDryRun
		res.Success = true
		res.Message = fmt.Sprintf("would execute %v statement(s)", len(stmts))
		log.Info("[DRY RUN] ", res.Message)
		log.Debug("[DRY RUN] SQL preview: ", helper.Truncate(step.SQL, constants.SqlPreviewLen))
		return
	}
	if r.Db == nil {
		return r.fail(log, res, StatusRolledBack, &StepError{Kind: StatementExecutionError, Step: step.Name, Err: errors.New("no database connection")})
	}
	res.Status = StatusExecuting
	ctx := context.Background()
	tx, err := r.Db.Begin()
	if err != nil {
		return r.fail(log, res, StatusRolledBack, &StepError{Kind: StatementExecutionError, Step: step.Name, Err: errors.Wrap(err, "unable to begin transaction")})
	}
	for idx, stmt := range stmts {
		log.Info(fmt.Sprintf("Executing statement %v of %v", idx+1, len(stmts)))
		log.Debug(helper.Truncate(stmt, constants.StatementPreviewLen))
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			log.Error(fmt.Sprintf("Statement %v failed: %v; statement: %v", idx+1, err, helper.Truncate(stmt, constants.StatementPreviewLen)))
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Rollback failed: ", rbErr)
			} else {
				log.Info("Transaction rolled back")
			}
			return r.fail(log, res, StatusRolledBack, &StepError{
				Kind:           StatementExecutionError,
				Step:           step.Name,
				StatementIndex: idx + 1,
				Statement:      stmt,
				Err:            err,
			})
		}
		res.StatementsExecuted++
	}
	if err = tx.Commit(); err != nil {
		return r.fail(log, res, StatusRolledBack, &StepError{Kind: StatementExecutionError, Step: step.Name, Err: errors.Wrap(err, "commit failed")})
	}
	res.Status = StatusCommitted
	res.Message = fmt.Sprintf("committed %v statement(s)", len(stmts))
	log.Info(fmt.Sprintf("Step %q committed %v statement(s)", step.Name, len(stmts)))
	if step.Validation == nil {
		res.Success = true
		return
	}
	return r.validate(ctx, log, res, step)
}

// validate runs the step's validation rule on the session after commit.
func (r *Runner) validate(ctx context.Context, log logger.Logger, res ExecutionResult, step Step) ExecutionResult {
	rule := step.Validation
	query := substituteVariables(rule.Query, r.Variables)
	log.Info("Validating step using: ", helper.Truncate(query, constants.StatementPreviewLen))
	value, err := rdbms.QueryScalar(ctx, log, r.Db, query)
	if err != nil {
		return r.fail(log, res, StatusValidationFailed, &StepError{Kind: ValidationError, Step: step.Name, Err: errors.Wrap(err, "validation query failed")})
	}
	res.ValidationValue = value
	ok, err := rule.Evaluate(value)
	if err != nil {
		return r.fail(log, res, StatusValidationFailed, &StepError{Kind: ValidationError, Step: step.Name, Err: err})
	}
	reason := rule.getReason(step.Name)
	if !ok {
		if rule.getOnFail() == OnFailWarn {
			res.Status = StatusValidationWarned
			res.Success = true
			res.Message = fmt.Sprintf("%v (value %v)", reason, value)
			log.Warn("Validation warning: ", res.Message)
			return res
		}
		return r.fail(log, res, StatusValidationFailed, &StepError{Kind: ValidationError, Step: step.Name, Err: errors.Errorf("%v (value %v)", reason, value)})
	}
	res.Status = StatusValidated
	res.Success = true
	res.Message = fmt.Sprintf("%v; validation passed with value %v", res.Message, value)
	log.Info(fmt.Sprintf("Validation passed with value %v", value))
	return res
}

func (r *Runner) newResult(step Step, dryRun bool) ExecutionResult {
	return ExecutionResult{
		RunId:   r.RunId,
		Step:    step.Name,
		Status:  StatusPending,
		DryRun:  dryRun,
		Started: time.Now(),
	}
}

func (r *Runner) fail(log logger.Logger, res ExecutionResult, status Status, err *StepError) ExecutionResult {
	res.Status = status
	res.Success = false
	res.Err = err
	res.Message = err.Error()
	log.Error(err)
	return res
}
