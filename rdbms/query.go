package rdbms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/logger"
	"github.com/relloyd/sqlsteps/rdbms/shared"
	"golang.org/x/net/context"
)

// ErrNoRows is returned by QueryScalar when the query produced no rows.
var ErrNoRows = errors.New("query returned no rows")

// SqlQuery executes sqltext on db and sends the header and each row to i.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return fmt.Errorf("error during database query using SQL: '%v': %w", sqltext, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("error fetching columns: %w", err)
	}
	log.Debug("query columns = ", cols)
	// Scan the values dynamically.
	lenCols := len(cols)
	scanPtrs := make([]interface{}, lenCols, lenCols)
	scanVals := make([]interface{}, lenCols, lenCols)
	for idx := 0; idx < lenCols; idx++ { // for each column...
		scanPtrs[idx] = &scanVals[idx] // save the value.
	}
	// Build and send the header.
	header := make([]interface{}, lenCols, lenCols)
	for idx := range cols {
		header[idx] = cols[idx]
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	// Send the rows via callback interface.
	for rows.Next() {
		if err = ctx.Err(); err != nil { // quit if asked to...
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		// Make a new row.
		row := make([]interface{}, lenCols, lenCols)
		copy(row, scanVals)
		// Send the row.
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// errStopRows is used by scalarHandler to stop fetching after the first row.
var errStopRows = errors.New("stop")

// scalarHandler keeps the first column of the first row.
type scalarHandler struct {
	value interface{}
	found bool
}

func (h *scalarHandler) HandleHeader(i []interface{}) error {
	if len(i) == 0 {
		return errors.New("query returned no columns")
	}
	return nil
}

func (h *scalarHandler) HandleRow(i []interface{}) error {
	h.value = i[0]
	h.found = true
	return errStopRows
}

// QueryScalar runs sqltext and returns the first column of the first row, normalised by NormaliseScalar.
// ErrNoRows is returned when there is no row.
func QueryScalar(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string) (interface{}, error) {
	h := &scalarHandler{}
	err := SqlQuery(ctx, log, db, sqltext, h)
	if err != nil && err != errStopRows {
		return nil, err
	}
	if !h.found {
		return nil, ErrNoRows
	}
	return NormaliseScalar(h.value), nil
}

// NormaliseScalar converts driver values into int64, float64, bool, string or nil.
// Numeric text (e.g. Snowflake NUMBER columns returned as strings) becomes int64 or float64.
func NormaliseScalar(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return NormaliseScalar(string(x))
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case float64, bool:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
