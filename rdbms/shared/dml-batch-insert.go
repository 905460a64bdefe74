package shared

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SqlInsertTxtBatch generates multi-row INSERT statements with bind variables,
// combining batches of rows into one statement to reduce network round trips.
type SqlInsertTxtBatch struct {
	OutputTable   string   // [schema.]table
	ColList       []string // target column names in value order
	Placeholder   BindPlaceholderFunc
	sqlValues     []interface{}
	batchSize     int
	rowsInBatch   int
	cachedRows    int // number of rows the cached statement was built for
	cachedSqlStmt string
}

// NewInsertGenerator creates a new SqlInsertTxtBatch for table and cols using the bind style of dbType.
func NewInsertGenerator(dbType string, table string, cols []string) (*SqlInsertTxtBatch, error) {
	if table == "" {
		return nil, errors.New("missing output table name")
	}
	if len(cols) == 0 {
		return nil, errors.New("missing output table columns")
	}
	return &SqlInsertTxtBatch{
		OutputTable: table,
		ColList:     cols,
		Placeholder: GetBindPlaceholderFunc(dbType),
	}, nil
}

// InitBatch resets variables and preallocates slices for the given batch size.
func (o *SqlInsertTxtBatch) InitBatch(batchSize int) {
	o.batchSize = batchSize
	o.rowsInBatch = 0
	o.sqlValues = make([]interface{}, 0, o.batchSize*len(o.ColList)) // many values per row in a batch.
}

// AddValuesToBatch adds one row of values and reports whether the batch is now full.
func (o *SqlInsertTxtBatch) AddValuesToBatch(values []interface{}) (batchIsFull bool, err error) {
	if o.rowsInBatch >= o.batchSize {
		return true, errors.New("no more rows allowed in INSERT batch")
	}
	if len(values) != len(o.ColList) {
		return false, errors.Errorf("the number of values supplied (%v) does not match the number of table columns (%v)", len(values), len(o.ColList))
	}
	o.sqlValues = append(o.sqlValues, values...)
	o.rowsInBatch++
	return o.rowsInBatch >= o.batchSize, nil
}

func (o *SqlInsertTxtBatch) GetValues() []interface{} {
	return o.sqlValues
}

func (o *SqlInsertTxtBatch) RowsInBatch() int {
	return o.rowsInBatch
}

// GetStatement returns the INSERT statement for the rows currently in the batch.
// The statement text is cached per row count since full batches repeat.
func (o *SqlInsertTxtBatch) GetStatement() string {
	if o.cachedRows == o.rowsInBatch && o.cachedSqlStmt != "" {
		return o.cachedSqlStmt
	}
	allRows := make([]string, 0, o.rowsInBatch)
	valIdx := 1
	for rowIdx := 0; rowIdx < o.rowsInBatch; rowIdx++ { // for each row in the batch...
		row := make([]string, len(o.ColList))
		for idy := range o.ColList { // for each column in the current row...
			row[idy] = o.Placeholder(valIdx)
			valIdx++
		}
		allRows = append(allRows, fmt.Sprintf("(%v)", strings.Join(row, ", ")))
	}
	o.cachedSqlStmt = fmt.Sprintf("insert into %v (%v) values %v",
		o.OutputTable, strings.Join(o.ColList, ", "), strings.Join(allRows, ", "))
	o.cachedRows = o.rowsInBatch
	return o.cachedSqlStmt
}
