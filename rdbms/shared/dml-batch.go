package shared

import (
	"fmt"

	"github.com/relloyd/sqlsteps/constants"
)

// BindPlaceholderFunc returns the bind variable text for the 1-based value index idx.
type BindPlaceholderFunc func(idx int) string

// GetBindPlaceholderFunc returns the bind variable style used by the driver for dbType.
func GetBindPlaceholderFunc(dbType string) BindPlaceholderFunc {
	switch dbType {
	case constants.ConnectionTypePostgres, constants.ConnectionTypeNetezza:
		return func(idx int) string { return fmt.Sprintf("$%v", idx) }
	case constants.ConnectionTypeSqlServer:
		return func(idx int) string { return fmt.Sprintf("@p%v", idx) }
	default: // snowflake, sqlite, mock...
		return func(idx int) string { return "?" }
	}
}
