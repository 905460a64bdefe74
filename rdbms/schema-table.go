package rdbms

import (
	"strings"

	"github.com/pkg/errors"
)

// SchemaTable is a table name with an optional schema qualifier.
// Either part may be wrapped in double quotes, in which case it may contain dots.
type SchemaTable struct {
	Schema string
	Table  string `errorTxt:"[<schema>.]<table>" mandatory:"yes"`
}

// ParseSchemaTable splits s into schema and table on the first dot that is not inside double quotes.
func ParseSchemaTable(s string) (SchemaTable, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SchemaTable{}, errors.New("empty table name")
	}
	parts := make([]string, 0, 2)
	inQuotes := false
	start := 0
	for idx, r := range s {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '.':
			if !inQuotes {
				parts = append(parts, s[start:idx])
				start = idx + 1
			}
		}
	}
	if inQuotes {
		return SchemaTable{}, errors.Errorf("unbalanced quotes in table name %q", s)
	}
	parts = append(parts, s[start:])
	for _, p := range parts {
		if p == "" {
			return SchemaTable{}, errors.Errorf("empty identifier in table name %q", s)
		}
	}
	switch len(parts) {
	case 1:
		return SchemaTable{Table: parts[0]}, nil
	case 2:
		return SchemaTable{Schema: parts[0], Table: parts[1]}, nil
	default:
		return SchemaTable{}, errors.Errorf("table name %q has more than two parts; quote names that contain dots", s)
	}
}

// CatalogName returns name as it is stored in information_schema: surrounding quotes are removed.
func CatalogName(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		return name[1 : len(name)-1]
	}
	return name
}

func (st SchemaTable) String() string {
	if st.Schema == "" {
		return st.Table
	}
	return st.Schema + "." + st.Table
}
