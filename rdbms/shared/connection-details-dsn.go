package shared

import (
	"github.com/pkg/errors"
	"github.com/xo/dburl"
)

var DefaultDsnConnectionKeyNames = struct {
	Dsn string
}{
	Dsn: "dsn",
}

// DsnConnectionDetails is a simple struct to hold a DSN only.
type DsnConnectionDetails struct {
	Dsn string `errorTxt:"data source name i.e. connect string" mandatory:"yes"`
}

// String returns the DSN with redacted password.
// DSNs that cannot be parsed are hidden entirely since they may contain credentials.
func (d DsnConnectionDetails) String() string {
	u, err := dburl.Parse(d.Dsn)
	if err != nil {
		return "<unparseable DSN>"
	}
	return u.Redacted()
}

// Parse validates the DSN. The result's OriginalScheme is the scheme as written, e.g. sqlserver or postgres.
func (d DsnConnectionDetails) Parse() (*dburl.URL, error) {
	if d.Dsn == "" { // if the Dsn is invalid...
		return nil, errors.New("DSN not found")
	}
	u, err := dburl.Parse(d.Dsn)
	if err != nil {
		return nil, errors.Wrap(err, "DSN could not be parsed")
	}
	return u, nil
}

// DsnConnectionDetailsToMap populates the supplied map with the DSN, creating the map if it is nil.
func DsnConnectionDetailsToMap(m map[string]string, c *DsnConnectionDetails) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultDsnConnectionKeyNames.Dsn] = c.Dsn
	return m
}

// GetDsnConnectionDetails converts generic ConnectionDetails to DsnConnectionDetails
// and returns a pointer to the new struct.
func GetDsnConnectionDetails(c *ConnectionDetails) *DsnConnectionDetails {
	return &DsnConnectionDetails{
		Dsn: c.Data[DefaultDsnConnectionKeyNames.Dsn],
	}
}
