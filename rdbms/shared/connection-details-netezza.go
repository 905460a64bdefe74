package shared

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/helper"
)

var netezzaDsnRegexp = regexp.MustCompile(`^netezza://.+?/.+?@//.+:[0-9]+/.+$`)

// NetezzaConnectionDetails holds a DSN of the form netezza://user/password@//host:port/dbname[?params].
type NetezzaConnectionDetails struct {
	Dsn string `errorTxt:"data source name i.e. connect string" mandatory:"yes"`
}

// String hides the password.
func (d NetezzaConnectionDetails) String() string {
	dsn := strings.TrimPrefix(d.Dsn, constants.ConnectionTypeNetezza+"://")
	userPwd, theRest := helper.SplitRight(dsn, `@`)
	user, _ := helper.SplitRight(userPwd, `/`)
	return fmt.Sprintf("%v://%v/xxxxx@%v", constants.ConnectionTypeNetezza, user, theRest)
}

func (d NetezzaConnectionDetails) Parse() error {
	if !netezzaDsnRegexp.MatchString(d.Dsn) {
		return errors.New("unsupported Netezza DSN format")
	}
	return nil
}

// GetNzgoConnectionString will parse the connection string and convert it to the format required by nzgo library
// which is space separated key=value.
// https://pkg.go.dev/github.com/IBM/nzgo
func (d NetezzaConnectionDetails) GetNzgoConnectionString() (string, error) {
	if err := d.Parse(); err != nil {
		return "", err
	}
	dsn := strings.TrimPrefix(d.Dsn, constants.ConnectionTypeNetezza+"://")
	userPwd, theRest := helper.SplitRight(dsn, `@`)
	user, pass := helper.SplitRight(userPwd, `/`)
	hostPort, dbNameParams := helper.SplitRight(theRest, `/`)
	host, port := helper.SplitRight(hostPort, `:`)
	host = strings.TrimLeft(host, "/")
	dbName, params := helper.SplitRight(dbNameParams, `?`)
	if dbName == "" { // no params supplied...
		dbName = dbNameParams
		params = ""
	}
	params = strings.Replace(params, "&", " ", -1) // use space as the separator.
	connStr := strings.TrimSpace(fmt.Sprintf("user=%s password='%s' host=%s port=%s dbname=%s logLevel=Off %s", user, pass, host, port, dbName, params))
	return connStr, nil
}
