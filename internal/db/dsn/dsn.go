// Package dsn builds database connection strings and gorm dialectors from the configuration.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/config"
)

// ErrUnsupportedEngine is returned for a gorm engine without a dialector.
var ErrUnsupportedEngine = errors.New("unsupported gorm engine")

// Create builds the MySQL Data Source Name from the configuration.
func Create(dbCfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)

	return out
}

// CreatePostgres builds a postgres connection URI. Extras is used as the raw query,
// sslmode=disable when empty.
func CreatePostgres(dbCfg *config.Config) string {
	query := dbCfg.DB.Extras
	if query == "" {
		query = "sslmode=disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbCfg.DB.User, dbCfg.DB.Password),
		Host:     net.JoinHostPort(dbCfg.DB.Host, strconv.Itoa(dbCfg.DB.Port)),
		Path:     "/" + dbCfg.DB.Name,
		RawQuery: query,
	}

	return u.String()
}

// CreateSQLite returns the sqlite file name with Extras appended as query.
func CreateSQLite(dbCfg *config.Config) string {
	if dbCfg.DB.Extras == "" {
		return dbCfg.DB.Name
	}

	return dbCfg.DB.Name + "?" + dbCfg.DB.Extras
}

// Dialector returns the gorm dialector for the configured engine.
func Dialector(dbCfg *config.Config) (gorm.Dialector, error) {
	switch dbCfg.DB.GormEngine {
	case config.EngineMySQL:
		return mysql.Open(Create(dbCfg)), nil
	case config.EnginePostgres:
		return postgres.Open(CreatePostgres(dbCfg)), nil
	case config.EngineSQLite, "":
		return sqlite.Open(CreateSQLite(dbCfg)), nil
	default:
		return nil, errors.Wrap(ErrUnsupportedEngine, dbCfg.DB.GormEngine)
	}
}

// Open connects gorm to the configured database.
func Open(dbCfg *config.Config, gormCfg *gorm.Config) (*gorm.DB, error) {
	dialector, err := Dialector(dbCfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %s database", dbCfg.DB.GormEngine)
	}

	return db, nil
}
