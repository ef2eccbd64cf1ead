package config

// Supported values for DB.GormEngine.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// Engines lists the supported gorm engines.
func Engines() []string {
	return []string{EngineMySQL, EnginePostgres, EngineSQLite}
}

// DB holds the database configuration settings.
// For sqlite Name is the database file path.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string
}
