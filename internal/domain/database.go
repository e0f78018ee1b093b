package domain

// DatabaseDriver represents the type of database engine.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// DatabaseConnection holds the metadata for connecting to a database that
// stores the source tables. The password travels separately.
type DatabaseConnection struct {
	Driver    DatabaseDriver `json:"driver" mapstructure:"driver"`
	Host      string         `json:"host" mapstructure:"host"`         // hostname or file path (sqlite)
	Port      int            `json:"port" mapstructure:"port"`         // 0 for sqlite
	Database  string         `json:"database" mapstructure:"database"` // db name or empty for sqlite
	Username  string         `json:"username" mapstructure:"username"`
	SSLMode   string         `json:"sslMode" mapstructure:"sslmode"`
	ExtraJSON string         `json:"extraJson" mapstructure:"extra"` // driver-specific options
}
