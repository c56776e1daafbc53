package config

type StoreDriver string

const (
	DriverPostgres StoreDriver = "postgres"
	DriverSQLite   StoreDriver = "sqlite"
	DriverMemory   StoreDriver = "memory"
)

type Database struct {
	Driver     StoreDriver `mapstructure:"DATABASE_DRIVER" default:"postgres"`
	Host       string      `mapstructure:"DATABASE_HOST" default:"localhost"`
	Port       int         `mapstructure:"DATABASE_PORT" default:"5432"`
	Name       string      `mapstructure:"DATABASE_NAME" default:"sampletrack"`
	User       string      `mapstructure:"DATABASE_USER" default:"postgres"`
	Password   string      `mapstructure:"DATABASE_PASSWORD" default:"sampletrack"`
	SQLitePath string      `mapstructure:"DATABASE_SQLITE_PATH" default:"./sampletrack.db"`
}

type Redis struct {
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
	// Disabled turns off status-change notifications entirely.
	Disabled bool `mapstructure:"REDIS_DISABLED" default:"false"`
}

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"sampletrack"`
	Service  string `mapstructure:"SERVICE" default:"api"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	GrpcPort int    `mapstructure:"GRPC_PORT" default:"9090"`
	Env      string `mapstructure:"ENV" default:"dev"`
}

type Log struct {
	LogPath  string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
}

type Trace struct {
	Version string `mapstructure:"TRACE_VERSION" default:"0.0.1"`
	// Exporter is one of otlp, stdout or none.
	Exporter       string `mapstructure:"TRACE_EXPORTER" default:"none"`
	TraceEndpoint  string `mapstructure:"TRACE_TRACEENDPOINT" default:""`
	MetricEndpoint string `mapstructure:"TRACE_METRICENDPOINT" default:""`
	Insecure       bool   `mapstructure:"TRACE_INSECURE" default:"true"`
}

type Relay struct {
	Port       int    `mapstructure:"RELAY_PORT" default:"8081"`
	WebhookURL string `mapstructure:"RELAY_WEBHOOK_URL" default:""`
	Workers    int    `mapstructure:"RELAY_WORKERS" default:"8"`
	TimeoutSec int    `mapstructure:"RELAY_TIMEOUT_SEC" default:"10"`
}
