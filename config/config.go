package config

import (
	"github.com/caarlos0/env/v8"
	"log/slog"
	"time"
)

type Config struct {
	AppName    string `env:"APP_NAME" envDefault:"Image Optimizer API"`
	AppVersion string `env:"APP_VERSION" envDefault:"1.0.0"`
	Port       string `env:"PORT" envDefault:"8080"`

	MaxUploadMB     int           `env:"MAX_UPLOAD_MB" envDefault:"32"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Pixel limits for decoded uploads and for resize results; 0 disables a limit.
	MaxPixels       int `env:"MAX_PIXELS" envDefault:"178956970"`
	MaxOutputPixels int `env:"MAX_OUTPUT_PIXELS" envDefault:"178956970"`

	// native or vips
	ImageBackend string `env:"IMAGE_BACKEND" envDefault:"native"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"debug"`
	TraceExporter string `env:"TRACE_EXPORTER" envDefault:"none"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	SwaggerEnabled bool   `env:"SWAGGER_ENABLED" envDefault:"true"`
	SwaggerFile    string `env:"SWAGGER_FILE" envDefault:"./docs/swagger.json"`

	ExposeErrorDetail bool `env:"EXPOSE_ERROR_DETAIL" envDefault:"true"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return nil, err
	}

	return conf, nil
}

func New() *Config {
	conf, err := Parse()
	if err != nil {
		slog.Error(err.Error())

		panic("Failed to parse config")
	}

	return conf
}

func (c *Config) BodyLimit() int {
	return c.MaxUploadMB * 1024 * 1024
}
