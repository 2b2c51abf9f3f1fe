package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm plugin.
type DBTracingConfig struct {
	Enabled bool
	// DBSystem is reported as db.system, e.g. "postgresql" or "sqlite"
	DBSystem string
	// WithQueryVariables includes bound values in db.statement
	WithQueryVariables bool
}

// RegisterDBTracing installs the otelgorm plugin so every statement issued
// with a traced context becomes a child span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBSystem),
	}
	if !cfg.WithQueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return db.Use(otelgorm.NewPlugin(opts...))
}
