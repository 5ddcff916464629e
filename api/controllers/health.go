package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/localbasket/localbasket-backend/api/responses"
	"github.com/localbasket/localbasket-backend/pkg/config"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LocalBasket-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and aggregates the failures so a
// single probe names everything that is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var errs error
		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("database: %w", err))
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("redis: %w", err))
			}
		}

		w.Header().Set("X-LocalBasket-Env", cfg.App.Env)
		if errs != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies not ready"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
