package controllers

import (
	"context"
	"net/http"

	"github.com/futamarket/market-backend/api/responses"
	"github.com/futamarket/market-backend/pkg/config"
	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/futamarket/market-backend/pkg/logger"
	"github.com/futamarket/market-backend/pkg/types"
)

const envHeader = "X-FutaMarket-Env"

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NamedPinger labels a dependency in readiness failures.
type NamedPinger struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, types.StatusBody{Status: "live"})
	}
}

// HealthReady pings every dependency and reports the first unreachable one.
func HealthReady(cfg *config.Config, deps []NamedPinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.Name+" unavailable").
						WithDetails(map[string]any{"dependency": dep.Name}))
				return
			}
		}
		responses.WriteSuccess(w, types.StatusBody{Status: "ready"})
	}
}
