package instance

import "github.com/futamarket/market-backend/pkg/env"

// GetID returns the process instance identifier used in startup logs.
// Heroku exposes it as DYNO, containers as HOSTNAME.
func GetID() string {
	return env.First("local", "DYNO", "HOSTNAME")
}
