package intent

import (
	"context"

	"github.com/rs/zerolog"
)

// remoteInterpreter is what the router needs from the remote client.
type remoteInterpreter interface {
	Configured() bool
	Interpret(ctx context.Context, command string) (Result, error)
}

// Router resolves each command to exactly one Result. Timer commands are
// claimed by the local rules up front so a countdown actually gets
// created; everything else goes to the remote interpreter first, with
// the local rules as the fallback when it is unconfigured or fails. A
// transcript is never dropped.
type Router struct {
	remote remoteInterpreter
	local  *Local
	logger zerolog.Logger
}

// NewRouter creates an interpreter router. remote may be nil.
func NewRouter(remote *Remote, local *Local, logger zerolog.Logger) *Router {
	r := &Router{
		local:  local,
		logger: logger.With().Str("component", "intent").Logger(),
	}
	if remote != nil {
		r.remote = remote
	}
	return r
}

// Interpret resolves one command.
func (r *Router) Interpret(ctx context.Context, command string) Result {
	if TimerIntent(command) {
		return r.local.Interpret(command)
	}

	if r.remote != nil && r.remote.Configured() {
		result, err := r.remote.Interpret(ctx, command)
		if err == nil {
			return result
		}
		r.logger.Warn().Err(err).Msg("Remote interpreter failed, using local rules")
	}

	return r.local.Interpret(command)
}
