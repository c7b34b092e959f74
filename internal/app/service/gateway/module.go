package gateway

import "go.uber.org/fx"

// Module exposes the gateway orchestrator via Fx.
var Module = fx.Options(
	fx.Provide(NewManager),
	fx.Provide(func(m *Manager) Orchestrator { return m }),
)
