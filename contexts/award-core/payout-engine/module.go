package payoutengine

import (
	"log/slog"

	httpadapter "peerbonus/contexts/award-core/payout-engine/adapters/http"
	"peerbonus/contexts/award-core/payout-engine/adapters/memory"
	"peerbonus/contexts/award-core/payout-engine/application/commands"
	"peerbonus/contexts/award-core/payout-engine/application/queries"
	"peerbonus/contexts/award-core/payout-engine/domain/scoring"
	"peerbonus/contexts/award-core/payout-engine/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Recalculate commands.RecalculateUseCase
	Queries     queries.ResultsUseCase
	Store       *memory.Store
}

type Dependencies struct {
	Ledger  ports.LedgerReader
	Results ports.ResultRepository
	Guard   ports.RecalcGuard
	Policy  scoring.Policy
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Guard == nil {
		deps.Guard = commands.NewInflightGuard()
	}
	if deps.Policy == "" {
		deps.Policy = scoring.PolicyRatioToMax
	}
	recalculate := commands.RecalculateUseCase{
		Ledger:  deps.Ledger,
		Results: deps.Results,
		Guard:   deps.Guard,
		Policy:  deps.Policy,
		Logger:  deps.Logger,
	}
	resultsQuery := queries.ResultsUseCase{Results: deps.Results}
	return Module{
		Handler: httpadapter.Handler{
			Recalculate: recalculate,
			Queries:     resultsQuery,
			Logger:      deps.Logger,
		},
		Recalculate: recalculate,
		Queries:     resultsQuery,
	}
}

// NewInMemoryModule wires the module against the memory store, used by tests
// and local runs without Postgres.
func NewInMemoryModule(policy scoring.Policy, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:  store,
		Results: store,
		Policy:  policy,
		Logger:  logger,
	})
	module.Store = store
	return module
}
