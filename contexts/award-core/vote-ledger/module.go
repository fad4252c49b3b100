package voteledger

import (
	"log/slog"

	httpadapter "peerbonus/contexts/award-core/vote-ledger/adapters/http"
	"peerbonus/contexts/award-core/vote-ledger/adapters/memory"
	"peerbonus/contexts/award-core/vote-ledger/application/commands"
	"peerbonus/contexts/award-core/vote-ledger/application/queries"
	"peerbonus/contexts/award-core/vote-ledger/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Sessions commands.SessionUseCase
	Votes    commands.VoteUseCase
	Queries  queries.VotesUseCase
	Store    *memory.Store
}

type Dependencies struct {
	Sessions     ports.SessionRepository
	Participants ports.ParticipantRepository
	Votes        ports.VoteRepository
	Results      ports.ResultChecker
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	ScoreMin     int
	ScoreMax     int
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	sessionUseCase := commands.SessionUseCase{
		Sessions:     deps.Sessions,
		Participants: deps.Participants,
		Results:      deps.Results,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Sessions:     deps.Sessions,
		Participants: deps.Participants,
		Votes:        deps.Votes,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		ScoreMin:     deps.ScoreMin,
		ScoreMax:     deps.ScoreMax,
		Logger:       deps.Logger,
	}
	votesQuery := queries.VotesUseCase{
		Sessions:     deps.Sessions,
		Participants: deps.Participants,
		Votes:        deps.Votes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Sessions: sessionUseCase,
			Votes:    voteUseCase,
			Queries:  votesQuery,
			Logger:   deps.Logger,
		},
		Sessions: sessionUseCase,
		Votes:    voteUseCase,
		Queries:  votesQuery,
	}
}

// NewInMemoryModule wires the module against the memory store, used by tests
// and local runs without Postgres.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Sessions:     store,
		Participants: store,
		Votes:        store,
		Outbox:       store,
		Clock:        store,
		IDGen:        store,
		ScoreMin:     0,
		ScoreMax:     10,
		Logger:       logger,
	})
	module.Store = store
	return module
}
