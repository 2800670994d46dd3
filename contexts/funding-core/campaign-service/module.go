package campaignservice

import (
	"log/slog"
	"time"

	httpadapter "fundry/contexts/funding-core/campaign-service/adapters/http"
	"fundry/contexts/funding-core/campaign-service/adapters/memory"
	"fundry/contexts/funding-core/campaign-service/application/commands"
	"fundry/contexts/funding-core/campaign-service/application/queries"
	"fundry/contexts/funding-core/campaign-service/ports"
)

const (
	DefaultFeeRateBps   = 250
	DefaultAdminAccount = "platform-treasury"
	DefaultVotingWindow = 72 * time.Hour
)

type Module struct {
	Handler  httpadapter.Handler
	Store    *memory.Store
	Treasury *memory.Treasury
}

type Dependencies struct {
	Campaigns     ports.CampaignRepository
	Contributions ports.ContributionRepository
	Votes         ports.VoteRepository
	Outbox        ports.OutboxWriter
	Treasury      ports.Treasury
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	FeeRateBps    int64
	AdminAccount  string
	VotingWindow  time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.FeeRateBps == 0 {
		deps.FeeRateBps = DefaultFeeRateBps
	}
	if deps.AdminAccount == "" {
		deps.AdminAccount = DefaultAdminAccount
	}
	if deps.VotingWindow == 0 {
		deps.VotingWindow = DefaultVotingWindow
	}
	return Module{
		Handler: httpadapter.Handler{
			CreateCampaign: commands.CreateCampaignUseCase{
				Campaigns: deps.Campaigns,
				Outbox:    deps.Outbox,
				Clock:     deps.Clock,
				IDGen:     deps.IDGen,
				Logger:    deps.Logger,
			},
			Contribute: commands.ContributeUseCase{
				Campaigns:     deps.Campaigns,
				Contributions: deps.Contributions,
				Outbox:        deps.Outbox,
				Clock:         deps.Clock,
				IDGen:         deps.IDGen,
				Logger:        deps.Logger,
			},
			StartVoting: commands.StartVotingUseCase{
				Campaigns:    deps.Campaigns,
				Outbox:       deps.Outbox,
				Clock:        deps.Clock,
				IDGen:        deps.IDGen,
				VotingWindow: deps.VotingWindow,
				Logger:       deps.Logger,
			},
			CastVote: commands.CastVoteUseCase{
				Campaigns:     deps.Campaigns,
				Contributions: deps.Contributions,
				Votes:         deps.Votes,
				Outbox:        deps.Outbox,
				Clock:         deps.Clock,
				IDGen:         deps.IDGen,
				Logger:        deps.Logger,
			},
			ReleaseFunds: commands.ReleaseFundsUseCase{
				Campaigns:    deps.Campaigns,
				Treasury:     deps.Treasury,
				Outbox:       deps.Outbox,
				Clock:        deps.Clock,
				IDGen:        deps.IDGen,
				FeeRateBps:   deps.FeeRateBps,
				AdminAccount: deps.AdminAccount,
				Logger:       deps.Logger,
			},
			Refund: commands.RefundUseCase{
				Campaigns:     deps.Campaigns,
				Contributions: deps.Contributions,
				Treasury:      deps.Treasury,
				Outbox:        deps.Outbox,
				Clock:         deps.Clock,
				IDGen:         deps.IDGen,
				Logger:        deps.Logger,
			},
			CompleteMilestone: commands.CompleteMilestoneUseCase{
				Campaigns: deps.Campaigns,
				Outbox:    deps.Outbox,
				Clock:     deps.Clock,
				IDGen:     deps.IDGen,
				Logger:    deps.Logger,
			},
			GetCampaign: queries.GetCampaignUseCase{
				Campaigns: deps.Campaigns,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			GetCampaignCount: queries.GetCampaignCountUseCase{
				Campaigns: deps.Campaigns,
				Logger:    deps.Logger,
			},
			ListByCreator: queries.ListCampaignsByCreatorUseCase{
				Campaigns: deps.Campaigns,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			ListByBacker: queries.ListCampaignsByBackerUseCase{
				Campaigns: deps.Campaigns,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			GetVotingStatus: queries.GetVotingStatusUseCase{
				Campaigns: deps.Campaigns,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			GetContributions: queries.GetContributionsUseCase{
				Contributions: deps.Contributions,
				Logger:        deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	treasury := memory.NewTreasury()
	module := NewModule(Dependencies{
		Campaigns:     store,
		Contributions: store,
		Votes:         store,
		Outbox:        store,
		Treasury:      treasury,
		Clock:         store,
		IDGen:         store,
		Logger:        logger,
	})
	module.Store = store
	module.Treasury = treasury
	return module
}
