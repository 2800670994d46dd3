package activityfeedservice

import (
	"log/slog"
	"time"

	httpadapter "fundry/contexts/funding-core/activity-feed-service/adapters/http"
	"fundry/contexts/funding-core/activity-feed-service/adapters/memory"
	"fundry/contexts/funding-core/activity-feed-service/application/queries"
	"fundry/contexts/funding-core/activity-feed-service/application/workers"
	"fundry/contexts/funding-core/activity-feed-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.CampaignActivityConsumer
	Store    *memory.Store
}

type Dependencies struct {
	Feed          ports.FeedRepository
	Dedup         ports.EventDedupStore
	Subscriber    ports.EventSubscriber
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			ListActivity: queries.ListActivityUseCase{
				Feed:   deps.Feed,
				Logger: deps.Logger,
			},
			Logger: deps.Logger,
		},
		Consumer: workers.CampaignActivityConsumer{
			Subscriber:    deps.Subscriber,
			Feed:          deps.Feed,
			Dedup:         deps.Dedup,
			Clock:         deps.Clock,
			ConsumerGroup: deps.ConsumerGroup,
			DedupTTL:      deps.DedupTTL,
			Logger:        deps.Logger,
		},
	}
}

func NewInMemoryModule(subscriber ports.EventSubscriber, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Feed:       store,
		Dedup:      store,
		Subscriber: subscriber,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
