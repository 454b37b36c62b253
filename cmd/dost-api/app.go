package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	httpadapter "github.com/PabloGalante/dost-companion/internal/adapters/http"
	"github.com/PabloGalante/dost-companion/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/dost-companion/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/dost-companion/internal/adapters/storage/memory"
	redisstore "github.com/PabloGalante/dost-companion/internal/adapters/storage/redis"
	"github.com/PabloGalante/dost-companion/internal/adapters/ws"
	"github.com/PabloGalante/dost-companion/internal/app/conversation"
	"github.com/PabloGalante/dost-companion/internal/app/gateway"
	journalapp "github.com/PabloGalante/dost-companion/internal/app/journal"
	"github.com/PabloGalante/dost-companion/internal/app/triage"
	"github.com/PabloGalante/dost-companion/internal/config"
	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

type stores struct {
	sessions domain.SessionStore
	messages domain.MessageStore
	crisis   domain.CrisisLogStore
	journal  domain.JournalStore
	closer   io.Closer
}

type app struct {
	triage  *triage.Service
	handler http.Handler
	closer  io.Closer
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := observability.Logger()

	providers, err := llm.NewProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := []gateway.Option{
		gateway.WithPrimary(cfg.AI.Primary),
		gateway.WithTimeout(cfg.AI.Timeout),
	}
	if cfg.AI.Persona != "" {
		opts = append(opts, gateway.WithPersona(cfg.AI.Persona))
	}
	gw := gateway.New(providers, nil, opts...)

	var names []string
	for _, p := range gw.Candidates() {
		names = append(names, p.Name())
	}
	log.Info("[LLM] provider chain", "providers", names, "use_mock", cfg.AI.UseMock)

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	triageSvc := triage.NewService(gw)
	convSvc := conversation.NewService(triageSvc, st.sessions, st.messages, st.crisis,
		conversation.WithHistoryLimit(cfg.HistoryLimit))
	journalSvc := journalapp.NewService(st.journal, gw)

	handler := httpadapter.NewServer(convSvc, journalSvc, triageSvc,
		httpadapter.WithMaxMessageLength(cfg.MaxMessageLength),
		httpadapter.WithRoute("GET /ws/sessions/{id}", ws.NewChatHandler(convSvc, cfg.MaxMessageLength)),
	)

	return &app{triage: triageSvc, handler: handler, closer: st.closer}, nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	log := observability.Logger()

	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("[STORE] Using Firestore storage", "project", cfg.GCPProjectID)
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		// 1 store, implements every port
		return &stores{sessions: fs, messages: fs, crisis: fs, journal: fs, closer: fs}, nil

	case config.StorageRedis:
		log.Info("[STORE] Using Redis storage", "ttl", cfg.RedisTTL)
		rs, err := redisstore.NewStore(ctx, cfg.RedisURL, cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("initializing Redis store: %w", err)
		}
		return &stores{sessions: rs, messages: rs, crisis: rs, journal: rs, closer: rs}, nil

	default:
		log.Info("[STORE] Using in-memory storage")
		return &stores{
			sessions: memstore.NewSessionStore(),
			messages: memstore.NewMessageStore(),
			crisis:   memstore.NewCrisisLogStore(),
			journal:  memstore.NewJournalStore(),
		}, nil
	}
}
