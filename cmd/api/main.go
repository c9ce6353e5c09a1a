package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/config"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/http/handler"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/memory"
	natsInfra "github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/nats"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/postgres"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/rabbitmq"
	redisInfra "github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/redis"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/logging"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/metrics"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/notification"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/presence"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/session"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/usecase"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}
	// Configuração de Logs (Zerolog - estruturado e rápido)
	logging.Setup(cfg)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	// Inicialização da Camada de Infraestrutura (Repositories)
	var (
		transactionRepository  gateway.TransactionRepository
		offerRepository        gateway.OfferRepository
		notificationRepository gateway.NotificationRepository
		uow                    gateway.TransactionManager
	)
	switch cfg.Storage {
	case "memory":
		store := memory.NewStore()
		transactionRepository = memory.NewTransactionRepository(store)
		offerRepository = memory.NewOfferRepository(store)
		notificationRepository = memory.NewNotificationRepository(store)
		uow = memory.NewUow(store)
		log.Warn().Msg("Armazenamento em memória: os dados somem ao reiniciar")
	default:
		dbPool, err := pgxpool.New(ctx, cfg.DB.URL())
		if err != nil {
			log.Fatal().Err(err).Msg("Não foi possível conectar ao banco de dados")
		}
		defer dbPool.Close()

		if err := dbPool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("Banco de dados não está respondendo")
		}
		if err := postgres.Migrate(ctx, dbPool); err != nil {
			log.Fatal().Err(err).Msg("Falha ao aplicar schema")
		}
		log.Info().Msg("✅ Conectado ao PostgreSQL com sucesso!")

		transactionRepository = postgres.NewTransactionRepository(dbPool)
		offerRepository = postgres.NewOfferRepository(dbPool)
		notificationRepository = postgres.NewNotificationRepository(dbPool)
		//  Unit of Work (Gerenciador de Transações)
		uow = postgres.NewUow(dbPool)
	}

	var idempotencyRepo gateway.IdempotencyRepository
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Não foi possível conectar ao Redis (Idempotência desabilitada)")
	} else {
		idempotencyRepo = redisInfra.NewIdempotencyRepository(redisClient)
		log.Info().Msg("✅ Conectado ao Redis!")
	}

	eventPublisher, closeBroker := connectPublisher(cfg)
	defer closeBroker()

	notificationStore := notification.NewStore(notificationRepository, recorder, cfg.StoreTimeout)

	deps := usecase.Dependencies{
		Transactions:      transactionRepository,
		Offers:            offerRepository,
		Notifications:     notificationRepository,
		TxManager:         uow,
		Publisher:         eventPublisher,
		NotificationStore: notificationStore,
		Metrics:           recorder,
		StoreTimeout:      cfg.StoreTimeout,
		DeepLinkBase:      cfg.DeepLinkBase,
	}

	// Presença é só informativa: nada do ciclo de vida depende dela.
	roster := presence.NewRoster()
	var presenceSocket http.Handler
	if cfg.PresenceMode == "live" {
		hub := presence.NewHub()
		roster.Attach(hub)
		presenceSocket = hub
	} else {
		roster.Attach(presence.NewStaticChannel())
	}

	sessions := session.NewRegistry()

	// Handlers
	router := handler.NewRouter(handler.RouterConfig{
		Transactions: handler.NewTransactionHandler(
			usecase.NewCreateTransaction(deps),
			usecase.NewGetTransaction(deps),
			usecase.NewListTransactions(deps),
			usecase.NewSettleTransaction(deps),
			usecase.NewCancelTransaction(deps),
		),
		Offers: handler.NewOfferHandler(
			usecase.NewCreateOffer(deps),
			usecase.NewListOffers(deps),
			usecase.NewResolveOffer(deps),
		),
		Notifications:  handler.NewNotificationHandler(notificationStore),
		Sessions:       handler.NewSessionHandler(sessions),
		Presence:       handler.NewPresenceHandler(roster),
		PresenceSocket: presenceSocket,
		Registry:       sessions,
		Idempotency:    idempotencyRepo,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		RequestTimeout: 60 * time.Second,
	})

	// Subir o Servidor
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("🚀 Servidor rodando na porta %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Falha ao iniciar servidor HTTP")
		}
	}()

	// Graceful Shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	<-stopChan

	log.Info().Msg("Desligando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Falha no shutdown do servidor HTTP")
	}
}

// connectPublisher abre o broker escolhido em EVENT_BROKER. Sem broker, os eventos
// não são enviados mas a API continua funcionando.
func connectPublisher(cfg *config.Config) (gateway.EventPublisher, func()) {
	noop := func() {}

	switch cfg.EventBroker {
	case "rabbitmq":
		rabbitConn, err := amqp.DialConfig(cfg.RabbitMQ.URL(), amqp.Config{
			Properties: amqp.Table{
				"connection_name": "OTCDeskAPI_Publisher",
			},
		})
		if err != nil {
			log.Warn().Err(err).Msg("Falha ao conectar no RabbitMQ (Eventos não serão enviados)")
			return nil, noop
		}

		ch, err := rabbitConn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("Falha ao abrir canal RabbitMQ")
		}
		// Declarar Exchange (Tópico)
		if err := rabbitmq.DeclareExchange(ch, gateway.LifecycleExchange); err != nil {
			log.Fatal().Err(err).Msg("Falha ao declarar Exchange")
		}
		log.Info().Msg("✅ Conectado ao RabbitMQ!")

		return rabbitmq.NewRabbitMQPublisher(ch), func() {
			_ = ch.Close()
			_ = rabbitConn.Close()
		}

	case "nats":
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("OTCDeskAPI_Publisher"))
		if err != nil {
			log.Warn().Err(err).Msg("Falha ao conectar no NATS (Eventos não serão enviados)")
			return nil, noop
		}
		log.Info().Msg("✅ Conectado ao NATS!")
		return natsInfra.NewPublisher(nc), func() {
			if err := nc.Drain(); err != nil {
				log.Error().Err(err).Msg("Erro ao drenar conexão NATS")
			}
		}
	}

	log.Warn().Msg("EVENT_BROKER=none: eventos do ciclo de vida não serão publicados")
	return nil, noop
}
