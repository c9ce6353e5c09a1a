package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/audit"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/config"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/memory"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/mongodb"
	natsInfra "github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/nats"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/rabbitmq"
	redisInfra "github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/redis"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/logging"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}
	logging.Setup(cfg)

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI()))
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao criar client MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Erro ao desconectar Mongo")
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Verifica conexão
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("Erro ao pingar MongoDB")
	}
	log.Info().Msg("✅ Conectado ao MongoDB!")
	auditRepo := mongodb.NewAuditRepository(mongoClient, cfg.Mongo.Database)

	var dedup gateway.EventDeduplicator
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer redisClient.Close()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis indisponível, dedup só em memória")
		dedup = memory.NewEventDeduplicator()
	} else {
		dedup = redisInfra.NewEventDeduplicator(redisClient)
		log.Info().Msg("✅ Conectado ao Redis!")
	}

	processor := audit.NewProcessor(auditRepo, dedup)

	// Graceful Shutdown: o contexto cai no Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.EventBroker {
	case "rabbitmq":
		err = consumeRabbitMQ(ctx, cfg, processor)
	case "nats":
		err = consumeNATS(ctx, cfg, processor)
	default:
		log.Fatal().Str("broker", cfg.EventBroker).Msg("Worker precisa de EVENT_BROKER=rabbitmq ou nats")
	}
	if err != nil {
		// Força o worker a cair para o Docker subir de novo
		log.Fatal().Err(err).Msg("🔴 Consumo interrompido")
	}
	log.Info().Msg("Shutting down worker...")
}

func consumeRabbitMQ(ctx context.Context, cfg *config.Config, processor *audit.Processor) error {
	conn, err := amqp.DialConfig(cfg.RabbitMQ.URL(), amqp.Config{
		Properties: amqp.Table{
			"connection_name": "AuditWorker_Consumer",
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar conexão RabbitMQ")
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() {
		if err := ch.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar canal RabbitMQ")
		}
	}()

	q, err := rabbitmq.DeclareAuditQueue(ch, gateway.LifecycleExchange)
	if err != nil {
		return err
	}

	log.Info().Str("queue", q.Name).Msg(" [*] Worker iniciado. Aguardando mensagens...")
	return rabbitmq.NewConsumer(ch, processor).Run(ctx, q.Name)
}

func consumeNATS(ctx context.Context, cfg *config.Config, processor *audit.Processor) error {
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("AuditWorker_Consumer"))
	if err != nil {
		return err
	}
	defer nc.Close()

	log.Info().Str("queue_group", natsInfra.QueueGroup).Msg(" [*] Worker iniciado. Aguardando mensagens...")
	return natsInfra.NewSubscriber(nc, processor).Run(ctx, gateway.LifecycleExchange)
}
