package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/CourierDesk/config"
	"github.com/BearBump/CourierDesk/internal/broker/kafka"
	"github.com/BearBump/CourierDesk/internal/broker/messages"
	"github.com/BearBump/CourierDesk/internal/mailer"
	"github.com/BearBump/CourierDesk/internal/services/dispatch"
	"github.com/BearBump/CourierDesk/internal/storage/pgcourier"
)

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(topic string, key, value []byte) error) error
	Close() error
}

type notifierFactories struct {
	newStorage  func(cfg *config.Config) (repo dispatch.Repository, closeFn func(), err error)
	newConsumer func(cfg *config.Config, topics []string, groupID string) kafkaConsumer
	newMailer   func(cfg *config.Config) dispatch.Mailer
}

func defaultNotifierFactories() notifierFactories {
	return notifierFactories{
		newStorage: func(cfg *config.Config) (dispatch.Repository, func(), error) {
			st, err := pgcourier.New(cfg.Database.ConnString())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newConsumer: func(cfg *config.Config, topics []string, groupID string) kafkaConsumer {
			return kafka.NewConsumer(cfg.Kafka.Brokers(), topics, groupID)
		},
		newMailer: func(cfg *config.Config) dispatch.Mailer {
			if cfg.SMTP.Host == "" {
				return nil
			}
			return mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		},
	}
}

func RunNotifier(ctx context.Context, cfg *config.Config, f notifierFactories) error {
	groupID := cfg.CourierDesk.KafkaConsumerGroup
	if groupID == "" {
		groupID = "courier-notifier"
	}
	httpAddr := cfg.CourierDesk.NotifierHTTPAddr
	if httpAddr == "" {
		httpAddr = ":8082"
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	d := dispatch.New(repo, f.newMailer(cfg))

	topics := []string{
		messages.TopicShipmentCreated,
		messages.TopicShipmentStatusChanged,
		messages.TopicUserRegistered,
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runNotifierHTTPServer(ctx, notifierHTTPOpts{httpAddr: httpAddr, dispatcher: d})
	}()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- consumeLoop(ctx, cfg, f, topics, groupID, d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	case err := <-consumeErr:
		return err
	}
}

// consumeLoop keeps a consumer running until the context is canceled,
// rebuilding it with a short backoff after broker errors.
func consumeLoop(ctx context.Context, cfg *config.Config, f notifierFactories, topics []string, groupID string, d *dispatch.Dispatcher) error {
	for {
		consumer := f.newConsumer(cfg, topics, groupID)
		slog.Info("kafka consumer started", "topics", topics, "group", groupID)

		err := consumer.Consume(ctx, func(topic string, _ []byte, value []byte) error {
			return d.Handle(ctx, topic, value)
		})
		_ = consumer.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("kafka consume stopped, reconnecting", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}
