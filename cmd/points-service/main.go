package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/greenleafpos/points-service/internal/config"
	"github.com/greenleafpos/points-service/internal/http-server/handlers/points/award"
	"github.com/greenleafpos/points-service/internal/http-server/handlers/points/getaward"
	mwLogger "github.com/greenleafpos/points-service/internal/http-server/middleware/logger"
	"github.com/greenleafpos/points-service/internal/points"
	processor "github.com/greenleafpos/points-service/internal/processor/award"
	"github.com/greenleafpos/points-service/internal/storage/kafka"
	"github.com/greenleafpos/points-service/internal/storage/postgres"
	"github.com/greenleafpos/points-service/internal/storage/redis"
	"github.com/greenleafpos/points-service/internal/woocommerce"
	"github.com/greenleafpos/points-service/lib/logger/sl"
	"github.com/greenleafpos/points-service/lib/logger/slogpretty"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	wg := &sync.WaitGroup{}

	cfg := config.MustLoad()

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting points service", slog.String("env", cfg.Env))

	awards, err := postgres.New(cfg.Postgres, log)
	if err != nil {
		log.Error("failed to init award log", sl.Err(err))
		os.Exit(1)
	}

	log.Info("award log init successful")

	cache, err := redis.New(ctx, cfg.Redis, cfg.Points)
	if err != nil {
		log.Error("failed to init cache", sl.Err(err))
		os.Exit(1)
	}

	log.Info("cache init successful")

	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Error("failed to init producer", sl.Err(err))
		os.Exit(1)
	}

	wg.Add(1)
	go producer.HandleResult(ctx, wg)

	service := points.New(points.Deps{
		Commerce:     woocommerce.New(cfg.Woo, log),
		Locker:       cache,
		RatioCache:   cache,
		AwardLog:     awards,
		Publisher:    producer,
		DefaultRatio: cfg.Points.DefaultRatio,
		Log:          log,
	})

	eventChan := make(chan *sarama.ConsumerMessage)
	commitChan := make(chan *sarama.ConsumerMessage)

	consumer, err := kafka.NewConsumer(cfg.Kafka, eventChan, commitChan, log)
	if err != nil {
		log.Error("failed to init consumer", sl.Err(err))
		os.Exit(1)
	}

	log.Info("consumer init successful")

	proc := processor.New(service, eventChan, commitChan, log)

	wg.Add(1)
	go proc.ProcessEvents(ctx, wg)

	wg.Add(1)
	go consumer.ProcessMessages(ctx, cfg.Kafka.PaidTopic, wg)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)

	router.Post("/api/v1/points/award", award.New(log, service))
	router.Get("/api/v1/points/awards/{orderID}", getaward.New(log, awards))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", sl.Err(err))
		}
	}()

	log.Info("server started", slog.String("address", cfg.HTTPServer.Address))

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)

	<-sigchan
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown http server", sl.Err(err))
	}

	wg.Wait()

	log.Info("shutting down consumer")
	consumer.Consumer.Close()

	log.Info("shutting down producer")
	producer.Producer.AsyncClose()

	if err := awards.Close(); err != nil {
		log.Error("failed to close award log", sl.Err(err))
	}

	log.Info("points service stopped")
}
