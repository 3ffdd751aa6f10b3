package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/greenleafpos/points-service/internal/config"
	"github.com/greenleafpos/points-service/internal/storage/kafka"
	"github.com/greenleafpos/points-service/lib/logger/sl"
	"github.com/greenleafpos/points-service/lib/logger/slogpretty"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	wg := &sync.WaitGroup{}

	cfg := config.MustLoad()

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting order generator", slog.String("env", cfg.Env))

	p, err := kafka.NewTransactionalProducer(cfg.Kafka, log)
	if err != nil {
		log.Error("failed to init producer", sl.Err(err))
		os.Exit(1)
	}

	log.Info("producer init successful")

	wg.Add(1)
	go p.ProducePaidEvents(ctx, cfg.Kafka.PaidTopic, wg)

	wg.Add(1)
	go p.HandleResult(ctx, wg)

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)

	<-sigchan
	cancel()

	wg.Wait()

	log.Info("shutting down producer")
	p.Producer.AsyncClose()
}
