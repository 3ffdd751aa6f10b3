package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/greenleafpos/points-service/internal/config"
	"github.com/greenleafpos/points-service/internal/models"
	eventGen "github.com/greenleafpos/points-service/lib/generator/event"
	"github.com/greenleafpos/points-service/lib/logger/sl"
)

const (
	MaxTimeToSleep = 10
)

type Producer struct {
	Producer     sarama.AsyncProducer
	awardedTopic string
	Log          *slog.Logger
}

// NewProducer создает обычный (нетранзакционный) асинхронный продюсер.
// Его использует сам сервис для публикации awarded-событий: транзакционный
// продюсер отбрасывает сообщения вне открытой транзакции, поэтому
// transactional.id здесь не выставляется.
func NewProducer(cfg config.Kafka, log *slog.Logger) (*Producer, error) {
	return newProducer(cfg, log, false)
}

// NewTransactionalProducer создает продюсер с transactional.id из конфига.
// Нужен только генератору событий, который пишет в paid-топик пачками
// внутри транзакций (ProducePaidEvents).
func NewTransactionalProducer(cfg config.Kafka, log *slog.Logger) (*Producer, error) {
	return newProducer(cfg, log, true)
}

func newProducer(cfg config.Kafka, log *slog.Logger, transactional bool) (*Producer, error) {
	p, err := sarama.NewAsyncProducer(cfg.BootstrapServers, newSaramaConfig(cfg, transactional))
	if err != nil {
		return nil, fmt.Errorf("can't create producer: %v", err)
	}

	return &Producer{
		Producer:     p,
		awardedTopic: cfg.AwardedTopic,
		Log:          log,
	}, nil
}

func newSaramaConfig(cfg config.Kafka, transactional bool) *sarama.Config {
	config := sarama.NewConfig()

	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Producer.Acks)
	config.Producer.Idempotent = cfg.Producer.EnableIdempotence
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = cfg.Producer.Retries

	if transactional {
		config.Producer.Transaction.ID = cfg.Producer.TransactionalId
	}

	return config
}

// PublishAwarded отправляет событие об успешном начислении в awarded-топик.
// Отправка асинхронная: результат доставки логируется в HandleResult.
func (p *Producer) PublishAwarded(event models.AwardedEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("can't marshal awarded event: %v", err)
	}

	return p.PushMessageToQueue(p.awardedTopic, strconv.FormatInt(event.OrderID, 10), message)
}

// ProducePaidEvents - цикл генератора: транзакционно пишет в топик фейковые
// события "заказ оплачен". Используется только бинарником order-generator
// для локальной и нагрузочной проверки пайплайна.
func (p *Producer) ProducePaidEvents(ctx context.Context, topic string, wg *sync.WaitGroup) {
	defer wg.Done()

	if err := p.Producer.BeginTxn(); err != nil {
		p.Log.Error("can't begin transaction", sl.Err(err))
		return
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := p.Producer.CommitTxn(); err != nil {
				if abortErr := p.Producer.AbortTxn(); abortErr != nil {
					p.Log.Error("can't abort transaction", sl.Err(abortErr))
				}
				p.Log.Error("can't commit transaction", sl.Err(err))
			}

			return

		case <-ticker.C:
			if err := p.Producer.CommitTxn(); err != nil {
				if abortErr := p.Producer.AbortTxn(); abortErr != nil {
					p.Log.Error("can't abort transaction", sl.Err(abortErr))
				}

				p.Log.Error("can't commit transaction", sl.Err(err))
			}

			if err := p.Producer.BeginTxn(); err != nil {
				p.Log.Error("can't begin transaction", sl.Err(err))

				time.Sleep(100 * time.Millisecond)
				continue
			}
		default:
			key, event := eventGen.GeneratePaidEvent()

			if err := p.PushMessageToQueue(topic, key, event); err != nil {
				p.Log.Error("can't push message to queue", sl.Err(err))
			}

			timeToSleep := rand.IntN(MaxTimeToSleep + 1)

			time.Sleep(time.Duration(timeToSleep) * time.Second)
		}
	}
}

func (p *Producer) PushMessageToQueue(topic, key string, message []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(message),
	}

	p.Producer.Input() <- msg

	return nil
}

func (p *Producer) HandleResult(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	go func() {
		for success := range p.Producer.Successes() {
			p.Log.Info("message sent successfully",
				slog.Int("partition", int(success.Partition)),
				slog.Int64("offset", success.Offset),
			)
		}
	}()

	go func() {
		for err := range p.Producer.Errors() {
			p.Log.Error("failed to send message", sl.Err(err))
		}
	}()

	<-ctx.Done()
}
