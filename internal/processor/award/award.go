package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"

	"github.com/greenleafpos/points-service/internal/models"
	"github.com/greenleafpos/points-service/lib/logger/sl"
	wp "github.com/greenleafpos/points-service/lib/workerpool"
)

type Awarder interface {
	Award(ctx context.Context, orderID, customerIDHint int64) (*models.Outcome, error)
}

type Processor struct {
	service    Awarder
	eventChan  <-chan *sarama.ConsumerMessage
	commitChan chan<- *sarama.ConsumerMessage
	log        *slog.Logger
}

func New(
	service Awarder,
	eventChan <-chan *sarama.ConsumerMessage,
	commitChan chan<- *sarama.ConsumerMessage,
	log *slog.Logger,
) *Processor {
	return &Processor{
		service:    service,
		eventChan:  eventChan,
		commitChan: commitChan,
		log:        log,
	}
}

func (p *Processor) ProcessEvents(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	const fn = "processor.award.ProcessEvents"
	log := p.log.With("fn", fn)

	events := make([]*sarama.ConsumerMessage, 0, wp.DefaultWorkersCount)

	pool := wp.New(wp.DefaultWorkersCount, p.processEvent)

	for {
		select {
		case <-ctx.Done():
			if len(events) != 0 {
				p.processBatch(ctx, events, pool)
			}

			log.Info("stopping event processing by context")
			return

		case event := <-p.eventChan:
			events = append(events, event)

			if len(events) == wp.DefaultWorkersCount {
				p.processBatch(ctx, events, pool)

				events = make([]*sarama.ConsumerMessage, 0, wp.DefaultWorkersCount)
			}
		}
	}
}

func (p *Processor) processBatch(ctx context.Context, events []*sarama.ConsumerMessage, pool *wp.Pool[*sarama.ConsumerMessage]) {
	pool.Create()

	wg := &sync.WaitGroup{}

	for _, event := range events {
		wg.Add(1)

		go func(currentEvent *sarama.ConsumerMessage) {
			defer wg.Done()

			err := pool.Handle(ctx, currentEvent)
			if err != nil {
				// Без коммита: сообщение будет доставлено повторно.
				p.log.Error("failed to handle paid event", sl.Err(err))
			} else {
				p.commitChan <- currentEvent
			}
		}(event)
	}

	wg.Wait()
	pool.Wait()
}

func (p *Processor) processEvent(ctx context.Context, msg *sarama.ConsumerMessage) error {
	p.log.Info("received paid event")

	var event models.PaidEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Битое событие коммитим: повторная доставка его не починит.
		p.log.Error("can't unmarshal paid event, skipping", sl.Err(err))

		return nil
	}

	outcome, err := p.service.Award(ctx, event.OrderID, event.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to award points for order %d: %v", event.OrderID, err)
	}

	p.log.Info("paid event processed",
		slog.Int64("order_id", event.OrderID),
		slog.Bool("success", outcome.Success),
		slog.Int("points_awarded", outcome.PointsAwarded),
	)

	return nil
}
