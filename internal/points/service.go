// Package points реализует начисление бонусных баллов за оплаченные заказы.
//
// Сервис воспроизводит логику начисления плагина Points & Rewards:
// проверяет оплату заказа, отсекает гостевые и уже обработанные заказы,
// считает баллы по настраиваемому курсу, начисляет их через commerce-бэкенд
// и помечает заказ обработанным.
package points

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/greenleafpos/points-service/internal/models"
	"github.com/greenleafpos/points-service/internal/storage"
	"github.com/greenleafpos/points-service/lib/logger/sl"
)

// MetaPointsEarned - ключ meta-записи заказа, служащий флагом идемпотентности.
const MetaPointsEarned = "_wc_points_earned"

const (
	ratioSettingID = "wc_points_rewards_earn_points_ratio"

	reasonNotPayable = "not yet payable"
	reasonGuestOrder = "guest order"
	reasonInProgress = "award in progress"
)

type Commerce interface {
	Order(ctx context.Context, id int64) (*models.Order, error)
	Setting(ctx context.Context, id string) (string, error)
	AdjustPoints(ctx context.Context, customerID int64, adj models.PointsAdjustment) error
	UpdateOrderMeta(ctx context.Context, orderID int64, key, value string) error
	AddOrderNote(ctx context.Context, orderID int64, note string) error
}

type Locker interface {
	AcquireAwardLock(ctx context.Context, orderID int64) (func(), error)
}

type RatioCache interface {
	Ratio(ctx context.Context) (string, error)
	SaveRatio(ctx context.Context, ratio string) error
}

type AwardLog interface {
	SaveAward(ctx context.Context, rec *models.AwardRecord) error
	AwardByOrderID(ctx context.Context, orderID int64) (*models.AwardRecord, error)
}

type Publisher interface {
	PublishAwarded(event models.AwardedEvent) error
}

type Service struct {
	commerce     Commerce
	locker       Locker
	cache        RatioCache
	awards       AwardLog
	publisher    Publisher
	defaultRatio string
	log          *slog.Logger
}

// Deps - зависимости сервиса. Обязателен только Commerce и Log;
// nil в остальных полях отключает соответствующий механизм
// (блокировку, кэш курса, журнал, публикацию событий).
type Deps struct {
	Commerce     Commerce
	Locker       Locker
	RatioCache   RatioCache
	AwardLog     AwardLog
	Publisher    Publisher
	DefaultRatio string
	Log          *slog.Logger
}

func New(deps Deps) *Service {
	defaultRatio := deps.DefaultRatio
	if defaultRatio == "" {
		defaultRatio = "1:1"
	}

	return &Service{
		commerce:     deps.Commerce,
		locker:       deps.Locker,
		cache:        deps.RatioCache,
		awards:       deps.AwardLog,
		publisher:    deps.Publisher,
		defaultRatio: defaultRatio,
		log:          deps.Log,
	}
}

// Award обрабатывает одно начисление для заказа orderID.
//
// customerIDHint носит справочный характер: авторитетный идентификатор
// клиента всегда берется из самого заказа.
//
// Нормальные отрицательные исходы (заказ не оплачен, гостевой заказ,
// уже обработан, ноль баллов) возвращаются как Outcome без ошибки.
// Ошибкой завершаются только сбои критического пути: чтение заказа
// (*woocommerce.FetchError) и начисление (*woocommerce.AdjustError);
// оба безопасны для повтора, так как флаг идемпотентности к этому
// моменту еще не записан.
func (s *Service) Award(ctx context.Context, orderID, customerIDHint int64) (*models.Outcome, error) {
	const fn = "points.Award"

	log := s.log.With(
		slog.String("fn", fn),
		slog.Int64("order_id", orderID),
	)
	if customerIDHint != 0 {
		log = log.With(slog.Int64("customer_id_hint", customerIDHint))
	}

	if s.locker != nil {
		release, err := s.locker.AcquireAwardLock(ctx, orderID)
		switch {
		case errors.Is(err, storage.ErrLockHeld):
			log.Info("another award for this order is in flight")

			return &models.Outcome{Success: false, Reason: reasonInProgress, OrderID: orderID}, nil

		case err != nil:
			// Недоступный Redis не должен блокировать начисления.
			log.Warn("award lock unavailable, proceeding without it", sl.Err(err))

		default:
			defer release()
		}
	}

	order, err := s.commerce.Order(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	paid := order.DatePaid != ""
	completed := order.Status == "completed"

	if !paid && !completed {
		log.Info("order is not yet payable", slog.String("order_status", order.Status))

		return &models.Outcome{
			Success:     false,
			Reason:      reasonNotPayable,
			OrderID:     orderID,
			OrderStatus: order.Status,
			DatePaid:    order.DatePaid,
		}, nil
	}

	if order.CustomerID == 0 {
		log.Info("guest order, no points awarded")

		return &models.Outcome{Success: false, Reason: reasonGuestOrder, OrderID: orderID}, nil
	}

	if prior, ok := order.Meta(MetaPointsEarned); ok && prior != "" && prior != "0" {
		log.Info("order already processed", slog.String("prior_points", prior))

		return &models.Outcome{
			Success:          true,
			AlreadyProcessed: true,
			OrderID:          orderID,
			CustomerID:       order.CustomerID,
			PointsAwarded:    priorPoints(prior),
		}, nil
	}

	// Журнал начислений - второй источник правды: если после успешного
	// начисления не удалось записать meta, повторный вызов все равно
	// не начислит баллы дважды.
	if s.awards != nil {
		rec, err := s.awards.AwardByOrderID(ctx, orderID)
		if err != nil && !errors.Is(err, storage.ErrNoAward) {
			log.Warn("can't check award log", sl.Err(err))
		}
		if rec != nil {
			log.Info("award already logged locally", slog.Int("points", rec.Points))

			return &models.Outcome{
				Success:          true,
				AlreadyProcessed: true,
				OrderID:          orderID,
				CustomerID:       order.CustomerID,
				PointsAwarded:    rec.Points,
			}, nil
		}
	}

	ratio := s.resolveRatio(ctx, log)

	earned := Calculate(order, ratio)

	if earned <= 0 {
		// Нулевое начисление тоже помечает заказ обработанным.
		if err := s.commerce.UpdateOrderMeta(ctx, orderID, MetaPointsEarned, "0"); err != nil {
			log.Warn("can't mark zero-point order as processed", sl.Err(err))
		}

		log.Info("order earned zero points")

		return &models.Outcome{
			Success:         true,
			OrderID:         orderID,
			CustomerID:      order.CustomerID,
			PointsAwarded:   0,
			EarnPointsRatio: ratio,
		}, nil
	}

	adjustment := models.PointsAdjustment{
		Points:      earned,
		Description: fmt.Sprintf("Points earned for order #%d", orderID),
		EventType:   "order-placed",
		OrderID:     orderID,
	}

	if err := s.commerce.AdjustPoints(ctx, order.CustomerID, adjustment); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	// Дальше только best-effort запись результата: начисление уже сделано,
	// сбои фиксации логируются, но не роняют операцию.
	if s.awards != nil {
		rec := &models.AwardRecord{
			OrderID:    orderID,
			CustomerID: order.CustomerID,
			Points:     earned,
			Ratio:      ratio,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.awards.SaveAward(ctx, rec); err != nil {
			log.Warn("can't save award to log", sl.Err(err))
		}
	}

	if err := s.commerce.UpdateOrderMeta(ctx, orderID, MetaPointsEarned, strconv.Itoa(earned)); err != nil {
		log.Warn("can't write points meta", sl.Err(err))
	}

	note := fmt.Sprintf("Customer earned %d points for purchase.", earned)
	if err := s.commerce.AddOrderNote(ctx, orderID, note); err != nil {
		log.Warn("can't add order note", sl.Err(err))
	}

	if s.publisher != nil {
		event := models.AwardedEvent{
			OrderID:    orderID,
			CustomerID: order.CustomerID,
			Points:     earned,
			Ratio:      ratio,
		}
		if err := s.publisher.PublishAwarded(event); err != nil {
			log.Warn("can't publish awarded event", sl.Err(err))
		}
	}

	total, _ := strconv.ParseFloat(order.Total, 64)

	log.Info("points awarded",
		slog.Int("points", earned),
		slog.Int64("customer_id", order.CustomerID),
		slog.String("ratio", ratio),
	)

	return &models.Outcome{
		Success:         true,
		OrderID:         orderID,
		CustomerID:      order.CustomerID,
		PointsAwarded:   earned,
		EarnPointsRatio: ratio,
		OrderTotal:      total,
	}, nil
}

// resolveRatio возвращает курс начисления: из кэша, из настроек бэкенда
// или значение по умолчанию. Любой сбой здесь не фатален - курс молча
// откатывается к дефолтному, проблема только логируется.
func (s *Service) resolveRatio(ctx context.Context, log *slog.Logger) string {
	if s.cache != nil {
		ratio, err := s.cache.Ratio(ctx)
		if err == nil && ratio != "" {
			return ratio
		}
		if err != nil && !errors.Is(err, storage.ErrNoRatio) {
			log.Warn("can't read ratio cache", sl.Err(err))
		}
	}

	ratio, err := s.commerce.Setting(ctx, ratioSettingID)
	if err != nil || ratio == "" {
		if err != nil {
			log.Warn("can't fetch earn ratio, falling back to default", sl.Err(err))
		}

		return s.defaultRatio
	}

	if s.cache != nil {
		if err := s.cache.SaveRatio(ctx, ratio); err != nil {
			log.Warn("can't cache earn ratio", sl.Err(err))
		}
	}

	return ratio
}
