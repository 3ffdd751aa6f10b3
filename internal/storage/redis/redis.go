// Package redis предоставляет два вспомогательных механизма поверх Redis:
// пер-заказную блокировку начисления и кэш настройки курса баллов.
//
// Блокировка закрывает гонку "прочитал-проверил-записал" вокруг флага
// идемпотентности: два одновременных запроса на один и тот же заказ
// сериализуются по ключу заказа. Кэш курса разгружает settings-эндпоинт
// commerce-бэкенда.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/greenleafpos/points-service/internal/config"
	"github.com/greenleafpos/points-service/internal/storage"
)

const (
	ratioKey      = "points:earn_ratio"
	lockKeyPrefix = "points:lock:"
)

// Client является оберткой над стандартным клиентом `redis.Client`,
// что позволяет в будущем расширить его функциональность, не изменяя
// публичный API пакета.
type Client struct {
	*redis.Client
	points config.Points
}

// New создает и настраивает новый клиент для подключения к Redis.
// Функция проверяет соединение с помощью команды PING и возвращает ошибку,
// если Redis недоступен.
func New(ctx context.Context, cfg config.Redis, points config.Points) (*Client, error) {
	address := net.JoinHostPort(cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Проверяем, что соединение с Redis установлено и сервер отвечает.
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("can't ping redis: %v", err)
	}

	return &Client{Client: client, points: points}, nil
}

// AcquireAwardLock пытается захватить блокировку начисления для заказа.
// Возвращает функцию освобождения блокировки либо storage.ErrLockHeld,
// если блокировку уже держит другой вызов. TTL страхует от зависшего
// владельца: упавший процесс не заблокирует заказ навсегда.
func (c *Client) AcquireAwardLock(ctx context.Context, orderID int64) (func(), error) {
	const fn = "storage.redis.AcquireAwardLock"

	key := fmt.Sprintf("%s%d", lockKeyPrefix, orderID)

	ok, err := c.SetNX(ctx, key, "1", c.points.LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: can't acquire lock: %v", fn, err)
	}
	if !ok {
		return nil, storage.ErrLockHeld
	}

	release := func() {
		// Освобождаем блокировку даже если исходный контекст уже отменен.
		c.Del(context.WithoutCancel(ctx), key)
	}

	return release, nil
}

// Ratio возвращает закэшированный курс начисления баллов.
// Если ключ не найден, возвращается storage.ErrNoRatio - вызывающий код
// должен обратиться к commerce-бэкенду.
func (c *Client) Ratio(ctx context.Context) (string, error) {
	const fn = "storage.redis.Ratio"

	ratio, err := c.Get(ctx, ratioKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNoRatio
	}
	if err != nil {
		return "", fmt.Errorf("%s: can't get ratio: %v", fn, err)
	}

	return ratio, nil
}

// SaveRatio кладет курс в кэш с коротким TTL: настройка меняется редко,
// но изменение должно подхватиться без перезапуска сервиса.
func (c *Client) SaveRatio(ctx context.Context, ratio string) error {
	const fn = "storage.redis.SaveRatio"

	if err := c.Set(ctx, ratioKey, ratio, c.points.RatioCacheTTL).Err(); err != nil {
		return fmt.Errorf("%s: can't set ratio: %v", fn, err)
	}

	return nil
}
