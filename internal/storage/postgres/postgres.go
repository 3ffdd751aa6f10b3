package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/greenleafpos/points-service/internal/config"
	"github.com/greenleafpos/points-service/internal/models"
	"github.com/greenleafpos/points-service/internal/storage"
)

const awardsTable = "point_awards"

type Storage struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

func New(cfg config.Postgres, log *slog.Logger) (*Storage, error) {
	const fn = "storage.postgres.New"
	log = log.With("fn", fn)

	log.Info("starting storage initialization...")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	// open database and check the connection
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("%s: can't connect to database: %v", fn, err)
	}

	return &Storage{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// SaveAward записывает начисление в журнал. Повторная запись для того же
// заказа молча игнорируется: order_id - первичный ключ, конфликт означает,
// что начисление уже зафиксировано.
func (s *Storage) SaveAward(ctx context.Context, rec *models.AwardRecord) error {
	const fn = "storage.postgres.SaveAward"

	query, args, err := s.builder.
		Insert(awardsTable).
		Columns("order_id", "customer_id", "points", "ratio", "created_at").
		Values(rec.OrderID, rec.CustomerID, rec.Points, rec.Ratio, rec.CreatedAt).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build query: %v", fn, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: can't save award: %v", fn, err)
	}

	return nil
}

// AwardByOrderID возвращает запись журнала для заказа или storage.ErrNoAward.
func (s *Storage) AwardByOrderID(ctx context.Context, orderID int64) (*models.AwardRecord, error) {
	const fn = "storage.postgres.AwardByOrderID"

	query, args, err := s.builder.
		Select("order_id", "customer_id", "points", "ratio", "created_at").
		From(awardsTable).
		Where(sq.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build query: %v", fn, err)
	}

	rec := &models.AwardRecord{}

	err = s.db.GetContext(ctx, rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoAward
	}
	if err != nil {
		return nil, fmt.Errorf("%s: can't get award: %v", fn, err)
	}

	return rec, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
