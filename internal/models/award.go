package models

import "time"

// PointsAdjustment - тело запроса на начисление баллов клиенту.
type PointsAdjustment struct {
	Points      int    `json:"points"`
	Description string `json:"description"`
	EventType   string `json:"event_type"`
	OrderID     int64  `json:"order_id"`
}

// Outcome - результат одной попытки начисления. Success различает
// успешное начисление и нормальные отрицательные исходы (гостевой заказ,
// неоплаченный заказ и т.д.); Reason заполняется только для последних.
// Ключи в camelCase: этот контракт повторяет ответ исходного плагина,
// в отличие от внутренних событий и записей журнала.
type Outcome struct {
	Success          bool    `json:"success"`
	Reason           string  `json:"reason,omitempty"`
	AlreadyProcessed bool    `json:"alreadyProcessed,omitempty"`
	OrderID          int64   `json:"orderId,omitempty"`
	CustomerID       int64   `json:"customerId,omitempty"`
	PointsAwarded    int     `json:"pointsAwarded"`
	EarnPointsRatio  string  `json:"earnPointsRatio,omitempty"`
	OrderStatus      string  `json:"orderStatus,omitempty"`
	DatePaid         string  `json:"datePaid,omitempty"`
	OrderTotal       float64 `json:"orderTotal,omitempty"`
}

// AwardRecord - локальная запись об успешном начислении. Она служит
// вторым источником правды для проверки идемпотентности: если запись
// в meta_data заказа не удалась, журнал всё равно помнит начисление.
type AwardRecord struct {
	OrderID    int64     `db:"order_id" json:"order_id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	Points     int       `db:"points" json:"points"`
	Ratio      string    `db:"ratio" json:"ratio"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PaidEvent - событие "заказ оплачен" из Kafka-топика POS.
type PaidEvent struct {
	OrderID    int64 `json:"order_id"`
	CustomerID int64 `json:"customer_id,omitempty"`
}

// AwardedEvent публикуется после успешного начисления баллов.
type AwardedEvent struct {
	OrderID    int64  `json:"order_id"`
	CustomerID int64  `json:"customer_id"`
	Points     int    `json:"points"`
	Ratio      string `json:"ratio"`
}
