// Package eventGen предоставляет генерацию случайных событий "заказ оплачен"
// для эмуляции потока данных от POS. Это основной инструмент сервиса
// `order-generator`. Для создания фейковых данных используется
// библиотека `gofakeit`.
package eventGen

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/greenleafpos/points-service/internal/models"
)

// GeneratePaidEvent создает одно случайное событие оплаты заказа.
//
// Примерно каждый десятый заказ гостевой (customer_id = 0) - такие
// заказы сервис начисления должен отклонять, и генератор дает
// возможность проверить это на живом пайплайне.
//
// Возвращает:
//   - `string`: идентификатор заказа, используемый как ключ сообщения в Kafka.
//   - `[]byte`: JSON-представление события.
func GeneratePaidEvent() (string, []byte) {
	orderID := int64(gofakeit.Number(1_000, 999_999))

	var customerID int64
	if gofakeit.Number(1, 10) > 1 {
		customerID = int64(gofakeit.Number(1, 5_000))
	}

	event := models.PaidEvent{
		OrderID:    orderID,
		CustomerID: customerID,
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		// В данном контексте (генератор) просто выводим ошибку в консоль.
		fmt.Println("Error marshaling to JSON:", err)
		return "", nil
	}

	return strconv.FormatInt(orderID, 10), jsonData
}
