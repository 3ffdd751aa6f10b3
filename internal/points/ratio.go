package points

import (
	"math"
	"strconv"
	"strings"

	"github.com/greenleafpos/points-service/internal/models"
)

// ParseRatio разбирает курс вида "<баллы>:<деньги>". Каждая половина,
// которую не удалось разобрать или которая равна нулю, считается единицей -
// ровно так ведет себя правило `parseFloat(x) || 1` исходного плагина.
func ParseRatio(ratio string) (pointsPerUnit, monetaryUnit float64) {
	left, right, _ := strings.Cut(ratio, ":")

	return floatOrOne(left), floatOrOne(right)
}

func floatOrOne(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 {
		return 1
	}

	return v
}

// Calculate считает количество баллов за заказ по курсу ratio.
//
// Формула повторяет арифметику плагина Points & Rewards один в один,
// включая промежуточное вычисление цены за единицу:
//
//	unitPrice = subtotal / quantity
//	linePoints = unitPrice * (pointsPerUnit / monetaryUnit) * quantity
//
// Сумма по строкам уменьшается на баллы скидки и не может стать
// отрицательной. Результат усекается вниз, не округляется.
func Calculate(order *models.Order, ratio string) int {
	pointsPerUnit, monetaryUnit := ParseRatio(ratio)

	var raw float64

	for _, item := range order.LineItems {
		subtotal, _ := strconv.ParseFloat(item.Subtotal, 64)

		unitPrice := subtotal / float64(item.Quantity)
		raw += unitPrice * (pointsPerUnit / monetaryUnit) * float64(item.Quantity)
	}

	// Нечисловой discount_total считается нулем.
	discount, _ := strconv.ParseFloat(order.DiscountTotal, 64)
	raw -= discount * (pointsPerUnit / monetaryUnit)

	if raw < 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		// Строка с нулевым количеством дает NaN; такие заказы дают 0 баллов.
		raw = 0
	}

	return int(math.Floor(raw))
}

// priorPoints разбирает ранее записанное значение флага идемпотентности.
// Неразборчивое значение трактуется как 0.
func priorPoints(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return int(v)
}
