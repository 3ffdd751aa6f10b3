package woocommerce

import (
	"errors"
	"fmt"
)

// ErrSettingNotFound возвращается, когда settings-эндпоинт ответил успешно,
// но искомой настройки в списке нет.
var ErrSettingNotFound = errors.New("setting not found")

// FetchError - бэкенд ответил не-2xx на чтение заказа. Фатальная ошибка
// операции начисления: без заказа считать нечего.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("order fetch failed with status %d", e.StatusCode)
}

// AdjustError - бэкенд отклонил начисление баллов. Тоже фатальная ошибка,
// но безопасная для повтора: к этому моменту в заказ еще ничего не записано.
type AdjustError struct {
	StatusCode int
}

func (e *AdjustError) Error() string {
	return fmt.Sprintf("points adjustment failed with status %d", e.StatusCode)
}
