package models

// Order - это заказ в том виде, в котором его возвращает commerce-бэкенд.
// Сервис только читает заказы; единственные изменения, которые он вносит, -
// это добавление meta-записи и комментария через API самого бэкенда.
type Order struct {
	ID            int64       `json:"id"`
	Status        string      `json:"status"`
	DatePaid      string      `json:"date_paid"`
	CustomerID    int64       `json:"customer_id"`
	Total         string      `json:"total"`
	DiscountTotal string      `json:"discount_total"`
	LineItems     []LineItem  `json:"line_items"`
	MetaData      []MetaEntry `json:"meta_data"`
}

type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// MetaEntry - одна пара ключ/значение из meta_data заказа. Бэкенд не
// гарантирует уникальность ключей, поэтому meta_data моделируется как
// упорядоченный срез пар, а не map.
type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Meta возвращает значение первой meta-записи с ключом key.
// Семантика "первое совпадение выигрывает" важна: дубликаты ключей возможны.
func (o *Order) Meta(key string) (string, bool) {
	for _, entry := range o.MetaData {
		if entry.Key == key {
			return entry.Value, true
		}
	}

	return "", false
}

// Setting - одна настройка из списка, который возвращает
// GET /settings?search=... на стороне бэкенда.
type Setting struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}
