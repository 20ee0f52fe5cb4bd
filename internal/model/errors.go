package model

import "errors"

var (
	// Источник не ответил или прислал то, что не разбирается. Пропускаем источник
	ErrSourceUnavailable = errors.New("source unavailable")
	// У записи нет заголовка или ссылки. Пропускаем запись
	ErrMalformedEntry = errors.New("malformed entry")
	// Нет доступа к БД. Прогон прерывается
	ErrStoreUnavailable = errors.New("store unavailable")
	// Не получилось собрать или отправить дайджест
	ErrDeliveryFailure = errors.New("delivery failure")
)
