package domain

import "errors"

// Таксономия ошибок ядра. Машинные виды (kind) отделены от человекочитаемых
// причин в Decision: наружу уходит reason-строка, внутрь — сентинел для errors.Is.
var (
	// ErrInvalidAmount — сумма отрицательная или не является числом.
	// Отклоняем до любых обращений к хранилищу.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrStorageUnavailable — транзиентный сбой или таймаут хранилища.
	// Чтение можно ретраить; повторный RecordSpend обязан быть at-most-once
	// на стороне вызывающего, иначе получим двойной учет.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound — сущность отсутствует там, где отсутствие НЕ является
	// нормальным исходом (TrustEntry и PolicyConfig сюда не попадают:
	// их "не найдено" — это значение, а не ошибка).
	ErrNotFound = errors.New("not found")

	// ErrConfigurationInconsistent — лимит задан нулевым или отрицательным.
	// Движок трактует это как "никогда не авто-апрувить / бюджет исчерпан",
	// а не как отказ системы.
	ErrConfigurationInconsistent = errors.New("configuration inconsistent")
)
