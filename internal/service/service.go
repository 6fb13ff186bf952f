// service реализует машину состояний аренды токенов поверх контракта
// storage.Storage: генерацию, выдачу, продление, возврат и удаление.
//
// Основные аспекты:
//   - Service не хранит состояния между вызовами — всё живое состояние
//     находится в хранилище, поэтому несколько экземпляров сервиса могут
//     работать с одним хранилищем из разных процессов.
//   - Переходы состояний — последовательности отдельных операций хранилища,
//     а не транзакции: корректность опирается на атомарность каждого
//     примитива (SPOP, скриптованные продления TTL). Короткие окна
//     несогласованности между шагами возможны и известны.
//   - Ошибки возвращаются типизированно и далее маппятся
//     транспортом на HTTP-статусы (см. комментарии к переменным ниже).
package service

import (
	"errors"

	"github.com/kasatkinanv/token-lease-service/internal/config"
	"github.com/kasatkinanv/token-lease-service/internal/storage"
)

var (
	// ErrNotFound — операция ссылается на неизвестный токен.
	// Транспорт: HTTP 404.
	ErrNotFound = errors.New("token not found")

	// ErrNotAssigned — попытка вернуть токен, который сейчас не в аренде.
	// Транспорт: HTTP 412.
	ErrNotAssigned = errors.New("token is not assigned")

	// ErrPoolExhausted — запрос выдачи при пустом множестве свободных токенов.
	// Транспорт: HTTP 429.
	ErrPoolExhausted = errors.New("no available tokens")

	// ErrTokenCollision — исчерпаны попытки сгенерировать уникальный
	// идентификатор (при достаточной энтропии UUID практически недостижимо;
	// предел существует только ради гарантии завершения цикла).
	// Транспорт: HTTP 500.
	ErrTokenCollision = errors.New("token id collision retries exhausted")
)

// Service реализует операции пула аренды.
type Service struct {
	storage storage.Storage
	cfg     config.TokensConfig
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, cfg config.TokensConfig) *Service {
	return &Service{
		storage: st,
		cfg:     cfg,
	}
}
