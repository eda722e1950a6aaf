package health

import "context"

// Pinger определяет интерфейс для проверки здоровья хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}
