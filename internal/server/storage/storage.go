package storage

import "context"

// Storage объединяет все хранилища сервера
type Storage interface {
	UserStorage
	SubscriptionStorage
	VideoStorage

	// Ping checks that the storage is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connections
	Close() error
}
