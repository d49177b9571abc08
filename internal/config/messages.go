package config

import "fmt"

const (
	errRequiredEnvNotSetFmt    = "required environment variable %s is not set"
	errRequiredForBackendFmt   = "%s must be set for the %s storage backend"
	errStorageBackendFmt       = "STORAGE_BACKEND must be %q or %q, got %q"
	errStorageLimitPositiveFmt = "%s must be positive"
)

type messageBuilders struct {
	requiredEnvNotSet  func(string) string
	requiredForBackend func(key, backend string) error
	unknownBackend     func(string) error
	limitNotPositive   func(string) error
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
		requiredForBackend: func(key, backend string) error {
			return fmt.Errorf(errRequiredForBackendFmt, key, backend)
		},
		unknownBackend: func(got string) error {
			return fmt.Errorf(errStorageBackendFmt, StorageBackendLocal, StorageBackendS3, got)
		},
		limitNotPositive: func(key string) error {
			return fmt.Errorf(errStorageLimitPositiveFmt, key)
		},
	}
}

var messages = newMessageBuilders()
