package error

import (
	"fmt"
	"net/http"
)

// StorageError surfaces a storage-layer fault from any of the record stores.
type storageError struct {
	message string
	cause   error
}

func StorageError(message string, cause error) error {
	return &storageError{message: message, cause: cause}
}

func (err *storageError) Error() string {
	if err.cause != nil {
		return fmt.Sprintf("%s: %v", err.message, err.cause)
	}
	return err.message
}

func (err *storageError) ErrCode() string {
	return "STORAGE_UNAVAILABLE"
}

func (err *storageError) StatusCode() int {
	return http.StatusServiceUnavailable
}

func (err *storageError) Unwrap() error {
	return err.cause
}
