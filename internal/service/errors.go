// errors.go: ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidRange: запрошенный диапазон выходит за размер файла.
	ErrInvalidRange = errors.New("запрошенный диапазон недостижим")
)

// RangeError: недостижимый диапазон; Size нужен для Content-Range: bytes */Size.
type RangeError struct {
	Size int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: размер файла %d байт", ErrInvalidRange, e.Size)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidRange).
func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// validationError оборачивает ErrValidation описанием проблемы.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
