package service

import "errors"

var (
	// ErrPermissionDenied - гость или посторонний пытается выполнить привилегированное действие
	ErrPermissionDenied = errors.New("permission denied")
	// ErrForbidden - правка вне окна редактирования или не автором
	ErrForbidden = errors.New("forbidden")
	// ErrValidation - пустой или некорректный ввод
	ErrValidation = errors.New("validation error")
	// ErrRemoteWrite - хранилище не приняло запись. Повторов нет.
	ErrRemoteWrite = errors.New("remote write failed")
)
