package errors

import (
	"fmt"
)

// ErrStorageUnavailable - хранилище конфигураций недоступно.
// Ошибка доходит до вызывающего без внутренних повторов.
type ErrStorageUnavailable struct {
	Cause error
}

func (e *ErrStorageUnavailable) Error() string {
	return fmt.Sprintf("хранилище конфигураций недоступно: %v", e.Cause)
}

func (e *ErrStorageUnavailable) Unwrap() error {
	return e.Cause
}

func (e *ErrStorageUnavailable) Is(target error) bool {
	_, ok := target.(*ErrStorageUnavailable)
	return ok
}

// ErrDeliveryFailed - не удалось доставить личное сообщение получателю.
type ErrDeliveryFailed struct {
	UserID string
	Cause  error
}

func (e *ErrDeliveryFailed) Error() string {
	return fmt.Sprintf("не удалось доставить уведомление пользователю %s: %v", e.UserID, e.Cause)
}

func (e *ErrDeliveryFailed) Unwrap() error {
	return e.Cause
}

func (e *ErrDeliveryFailed) Is(target error) bool {
	_, ok := target.(*ErrDeliveryFailed)
	return ok
}

// ErrTooManyMentions - сообщение с массовым упоминанием отброшено.
type ErrTooManyMentions struct {
	Count int
}

func (e *ErrTooManyMentions) Error() string {
	return fmt.Sprintf("сообщение содержит слишком много упоминаний: %d", e.Count)
}

func (e *ErrTooManyMentions) Is(target error) bool {
	_, ok := target.(*ErrTooManyMentions)
	return ok
}

// ErrPresenceUnavailable - не удалось получить статус пользователя у шлюза.
type ErrPresenceUnavailable struct {
	UserID string
	Cause  error
}

func (e *ErrPresenceUnavailable) Error() string {
	return fmt.Sprintf("не удалось получить статус пользователя %s: %v", e.UserID, e.Cause)
}

func (e *ErrPresenceUnavailable) Unwrap() error {
	return e.Cause
}

func (e *ErrPresenceUnavailable) Is(target error) bool {
	_, ok := target.(*ErrPresenceUnavailable)
	return ok
}

// ErrPermissionDenied - у инициатора нет права управлять сервером.
type ErrPermissionDenied struct {
	UserID   string
	ServerID string
}

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf("у пользователя %s нет права управления сервером %s", e.UserID, e.ServerID)
}

func (e *ErrPermissionDenied) Is(target error) bool {
	_, ok := target.(*ErrPermissionDenied)
	return ok
}

type ErrInvalidValue struct {
	FieldName string
	Value     string
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("некорректное значение '%s' для поля '%s'", e.Value, e.FieldName)
}

func (e *ErrInvalidValue) Is(target error) bool {
	_, ok := target.(*ErrInvalidValue)
	return ok
}

type ErrMissingRequiredField struct {
	FieldName string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("отсутствует обязательное поле: %s", e.FieldName)
}

func (e *ErrMissingRequiredField) Is(target error) bool {
	_, ok := target.(*ErrMissingRequiredField)
	return ok
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
}

type ErrUnknownNotificationMode struct {
	Mode string
}

func (e *ErrUnknownNotificationMode) Error() string {
	return fmt.Sprintf("неизвестный режим уведомлений: %s", e.Mode)
}

func (e *ErrUnknownNotificationMode) Is(target error) bool {
	_, ok := target.(*ErrUnknownNotificationMode)
	return ok
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrInternalServer struct {
	Message string
}

func (e *ErrInternalServer) Error() string {
	return "внутренняя ошибка сервера: " + e.Message
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
