package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinelas para errors.Is. Os tipos abaixo carregam o detalhe.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("entity not found")
	ErrConflict   = errors.New("state conflict")
	ErrTransport  = errors.New("store unreachable")
)

// FieldError aponta um campo inválido ou ausente.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError: entrada malformada. Nenhum estado foi alterado.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Add registra um campo inválido.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// OrNil devolve nil quando nenhum campo foi registrado.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NotFoundError: entidade ausente ou em estado errado para a operação.
type NotFoundError struct {
	Entity string
	ID     string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s not found: %s", e.Entity, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError: outra operação mudou o estado antes. O chamador deve recarregar e pode tentar de novo.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// TransportError: banco, cache ou broker fora do ar (ou timeout). Sempre retentável.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Retryable indica que o chamador pode tentar novamente com backoff.
func (e *TransportError) Retryable() bool { return true }
