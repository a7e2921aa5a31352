package app

import (
	"prodflow/domain/core"
	"prodflow/domain/initiative"
	apperrors "prodflow/internal/errors"
)

// storeError classifies an error returned by the persistence collaborator.
// Missing rows become NOT_FOUND, uniqueness violations DUPLICATE_ESCALATION,
// and everything else EXTERNAL_SERVICE_ERROR with the cause kept intact.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case core.IsNotFoundError(err):
		return &apperrors.AppError{Code: apperrors.CodeNotFound, Message: op, Cause: err}
	case core.IsDuplicateChildError(err):
		return &apperrors.AppError{Code: apperrors.CodeDuplicateEscalation, Message: op, Cause: err}
	case apperrors.IsAppError(err):
		return apperrors.Wrap(err, op)
	}
	return apperrors.Wrap(apperrors.ExternalServiceError("initiative store", err), op)
}

// ruleError turns a lifecycle violation into a VALIDATION_ERROR
func ruleError(op string, err error) error {
	if err == nil {
		return nil
	}
	if v, ok := initiative.AsViolation(err); ok {
		return &apperrors.AppError{Code: apperrors.CodeValidationError, Message: op, Cause: v}
	}
	return apperrors.Wrap(err, op)
}

func ruleName(err error) string {
	if v, ok := initiative.AsViolation(err); ok {
		return string(v.Rule)
	}
	return "unknown"
}
