package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownGoal     = errors.New("goal is outside the supported vocabulary")
	ErrToolExecution   = errors.New("tool execution failed")
)
