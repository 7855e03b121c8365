package plan

import "errors"

var (
	ErrFailedToLoadPlans        = errors.New("failed to load plan catalog")
	ErrFailedToParsePlans       = errors.New("failed to parse plan catalog")
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
)
