// Package businessflow contains the core business logic and use cases for pricing workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Validation errors
	ErrPurchasePriceInvalid  = errors.New("purchase price must be positive")
	ErrPurchaseDateInvalid   = errors.New("purchase date is not a valid calendar date")
	ErrConditionGradeInvalid = errors.New("condition grade must be one of A, B, C, D")
	ErrDateInvalid           = errors.New("date is not a valid calendar date")
	ErrVehicleIDRequired     = errors.New("vehicle id is required")
	ErrPriceNegative         = errors.New("price must not be negative")
	ErrChangeReasonInvalid   = errors.New("unknown change reason or price source")

	// Range errors
	ErrDateRangeInvalid  = errors.New("end date cannot be before start date")
	ErrDateRangeTooLarge = errors.New("date range exceeds the maximum calendar span")
	ErrNoDatesRequested  = errors.New("at least one date is required")

	// Adjustment errors
	ErrAdjustTypeInvalid     = errors.New("adjust type must be add_factor or override_price")
	ErrFactorConfigRequired  = errors.New("factor type and value are required for add_factor")
	ErrOverridePriceRequired = errors.New("override price is required for override_price")
	ErrAdjustReasonRequired  = errors.New("adjustment reason is required")

	// Lookup errors
	ErrModelNotFound   = errors.New("model not found")
	ErrStoreNotFound   = errors.New("store not found")
	ErrVehicleNotFound = errors.New("vehicle not found")

	// Config errors
	ErrConfigNotFound        = errors.New("calculation config not found")
	ErrConfigNotEditable     = errors.New("calculation config is not editable")
	ErrConfigValueOutOfRange = errors.New("config value is outside the documented valid range")
	ErrStrategyUnknown       = errors.New("unknown pricing strategy")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsPurchasePriceInvalid(err error) bool {
	return errors.Is(err, ErrPurchasePriceInvalid)
}

func IsPurchaseDateInvalid(err error) bool {
	return errors.Is(err, ErrPurchaseDateInvalid)
}

func IsConditionGradeInvalid(err error) bool {
	return errors.Is(err, ErrConditionGradeInvalid)
}

func IsDateInvalid(err error) bool {
	return errors.Is(err, ErrDateInvalid)
}

func IsDateRangeInvalid(err error) bool {
	return errors.Is(err, ErrDateRangeInvalid)
}

func IsDateRangeTooLarge(err error) bool {
	return errors.Is(err, ErrDateRangeTooLarge)
}

func IsNoDatesRequested(err error) bool {
	return errors.Is(err, ErrNoDatesRequested)
}

func IsPriceNegative(err error) bool {
	return errors.Is(err, ErrPriceNegative)
}

func IsChangeReasonInvalid(err error) bool {
	return errors.Is(err, ErrChangeReasonInvalid)
}

func IsAdjustTypeInvalid(err error) bool {
	return errors.Is(err, ErrAdjustTypeInvalid)
}

func IsFactorConfigRequired(err error) bool {
	return errors.Is(err, ErrFactorConfigRequired)
}

func IsOverridePriceRequired(err error) bool {
	return errors.Is(err, ErrOverridePriceRequired)
}

func IsAdjustReasonRequired(err error) bool {
	return errors.Is(err, ErrAdjustReasonRequired)
}

func IsVehicleIDRequired(err error) bool {
	return errors.Is(err, ErrVehicleIDRequired)
}

func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}

func IsStoreNotFound(err error) bool {
	return errors.Is(err, ErrStoreNotFound)
}

func IsVehicleNotFound(err error) bool {
	return errors.Is(err, ErrVehicleNotFound)
}

func IsConfigNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}

func IsConfigNotEditable(err error) bool {
	return errors.Is(err, ErrConfigNotEditable)
}

func IsConfigValueOutOfRange(err error) bool {
	return errors.Is(err, ErrConfigValueOutOfRange)
}

func IsStrategyUnknown(err error) bool {
	return errors.Is(err, ErrStrategyUnknown)
}
