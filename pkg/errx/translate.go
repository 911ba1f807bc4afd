package errx

import (
	"errors"
	"fmt"
)

type storeEntry struct {
	def      *Definition
	template string
}

var storeTable = map[StoreCode]storeEntry{
	StoreNotFound:     {DefRecordNotFound, ""},
	StoreUnique:       {DefDuplicateEntry, "Duplicate entry for %s"},
	StoreForeignKey:   {DefForeignKey, "Invalid foreign key for %s"},
	StoreInvalidValue: {DefInvalidValue, "Invalid value for %s"},
	StoreTooLong:      {DefValueTooLong, "Value too long for %s"},
	StoreTooShort:     {DefValueTooShort, "Value too short for %s"},
	StoreInvalidType:  {DefInvalidDataType, "Invalid data type for %s"},
}

// Translate maps any error to the single client-facing Error.
// It never fails; unknown inputs become a non-operational 500.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var f Failure
	if errors.As(err, &f) {
		return translateFailure(f)
	}

	out := newError(DefUnexpected, "", 1)
	out.Err = err
	return out
}

func translateFailure(f Failure) *Error {
	switch f := f.(type) {
	case *StoreFailure:
		return translateStore(f)
	case *ValidationFailure:
		return translateValidation(f)
	case *VerificationFailure:
		out := newError(DefVerification, f.Message, 2)
		out.Err = f
		return out
	case *ProviderFailure:
		return translateProvider(f)
	default:
		out := newError(DefUnexpected, "", 2)
		out.Err = f
		return out
	}
}

func translateStore(f *StoreFailure) *Error {
	entry, ok := storeTable[f.Code]
	if !ok {
		out := newError(DefDatabase, "", 3)
		out.Err = f
		return out
	}

	msg := ""
	if entry.template != "" {
		msg = fmt.Sprintf(entry.template, f.Field())
	}
	out := newError(entry.def, msg, 3)
	out.Err = f
	return out
}

func translateValidation(f *ValidationFailure) *Error {
	msg := ""
	if len(f.Violations) > 0 {
		first := f.Violations[0]
		msg = fmt.Sprintf("%s at %s", first.Message, first.DottedPath())
	}
	out := newError(DefValidation, msg, 3)
	out.Err = f
	if len(f.Violations) > 0 {
		out.WithDetail("errors", f.Violations)
	}
	return out
}

func translateProvider(f *ProviderFailure) *Error {
	var out *Error
	switch f.Kind {
	case ProviderNotFound:
		out = newError(DefRecordNotFound, "User not found", 3)
	case ProviderUnauthorized:
		out = newError(DefUnauthorized, "", 3)
	default:
		out = newError(DefUpstream, "", 3)
	}
	out.Err = f
	return out
}
