package userinfra

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/lib/pq"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqNotNullViolation    = "23502"
	pqCheckViolation      = "23514"
	pqInvalidDatetime     = "22007"
	pqDatetimeOverflow    = "22008"
	pqStringTooLong       = "22001"
	pqInvalidTextRepr     = "22P02"
)

const minLengthSuffix = "_min_length"

var detailKeyPattern = regexp.MustCompile(`Key \(([^)]+)\)=`)

// classify turns a driver error into an *errx.StoreFailure.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sf *errx.StoreFailure
	if errors.As(err, &sf) {
		return sf
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &errx.StoreFailure{Code: errx.StoreNotFound, Err: err}
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return &errx.StoreFailure{Code: "driver", Err: err}
	}

	fields := fieldsOf(pqErr)
	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return &errx.StoreFailure{Code: errx.StoreUnique, Fields: fields, Err: err}
	case pqForeignKeyViolation:
		return &errx.StoreFailure{Code: errx.StoreForeignKey, Fields: fields, Err: err}
	case pqCheckViolation:
		if strings.HasSuffix(pqErr.Constraint, minLengthSuffix) {
			return &errx.StoreFailure{Code: errx.StoreTooShort, Fields: fields, Err: err}
		}
		return &errx.StoreFailure{Code: errx.StoreInvalidValue, Fields: fields, Err: err}
	case pqNotNullViolation, pqInvalidDatetime, pqDatetimeOverflow:
		return &errx.StoreFailure{Code: errx.StoreInvalidValue, Fields: fields, Err: err}
	case pqStringTooLong:
		return &errx.StoreFailure{Code: errx.StoreTooLong, Fields: fields, Err: err}
	case pqInvalidTextRepr:
		return &errx.StoreFailure{Code: errx.StoreInvalidType, Fields: fields, Err: err}
	default:
		return &errx.StoreFailure{Code: errx.StoreCode("sqlstate_" + string(pqErr.Code)), Fields: fields, Err: err}
	}
}

// fieldsOf extracts the offending column names from a pq error.
func fieldsOf(e *pq.Error) []string {
	if e.Column != "" {
		return []string{e.Column}
	}

	if m := detailKeyPattern.FindStringSubmatch(e.Detail); len(m) == 2 {
		var out []string
		for _, col := range strings.Split(m[1], ",") {
			out = append(out, strings.TrimSpace(col))
		}
		return out
	}

	if e.Constraint != "" {
		name := e.Constraint
		if e.Table != "" {
			name = strings.TrimPrefix(name, e.Table+"_")
		}
		for _, suffix := range []string{minLengthSuffix, "_key", "_fkey", "_check"} {
			if strings.HasSuffix(name, suffix) {
				return []string{strings.TrimSuffix(name, suffix)}
			}
		}
	}
	return nil
}
