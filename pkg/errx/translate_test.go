package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_PassesThroughApiErrors(t *testing.T) {
	orig := Forbidden("nope")
	wrapped := fmt.Errorf("handler: %w", orig)

	got := Translate(wrapped)

	assert.Same(t, orig, got)
}

func TestTranslate_StoreFailures(t *testing.T) {
	tests := []struct {
		name    string
		failure *StoreFailure
		code    Code
		status  int
		message string
	}{
		{"unique on email", &StoreFailure{Code: StoreUnique, Fields: []string{"email"}}, CodeDuplicateEntry, http.StatusBadRequest, "Duplicate entry for email"},
		{"foreign key", &StoreFailure{Code: StoreForeignKey, Fields: []string{"role_id"}}, CodeForeignKey, http.StatusBadRequest, "Invalid foreign key for role_id"},
		{"not found", &StoreFailure{Code: StoreNotFound}, CodeRecordNotFound, http.StatusNotFound, "Record not found"},
		{"too long", &StoreFailure{Code: StoreTooLong, Fields: []string{"name"}}, CodeValueTooLong, http.StatusBadRequest, "Value too long for name"},
		{"too short", &StoreFailure{Code: StoreTooShort, Fields: []string{"name"}}, CodeValueTooShort, http.StatusBadRequest, "Value too short for name"},
		{"invalid type", &StoreFailure{Code: StoreInvalidType, Fields: []string{"birth_date"}}, CodeInvalidDataType, http.StatusBadRequest, "Invalid data type for birth_date"},
		{"missing field", &StoreFailure{Code: StoreInvalidValue}, CodeInvalidValue, http.StatusBadRequest, "Invalid value for unknown field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.failure)

			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
			assert.Equal(t, tt.message, got.Message)
			assert.Equal(t, StatusFail, got.Status)
			assert.True(t, got.Operational)
		})
	}
}

func TestTranslate_UnknownStoreCode(t *testing.T) {
	got := Translate(&StoreFailure{Code: "deadlock"})

	assert.Equal(t, CodeDatabase, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.Equal(t, StatusError, got.Status)
	assert.False(t, got.Operational)
}

func TestTranslate_Validation(t *testing.T) {
	f := &ValidationFailure{Violations: []Violation{
		{Path: []string{"body", "firstName"}, Message: "must be at most 50 characters", Tag: "max"},
		{Path: []string{"body", "avatarUrl"}, Message: "must be a valid URL", Tag: "url"},
	}}

	got := Translate(f)

	assert.Equal(t, CodeValidation, got.Code)
	assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
	assert.Equal(t, "must be at most 50 characters at body.firstName", got.Message)
	assert.Len(t, got.Details["errors"], 2)

	empty := Translate(&ValidationFailure{})
	assert.Equal(t, "Validation error", empty.Message)
}

func TestTranslate_Verification(t *testing.T) {
	got := Translate(&VerificationFailure{Message: "token is expired"})
	assert.Equal(t, CodeUnauthorized, got.Code)
	assert.Equal(t, http.StatusUnauthorized, got.HTTPStatus)
	assert.Equal(t, StatusFail, got.Status)
	assert.Equal(t, "token is expired", got.Message)

	def := Translate(&VerificationFailure{})
	assert.Equal(t, "Unauthorized access.", def.Message)
}

func TestTranslate_Provider(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Translate(&ProviderFailure{Kind: ProviderNotFound}).HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, Translate(&ProviderFailure{Kind: ProviderUnauthorized}).HTTPStatus)

	up := Translate(&ProviderFailure{Kind: ProviderUnavailable, Err: errors.New("dial tcp: timeout")})
	assert.Equal(t, http.StatusBadGateway, up.HTTPStatus)
	assert.Equal(t, CodeUpstream, up.Code)
	assert.False(t, up.Operational)
}

func TestTranslate_Unknown(t *testing.T) {
	cause := errors.New("boom")
	got := Translate(cause)

	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, CodeDatabase, got.Code)
	assert.Equal(t, "Something went wrong.", got.Message)
	assert.False(t, got.Operational)
	assert.ErrorIs(t, got, cause)
}

func TestTranslate_Nil(t *testing.T) {
	assert.Nil(t, Translate(nil))
}
