package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized},
		{code: CodeForbidden, status: http.StatusForbidden},
		{code: CodeNotFound, status: http.StatusNotFound},
		{code: CodeConflict, status: http.StatusConflict, retryable: true, detailsOK: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, detailsOK: true},
		{code: CodeAlreadyAssigned, status: http.StatusConflict, detailsOK: true},
		{code: CodeUploadFailed, status: http.StatusBadGateway, retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s has no public message", tt.code)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing amount")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}
	base.WithDetails(map[string]any{"field": "amount"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "load booking")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "DEPENDENCY_ERROR: load booking: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsAndIsCodeFollowChain(t *testing.T) {
	err := fmt.Errorf("select settler: %w", New(CodeAlreadyAssigned, "settler already chosen"))
	if got := As(err); got == nil || got.Code() != CodeAlreadyAssigned {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeAlreadyAssigned) {
		t.Fatalf("expected IsCode to match")
	}
	if IsCode(err, CodeConflict) {
		t.Fatalf("unexpected conflict match")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCarriesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "booking_activities_booking_seq_key",
		TableName:      "booking_activities",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("append activity: %w", pgErr), "booking was modified")

	d := Dump(err)
	if d.Code != CodeConflict || !d.Retryable {
		t.Fatalf("unexpected code fields %+v", d)
	}
	if d.PG == nil || d.PG.Driver != "pgx" || d.PG.Constraint != "booking_activities_booking_seq_key" || d.PG.Table != "booking_activities" {
		t.Fatalf("unexpected pg fields %+v", d.PG)
	}
	if d.PG.Class() != "23" || d.Fields()["pg_class"] != "23" {
		t.Fatalf("expected integrity class, got %q", d.PG.Class())
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected wrapped chain, got %v", d.Chain)
	}
}

func TestDumpReadsLibPQErrors(t *testing.T) {
	d := Dump(fmt.Errorf("goose up: %w", &pq.Error{Code: "42P07", Table: "bookings", Message: "relation already exists"}))
	if d.PG == nil || d.PG.Driver != "pq" || d.PG.SQLState != "42P07" || d.PG.Table != "bookings" {
		t.Fatalf("unexpected pq fields %+v", d.PG)
	}
	if d.Code != "" {
		t.Fatalf("untyped errors should not carry a code, got %s", d.Code)
	}
	if _, ok := Dump(stdErrors.New("plain")).Fields()["pg_code"]; ok {
		t.Fatalf("non-database errors should not log pg fields")
	}
}

func TestCodeOfAndRetryable(t *testing.T) {
	if got := CodeOf(stdErrors.New("plain")); got != CodeInternal {
		t.Fatalf("untyped errors should map to internal, got %s", got)
	}
	upload := fmt.Errorf("evidence: %w", Newf(CodeUploadFailed, "put %s", "a.jpg"))
	if got := CodeOf(upload); got != CodeUploadFailed {
		t.Fatalf("expected upload code, got %s", got)
	}
	if !IsRetryable(upload) {
		t.Fatalf("upload failures should be retryable")
	}
	if IsRetryable(New(CodeStateConflict, "not allowed")) {
		t.Fatalf("state conflicts are not retryable")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil is not retryable")
	}
}
