package netindexer

import (
	"errors"
	"fmt"
	"testing"
)

func TestEngineErrorTagFormat(t *testing.T) {
	withMsg := &EngineError{Code: ErrNetwork, Err: fmt.Errorf("connection refused")}
	if got, want := withMsg.Tag(), "(network - connection refused)"; got != want {
		t.Fatalf("Tag() = %q, want %q", got, want)
	}

	bare := &EngineError{Code: ErrWorkerFatal}
	if got, want := bare.Tag(), "(worker-fatal)"; got != want {
		t.Fatalf("Tag() = %q, want %q", got, want)
	}
}

func TestEngineErrorIsMatchesByCode(t *testing.T) {
	a := &EngineError{Code: ErrConfig, Op: "a", Err: fmt.Errorf("x")}
	b := &EngineError{Code: ErrConfig, Op: "b"}
	c := &EngineError{Code: ErrNetwork}

	if !errors.Is(a, b) {
		t.Fatalf("expected errors with the same Code to match via errors.Is")
	}
	if errors.Is(a, c) {
		t.Fatalf("expected errors with different Codes not to match")
	}
}

func TestEngineErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("dial tcp: timeout")
	e := &EngineError{Code: ErrNetwork, Err: inner}
	if got := errors.Unwrap(e); got != inner {
		t.Fatalf("Unwrap() = %v, want %v", got, inner)
	}
}

func TestEngineErrorPredicates(t *testing.T) {
	cases := []struct {
		code ErrorCode
		pred func(*EngineError) bool
	}{
		{ErrConfig, (*EngineError).IsConfig},
		{ErrNetwork, (*EngineError).IsNetwork},
		{ErrClientEncoding, (*EngineError).IsClientEncoding},
		{ErrWorkerFatal, (*EngineError).IsWorkerFatal},
		{ErrBadBatchRecord, (*EngineError).IsBadBatchRecord},
		{ErrOutputIO, (*EngineError).IsOutputIO},
	}
	for _, c := range cases {
		e := &EngineError{Code: c.code}
		if !c.pred(e) {
			t.Fatalf("predicate for %s returned false", c.code)
		}
	}
}

func TestErrorCodeStringUnknown(t *testing.T) {
	var bogus ErrorCode = 999
	if got, want := bogus.String(), "unknown"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
