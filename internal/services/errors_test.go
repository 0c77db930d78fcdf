package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestEngineErrorIsMatchesOnKind(t *testing.T) {
	err := newError(KindAlreadyLocked, "slot busy")
	if !errors.Is(err, &EngineError{Kind: KindAlreadyLocked}) {
		t.Fatalf("expected kind match")
	}
	if errors.Is(err, &EngineError{Kind: KindNotFound}) {
		t.Fatalf("unexpected kind match")
	}
}

func TestStorageErrWrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := storageErr(cause)
	if KindOf(err) != KindStorageUnavailable {
		t.Fatalf("expected StorageUnavailable, got %s", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must stay reachable through Unwrap")
	}
}

func TestStorageErrPreservesEngineErrors(t *testing.T) {
	inner := newError(KindNotFound, "document gone")
	if got := storageErr(inner); KindOf(got) != KindNotFound {
		t.Fatalf("engine errors must not be re-wrapped, got %s", KindOf(got))
	}
	if storageErr(nil) != nil {
		t.Fatalf("nil must pass through")
	}
}

func TestKindOfUnknownErrorReportsStorage(t *testing.T) {
	if got := KindOf(fmt.Errorf("boom")); got != KindStorageUnavailable {
		t.Fatalf("expected StorageUnavailable for unknown error, got %s", got)
	}
}
