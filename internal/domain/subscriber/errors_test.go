package subscriber

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := ServiceFailure("Failed to get subscribers!")

	if !errors.Is(err, ErrServiceFailure) {
		t.Fatalf("expected service failure to match sentinel")
	}
	if errors.Is(err, ErrInvalidID) {
		t.Fatalf("service failure must not match invalid id")
	}
	if err.Error() != "Failed to get subscribers!" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestRepositoryFailureKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := fmt.Errorf("list: %w", RepositoryFailure("list", cause))

	if KindOf(err) != KindRepositoryFailure {
		t.Fatalf("expected repository_failure, got %q", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if k := KindOf(errors.New("boom")); k != "" {
		t.Fatalf("expected empty kind, got %q", k)
	}
}
