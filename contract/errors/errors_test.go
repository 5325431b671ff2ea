package errors_test

import (
	"errors"
	"fmt"
	"testing"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
)

func TestCodeAndVars(t *testing.T) {
	e := berr.Code(berr.ErrCodePostFailed)
	if e.Error() != berr.ErrCodePostFailed {
		t.Fatalf("unexpected error string: %s", e.Error())
	}

	// exported variables must carry their codes
	tests := []struct {
		err  error
		code string
	}{
		{berr.ErrInvalidArgument, berr.ErrCodeInvalidArgument},
		{berr.ErrNilHandler, berr.ErrCodeNilHandler},
		{berr.ErrBusClosed, berr.ErrCodeBusClosed},
		{berr.ErrSchedulerStopped, berr.ErrCodeSchedulerStopped},
		{berr.ErrPostFailed, berr.ErrCodePostFailed},
		{berr.ErrSerializationFailed, berr.ErrCodeSerializationFailed},
		{berr.ErrSinkNotConfigured, berr.ErrCodeSinkNotConfigured},
		{berr.ErrPromisePanicked, berr.ErrCodePromisePanicked},
	}

	for _, tc := range tests {
		if !errors.Is(tc.err, berr.Code(tc.code)) {
			t.Fatalf("expected %s to be %s", tc.err, tc.code)
		}
	}
}

func TestCode_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("set event scrubber int: %w", berr.ErrInvalidArgument)
	if !errors.Is(wrapped, berr.ErrInvalidArgument) {
		t.Fatalf("wrapped error lost its code: %v", wrapped)
	}

	joined := errors.Join(berr.ErrPostFailed, errors.New("broker down"))
	if !errors.Is(joined, berr.ErrPostFailed) {
		t.Fatalf("joined error lost its code: %v", joined)
	}
}
