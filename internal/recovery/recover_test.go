package recovery

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCall(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	v, err := Call(logger, "ok", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("Call = %d, %v; want 7, nil", v, err)
	}

	v, err = Call(logger, "Select", func() (int, error) { panic("boom") })
	if v != 0 {
		t.Errorf("expected zero value after panic, got %d", v)
	}
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("err = %v, want ErrPanic", err)
	}
	if !strings.Contains(err.Error(), "Select panicked: boom") {
		t.Errorf("unexpected message: %v", err)
	}
	if st, _ := status.FromError(err); st.Code() != codes.Internal {
		t.Errorf("status code = %v, want Internal", st.Code())
	}
	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Run(logger, "Close", func() { panic(errors.New("close failed")) })
	if !strings.Contains(buf.String(), "operation=Close") {
		t.Errorf("expected operation in log, got %q", buf.String())
	}
}
