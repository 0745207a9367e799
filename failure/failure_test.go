package failure

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/casspark/test/testutil"
)

// loggedArgs returns the args of the first recorded entry with the message.
func loggedArgs(logger *testutil.TestLogger, msg string) []any {
	for _, e := range logger.Entries() {
		if e.Message == msg {
			return e.Args
		}
	}

	return nil
}

func TestCapture_Nil(t *testing.T) {
	require.Nil(t, Capture(nil))
}

func TestCapture_FlatError(t *testing.T) {
	s := Capture(errors.New("boom"))
	require.Equal(t, "boom", s.Message)
	require.Empty(t, s.Causes)
	require.False(t, s.Panicked)
	require.Equal(t, "boom", s.RootCause())
}

func TestCapture_WrappedChain(t *testing.T) {
	root := errors.New("connection refused")
	mid := fmt.Errorf("open session: %w", root)
	top := fmt.Errorf("before all: %w", mid)

	s := Capture(top)
	require.Equal(t, "before all: open session: connection refused", s.Message)
	require.Equal(t, []string{
		"open session: connection refused",
		"connection refused",
	}, s.Causes)
	require.Equal(t, "connection refused", s.RootCause())
}

func TestCapture_JoinedErrors(t *testing.T) {
	errA := errors.New("cluster a down")
	errB := errors.New("cluster b down")

	s := Capture(errors.Join(errA, errB))
	require.Contains(t, s.Causes, "cluster a down")
	require.Contains(t, s.Causes, "cluster b down")
}

func TestCapture_SummaryPassthrough(t *testing.T) {
	orig := &Summary{Message: "already flattened"}
	require.Same(t, orig, Capture(orig))
}

// cyclicError unwraps to itself; Capture must not spin on it.
type cyclicError struct{}

func (c *cyclicError) Error() string { return "cyclic" }
func (c *cyclicError) Unwrap() error { return c }

func TestCapture_CyclicUnwrap(t *testing.T) {
	s := Capture(&cyclicError{})
	require.Equal(t, "cyclic", s.Message)
	require.Len(t, s.Causes, maxCauseDepth)
}

func TestSummary_Error(t *testing.T) {
	s := &Summary{Message: "top", Causes: []string{"mid", "root"}}
	require.Equal(t, "top: caused by: mid: caused by: root", s.Error())

	flat := &Summary{Message: "only"}
	require.Equal(t, "only", flat.Error())
}

func TestSummary_JSONRoundTrip(t *testing.T) {
	s := Capture(fmt.Errorf("outer: %w", errors.New("inner")))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	decoded, err := UnmarshalSummary(data)
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestUnmarshalSummary_Invalid(t *testing.T) {
	_, err := UnmarshalSummary([]byte("{not json"))
	require.Error(t, err)
}

func TestGuard_Success(t *testing.T) {
	require.NoError(t, Guard(nil, "beforeAll", func() error { return nil }))
}

func TestGuard_ErrorReturn(t *testing.T) {
	logger := testutil.NewTestLogger()
	cause := errors.New("keyspace create failed")
	hookErr := fmt.Errorf("setup: %w", cause)

	err := Guard(logger, "beforeAll", func() error {
		return hookErr
	})

	require.Error(t, err)

	var s *Summary
	require.True(t, errors.As(err, &s))
	require.Equal(t, "beforeAll: setup: keyspace create failed", s.Message)
	require.Equal(t, "keyspace create failed", s.RootCause())
	require.False(t, s.Panicked)

	// The full original error is logged before substitution.
	require.True(t, logger.Contains("lifecycle hook failed"), "got:\n%s", logger)
	require.Contains(t, loggedArgs(logger, "lifecycle hook failed"), hookErr)
}

func TestGuard_Panic(t *testing.T) {
	logger := testutil.NewTestLogger()

	err := Guard(logger, "afterAll", func() error {
		panic("nil session")
	})

	require.Error(t, err)

	var s *Summary
	require.True(t, errors.As(err, &s))
	require.True(t, s.Panicked)
	require.Contains(t, s.Message, "afterAll panicked")
	require.Contains(t, s.Message, "nil session")

	// The panic value and its stack trace are logged before substitution.
	require.True(t, logger.Contains("lifecycle hook panicked"), "got:\n%s", logger)
	args := loggedArgs(logger, "lifecycle hook panicked")
	require.Contains(t, args, "nil session")
	require.Contains(t, args, "stack")
}

func TestGuard_ResultIsMarshalable(t *testing.T) {
	err := Guard(nil, "beforeAll", func() error {
		panic(struct{ weird chan int }{make(chan int)})
	})

	var s *Summary
	require.True(t, errors.As(err, &s))

	// The panic payload itself cannot be marshaled, its summary always can.
	_, jsonErr := json.Marshal(s)
	require.NoError(t, jsonErr)
}

func TestGuard_DoesNotMutateSharedSummary(t *testing.T) {
	shared := &Summary{Message: "shared"}

	err := Guard(nil, "hook", func() error { return shared })

	require.Equal(t, "shared", shared.Message)
	require.Equal(t, "hook: shared", err.Error())
}
