package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGateway = errors.New("gateway unavailable")

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})
}

func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker(time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(5), cb.Counts().TotalSuccesses)
}

func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := newTestBreaker(time.Second)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errGateway }), errGateway)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called, "熔断时不应执行请求")
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	t.Run("试探成功恢复CLOSED", func(t *testing.T) {
		cb := newTestBreaker(50 * time.Millisecond)
		for i := 0; i < 3; i++ {
			_ = cb.Execute(func() error { return errGateway })
		}

		time.Sleep(80 * time.Millisecond)
		assert.Equal(t, StateHalfOpen, cb.State())

		require.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("试探失败回到OPEN", func(t *testing.T) {
		cb := newTestBreaker(50 * time.Millisecond)
		for i := 0; i < 3; i++ {
			_ = cb.Execute(func() error { return errGateway })
		}

		time.Sleep(80 * time.Millisecond)
		_ = cb.Execute(func() error { return errGateway })
		assert.Equal(t, StateOpen, cb.State())
	})
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	errBadRequest := errors.New("invalid amount")
	cb := NewCircuitBreaker("test", Config{
		ReadyToTrip:  func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errBadRequest) },
	})

	err := cb.Execute(func() error { return errBadRequest })
	assert.ErrorIs(t, err, errBadRequest)
	assert.Equal(t, StateClosed, cb.State(), "调用方错误不应触发熔断")

	_ = cb.Execute(func() error { return errGateway })
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb := newTestBreaker(50 * time.Millisecond)

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errGateway })
	}
	time.Sleep(80 * time.Millisecond)
	_ = cb.Execute(func() error { return nil })

	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, transitions)
}

func TestCounts_FailureRate(t *testing.T) {
	c := Counts{Requests: 4, TotalFailures: 1}
	assert.InDelta(t, 0.25, c.FailureRate(), 1e-9)

	c.Reset()
	assert.Zero(t, c.FailureRate())
}
