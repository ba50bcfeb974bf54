// internal/resource/resource_test.go
package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResource_Lifecycle(t *testing.T) {
	r := New[[]string]()

	value, hasData := r.Value()
	assert.Nil(t, value)
	assert.False(t, hasData)
	assert.False(t, r.Loading())
	assert.NoError(t, r.Err())

	r.Begin()
	assert.True(t, r.Loading())

	r.Resolve([]string{"a", "b"})
	assert.False(t, r.Loading())
	value, hasData = r.Value()
	assert.Equal(t, []string{"a", "b"}, value)
	assert.True(t, hasData)
	assert.NoError(t, r.Err())
}

// A failed refresh keeps the previous value so the caller can render stale
// data next to the error.
func TestResource_FailKeepsPreviousValue(t *testing.T) {
	r := New[int]()
	r.Resolve(42)

	fetchErr := errors.New("boom")
	r.Begin()
	r.Fail(fetchErr)

	value, hasData := r.Value()
	assert.Equal(t, 42, value)
	assert.True(t, hasData)
	assert.False(t, r.Loading())
	assert.Equal(t, fetchErr, r.Err())
}

func TestResource_ResolveClearsError(t *testing.T) {
	r := New[int]()
	r.Fail(errors.New("boom"))
	r.Resolve(7)

	assert.NoError(t, r.Err())
	value, _ := r.Value()
	assert.Equal(t, 7, value)
}

func TestResource_Reset(t *testing.T) {
	r := New[int]()
	r.Resolve(42)
	r.Reset()

	value, hasData := r.Value()
	assert.Equal(t, 0, value)
	assert.False(t, hasData)
}

func TestMutation_Lifecycle(t *testing.T) {
	m := NewMutation()
	assert.Equal(t, OutcomeIdle, m.Outcome())
	assert.False(t, m.Loading())

	m.Begin()
	assert.True(t, m.Loading())
	assert.Equal(t, OutcomeIdle, m.Outcome())

	m.Resolve()
	assert.False(t, m.Loading())
	assert.Equal(t, OutcomeSuccess, m.Outcome())
	assert.NoError(t, m.Err())
}

func TestMutation_FailRecordsError(t *testing.T) {
	m := NewMutation()
	mutErr := errors.New("rejected")

	m.Begin()
	m.Fail(mutErr)

	assert.Equal(t, OutcomeError, m.Outcome())
	assert.Equal(t, mutErr, m.Err())
}

// A retry starts clean: Begin wipes the previous outcome and error.
func TestMutation_BeginClearsPreviousOutcome(t *testing.T) {
	m := NewMutation()
	m.Begin()
	m.Fail(errors.New("first try"))

	m.Begin()
	assert.Equal(t, OutcomeIdle, m.Outcome())
	assert.NoError(t, m.Err())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "idle", OutcomeIdle.String())
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "error", OutcomeError.String())
}
