package reactive

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpression(t *testing.T) {
	t.Run("re-evaluates when a dependency changes", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 1)

		log := []string{}
		e := NewComputed(rc, func() int {
			log = append(log, "eval")
			return count.Get() * 2
		}, func(v int) {
			log = append(log, fmt.Sprintf("value %d", v))
		})
		defer e.Dispose()

		count.Set(10)

		assert.Equal(t, []string{"eval", "value 2", "eval", "value 20"}, log)
		assert.Equal(t, 20, e.Value())
		assert.True(t, e.HasValue())
	})

	t.Run("re-evaluates once per change for repeated reads", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 1)

		runs := 0
		e := NewComputed(rc, func() int {
			runs++
			return count.Get() + count.Get()
		}, nil)
		defer e.Dispose()

		count.Set(2)

		assert.Equal(t, 2, runs)
		assert.Equal(t, 1, e.Dependencies())
		assert.Equal(t, 4, e.Value())
	})

	t.Run("rebuilds dependencies on every run", func(t *testing.T) {
		rc := NewContext()
		flag := NewValue(rc, true)
		a := NewValue(rc, "a")
		b := NewValue(rc, "b")

		runs := 0
		e := NewComputed(rc, func() string {
			runs++
			if flag.Get() {
				return a.Get()
			}
			return b.Get()
		}, nil)
		defer e.Dispose()

		assert.False(t, b.HasListeners())

		flag.Set(false)
		assert.Equal(t, 2, runs)
		assert.Equal(t, "b", e.Value())
		assert.False(t, a.HasListeners())

		a.Set("a2")
		assert.Equal(t, 2, runs)

		b.Set("b2")
		assert.Equal(t, 3, runs)
		assert.Equal(t, "b2", e.Value())
		assert.Equal(t, 2, e.Dependencies())
	})

	t.Run("suppresses structurally equal results", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 1)

		notified := 0
		e := NewComputed(rc, func() []int {
			return []int{count.Get() % 2}
		}, func([]int) { notified++ })
		defer e.Dispose()

		listened := 0
		e.AddPropertyListener("value", func(PropertyChangeEvent) { listened++ })

		count.Set(3)
		assert.Equal(t, 1, notified)
		assert.Equal(t, 0, listened)

		count.Set(4)
		assert.Equal(t, 2, notified)
		assert.Equal(t, 1, listened)
		assert.Equal(t, []int{0}, e.Value())
	})

	t.Run("captures errors and clears them on success", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 1)

		log := []string{}
		e := NewExpression(rc, func() (int, error) {
			n := count.Get()
			if n < 0 {
				return 0, errors.New("negative")
			}
			return n, nil
		}, func(v int) {
			log = append(log, fmt.Sprintf("value %d", v))
		}, func(err error) {
			log = append(log, fmt.Sprintf("error %v", err))
		})
		defer e.Dispose()

		count.Set(-1)
		assert.False(t, e.HasValue())
		assert.EqualError(t, e.Error(), "negative")

		count.Set(-2)

		count.Set(5)
		assert.NoError(t, e.Error())

		assert.Equal(t, []string{"value 1", "error negative", "error <nil>", "value 5"}, log)
	})

	t.Run("announces error changes as a property", func(t *testing.T) {
		rc := NewContext()
		fail := NewValue(rc, false)

		e := NewExpression(rc, func() (string, error) {
			if fail.Get() {
				return "", errors.New("failed")
			}
			return "ok", nil
		}, nil, nil)
		defer e.Dispose()

		log := []string{}
		e.AddEventListener(func(ev PropertyChangeEvent) {
			log = append(log, fmt.Sprintf("%s=%v", ev.PropertyName, ev.PropertyValue))
		})

		fail.Set(true)
		fail.Set(false)

		assert.Equal(t, []string{"value=", "error=failed", "error=<nil>", "value=ok"}, log)
	})

	t.Run("re-runs a dependent once when value and error change together", func(t *testing.T) {
		rc := NewContext()
		fail := NewValue(rc, false)

		e := NewExpression(rc, func() (int, error) {
			if fail.Get() {
				return 0, errors.New("failed")
			}
			return 1, nil
		}, nil, nil)
		defer e.Dispose()

		runs := 0
		status := NewComputed(rc, func() string {
			runs++
			return fmt.Sprint(e.Value(), e.Error())
		}, nil)
		defer status.Dispose()

		fail.Set(true)
		assert.Equal(t, 2, runs)
		assert.Equal(t, "0 failed", status.Value())

		fail.Set(false)
		assert.Equal(t, 3, runs)
		assert.Equal(t, "1 <nil>", status.Value())
	})

	t.Run("captures panics", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 1)

		e := NewComputed(rc, func() int {
			n := count.Get()
			if n == 0 {
				panic("division by zero")
			}
			return 10 / n
		}, nil)
		defer e.Dispose()

		count.Set(0)

		var perr *PanicError
		require.ErrorAs(t, e.Error(), &perr)
		assert.Equal(t, "division by zero", perr.Value)

		count.Set(2)
		assert.NoError(t, e.Error())
		assert.Equal(t, 5, e.Value())
	})

	t.Run("composes with other expressions", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 1)

		double := NewComputed(rc, func() int { return count.Get() * 2 }, nil)
		defer double.Dispose()

		runs := 0
		quad := NewComputed(rc, func() int {
			runs++
			return double.Value() * 2
		}, nil)
		defer quad.Dispose()

		count.Set(5)

		assert.Equal(t, 20, quad.Value())
		assert.Equal(t, 2, runs)
	})

	t.Run("reports zero and stops on dispose", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 3)

		log := []string{}
		runs := 0
		e := NewComputed(rc, func() int {
			runs++
			return count.Get()
		}, func(v int) {
			log = append(log, fmt.Sprintf("value %d", v))
		})

		e.Dispose()
		e.Dispose()

		count.Set(7)

		assert.Equal(t, []string{"value 3", "value 0"}, log)
		assert.Equal(t, 1, runs)
		assert.False(t, count.HasListeners())
		assert.False(t, e.HasValue())
		assert.Equal(t, 0, e.Dependencies())
	})

	t.Run("disposes an errored expression silently", func(t *testing.T) {
		rc := NewContext()

		log := []string{}
		e := NewExpression(rc, func() (int, error) {
			return 0, errors.New("broken")
		}, func(v int) {
			log = append(log, fmt.Sprintf("value %d", v))
		}, func(err error) {
			log = append(log, fmt.Sprintf("error %v", err))
		})

		e.Dispose()

		assert.Equal(t, []string{"error broken"}, log)
		assert.NoError(t, e.Error())
	})

	t.Run("stops re-evaluating an expression that invalidates itself", func(t *testing.T) {
		var buf bytes.Buffer
		rc := NewContext(WithLogger(zerolog.New(&buf)), WithConfig(Config{MaxReevaluations: 5}))
		count := NewValue(rc, 0)

		runs := 0
		e := NewComputed(rc, func() int {
			runs++
			n := count.Get()
			count.Set(n + 1)
			return n
		}, nil)
		e.Dispose()

		assert.Equal(t, 5, runs)
		assert.Equal(t, 5, count.Peek())
		assert.Contains(t, buf.String(), "expression keeps invalidating itself")
	})

	t.Run("does not depend on its own properties", func(t *testing.T) {
		rc := NewContext()
		count := NewValue(rc, 1)

		var e *Expression[int]
		e = NewComputed(rc, func() int {
			if e != nil {
				e.Value()
			}
			return count.Get()
		}, nil)
		defer e.Dispose()

		count.Set(2)

		assert.Equal(t, 1, e.Dependencies())
	})
}
