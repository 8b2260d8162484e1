package hours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func TestParse(t *testing.T) {
	t.Run("Always open", func(t *testing.T) {
		expr, err := Parse("24/7")
		require.NoError(t, err)
		assert.True(t, expr.OpenAt(at("2024-01-06T03:00:00Z")))
	})

	t.Run("Empty expression is an error", func(t *testing.T) {
		_, err := Parse("")
		assert.Error(t, err)
	})

	t.Run("Unknown day is an error", func(t *testing.T) {
		_, err := Parse("Xx 06:00-22:00")
		assert.Error(t, err)
	})

	t.Run("Bad clock is an error", func(t *testing.T) {
		_, err := Parse("Mo 6am-10pm")
		assert.Error(t, err)
	})

	t.Run("Missing time spans is an error", func(t *testing.T) {
		_, err := Parse("Mo-Fr")
		assert.Error(t, err)
	})
}

func TestOpenAt(t *testing.T) {
	t.Run("Weekday business hours", func(t *testing.T) {
		expr, err := Parse("Mo-Fr 06:00-22:00")
		require.NoError(t, err)

		// 2024-01-08 is a Monday, 2024-01-06 a Saturday
		assert.True(t, expr.OpenAt(at("2024-01-08T10:00:00Z")))
		assert.False(t, expr.OpenAt(at("2024-01-06T10:00:00Z")))
		assert.False(t, expr.OpenAt(at("2024-01-08T05:59:00Z")))
		assert.False(t, expr.OpenAt(at("2024-01-08T22:00:00Z")))
		assert.True(t, expr.OpenAt(at("2024-01-08T21:59:00Z")))
	})

	t.Run("Multiple rules", func(t *testing.T) {
		expr, err := Parse("Mo-Fr 06:00-22:00; Sa,Su 08:00-18:00")
		require.NoError(t, err)

		assert.True(t, expr.OpenAt(at("2024-01-06T09:00:00Z")))
		assert.False(t, expr.OpenAt(at("2024-01-06T07:00:00Z")))
		assert.True(t, expr.OpenAt(at("2024-01-07T17:59:00Z")))
	})

	t.Run("Day range wrapping the week", func(t *testing.T) {
		expr, err := Parse("Sa-Mo 10:00-12:00")
		require.NoError(t, err)

		assert.True(t, expr.OpenAt(at("2024-01-06T11:00:00Z")))  // Saturday
		assert.True(t, expr.OpenAt(at("2024-01-07T11:00:00Z")))  // Sunday
		assert.True(t, expr.OpenAt(at("2024-01-08T11:00:00Z")))  // Monday
		assert.False(t, expr.OpenAt(at("2024-01-09T11:00:00Z"))) // Tuesday
	})

	t.Run("Span wrapping midnight", func(t *testing.T) {
		expr, err := Parse("Mo 22:00-02:00")
		require.NoError(t, err)

		assert.True(t, expr.OpenAt(at("2024-01-08T23:00:00Z")))
		assert.True(t, expr.OpenAt(at("2024-01-08T01:00:00Z")))
		assert.False(t, expr.OpenAt(at("2024-01-08T12:00:00Z")))
	})

	t.Run("Rule without days applies every day", func(t *testing.T) {
		expr, err := Parse("06:00-22:00")
		require.NoError(t, err)

		assert.True(t, expr.OpenAt(at("2024-01-06T10:00:00Z")))
		assert.True(t, expr.OpenAt(at("2024-01-08T10:00:00Z")))
		assert.False(t, expr.OpenAt(at("2024-01-08T23:00:00Z")))
	})
}
