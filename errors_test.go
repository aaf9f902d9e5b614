package socialgraph_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/socialgraph"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := socialgraph.NewNotFoundError("User")
		assert.Equal(t, "socialgraph: User not found", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := socialgraph.NewNotFoundError("Profile")
		assert.True(t, errors.Is(err, socialgraph.ErrNotFound))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := socialgraph.NewNotFoundError("Follow")
		assert.True(t, socialgraph.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, socialgraph.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, socialgraph.IsNotFound(socialgraph.ErrNotFound))

		// Non-matching error
		assert.False(t, socialgraph.IsNotFound(errors.New("other error")))
		assert.False(t, socialgraph.IsNotFound(nil))
	})
}

func TestNotSingularError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := socialgraph.NewNotSingularError("User")
		assert.Equal(t, "socialgraph: User not singular", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := socialgraph.NewNotSingularError("Profile")
		assert.True(t, errors.Is(err, socialgraph.ErrNotSingular))
	})

	t.Run("IsNotSingular", func(t *testing.T) {
		err := socialgraph.NewNotSingularError("Session")
		assert.True(t, socialgraph.IsNotSingular(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, socialgraph.IsNotSingular(wrapped))

		// Sentinel error
		assert.True(t, socialgraph.IsNotSingular(socialgraph.ErrNotSingular))

		// Non-matching error
		assert.False(t, socialgraph.IsNotSingular(errors.New("other error")))
		assert.False(t, socialgraph.IsNotSingular(nil))
	})
}

func TestNotLoadedError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := socialgraph.NewNotLoadedError("accounts")
		assert.Equal(t, `socialgraph: edge "accounts" was not loaded`, err.Error())
	})

	t.Run("IsNotLoaded", func(t *testing.T) {
		err := socialgraph.NewNotLoadedError("followers")
		assert.True(t, socialgraph.IsNotLoaded(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, socialgraph.IsNotLoaded(wrapped))

		// Non-matching error
		assert.False(t, socialgraph.IsNotLoaded(errors.New("other error")))
		assert.False(t, socialgraph.IsNotLoaded(nil))
	})
}

func TestConstraintError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := socialgraph.NewConstraintError("UNIQUE constraint failed", nil)
		assert.Equal(t, "socialgraph: constraint failed: UNIQUE constraint failed", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("db error")
		err := socialgraph.NewConstraintError("constraint violated", underlying)
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsConstraintError", func(t *testing.T) {
		err := socialgraph.NewConstraintError("check failed", nil)
		assert.True(t, socialgraph.IsConstraintError(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, socialgraph.IsConstraintError(wrapped))

		// Non-matching error
		assert.False(t, socialgraph.IsConstraintError(errors.New("other error")))
		assert.False(t, socialgraph.IsConstraintError(nil))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := socialgraph.NewValidationError("email", errors.New("invalid format"))
		assert.Equal(t, "socialgraph: invalid email: invalid format", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("too short")
		err := socialgraph.NewValidationError("name", underlying)
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsValidationError", func(t *testing.T) {
		err := socialgraph.NewValidationError("age", errors.New("must be positive"))
		assert.True(t, socialgraph.IsValidationError(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, socialgraph.IsValidationError(wrapped))

		// Non-matching error
		assert.False(t, socialgraph.IsValidationError(errors.New("other error")))
		assert.False(t, socialgraph.IsValidationError(nil))
	})
}

func TestRollbackError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := &socialgraph.RollbackError{Err: errors.New("connection lost")}
		assert.Equal(t, "socialgraph: rollback failed: connection lost", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("timeout")
		err := &socialgraph.RollbackError{Err: underlying}
		assert.True(t, errors.Is(err, underlying))
	})
}

func TestAggregateError(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		err := socialgraph.NewAggregateError()
		assert.Nil(t, err)
	})

	t.Run("NilErrors", func(t *testing.T) {
		err := socialgraph.NewAggregateError(nil, nil, nil)
		assert.Nil(t, err)
	})

	t.Run("SingleError", func(t *testing.T) {
		single := errors.New("single error")
		err := socialgraph.NewAggregateError(single)
		assert.Equal(t, single, err)
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err2 := errors.New("error 2")
		err := socialgraph.NewAggregateError(err1, err2)

		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "error 1")
		assert.Contains(t, err.Error(), "error 2")
	})

	t.Run("MixedNilAndErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err := socialgraph.NewAggregateError(nil, err1, nil)

		require.NotNil(t, err)
		assert.Equal(t, err1, err) // Single non-nil error returned directly
	})
}

func TestSentinelErrors(t *testing.T) {
	t.Run("ErrNotFound", func(t *testing.T) {
		assert.Error(t, socialgraph.ErrNotFound)
		assert.Contains(t, socialgraph.ErrNotFound.Error(), "not found")
	})

	t.Run("ErrNotSingular", func(t *testing.T) {
		assert.Error(t, socialgraph.ErrNotSingular)
		assert.Contains(t, socialgraph.ErrNotSingular.Error(), "not singular")
	})

	t.Run("ErrTxStarted", func(t *testing.T) {
		assert.Error(t, socialgraph.ErrTxStarted)
		assert.Contains(t, socialgraph.ErrTxStarted.Error(), "transaction")
	})
}

func TestUniqueConstraintError(t *testing.T) {
	cause := errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)
	err := socialgraph.NewUniqueConstraintError("User", "users_email_key", []string{"email"}, cause)

	assert.True(t, socialgraph.IsConstraintError(err))
	assert.True(t, socialgraph.IsUniqueConstraintError(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "unique constraint failed on User (email)")

	ce, ok := socialgraph.AsConstraintError(fmt.Errorf("create: %w", err))
	require.True(t, ok)
	assert.Equal(t, socialgraph.UniqueConstraint, ce.Kind)
	assert.Equal(t, "users_email_key", ce.Constraint)
	assert.Equal(t, []string{"email"}, ce.Fields)

	assert.False(t, socialgraph.IsUniqueConstraintError(socialgraph.NewConstraintError("check", nil)))
}

func TestInfraError(t *testing.T) {
	tests := []struct {
		kind      socialgraph.InfraKind
		retryable bool
	}{
		{socialgraph.InfraConnection, true},
		{socialgraph.InfraConflict, true},
		{socialgraph.InfraTxAcquire, true},
		{socialgraph.InfraTimeout, true},
		{socialgraph.InfraTxTimeout, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			cause := errors.New("boom")
			err := fmt.Errorf("wrapped: %w", socialgraph.NewInfraError(tt.kind, cause))
			assert.True(t, socialgraph.IsInfraError(err))
			assert.Equal(t, tt.retryable, socialgraph.IsRetryable(err))
			assert.True(t, errors.Is(err, cause))
		})
	}
	assert.False(t, socialgraph.IsInfraError(errors.New("other")))
	assert.False(t, socialgraph.IsRetryable(nil))
}

// BenchmarkErrors benchmarks error creation and checking.
func BenchmarkErrors(b *testing.B) {
	b.Run("NewNotFoundError", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = socialgraph.NewNotFoundError("User")
		}
	})

	b.Run("IsNotFound", func(b *testing.B) {
		err := socialgraph.NewNotFoundError("User")
		for i := 0; i < b.N; i++ {
			_ = socialgraph.IsNotFound(err)
		}
	})

	b.Run("NewConstraintError", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = socialgraph.NewConstraintError("unique", nil)
		}
	})

	b.Run("IsConstraintError", func(b *testing.B) {
		err := socialgraph.NewConstraintError("unique", nil)
		for i := 0; i < b.N; i++ {
			_ = socialgraph.IsConstraintError(err)
		}
	})

	b.Run("NewValidationError", func(b *testing.B) {
		underlying := errors.New("invalid")
		for i := 0; i < b.N; i++ {
			_ = socialgraph.NewValidationError("field", underlying)
		}
	})

	b.Run("NewAggregateError_multiple", func(b *testing.B) {
		err1 := errors.New("err1")
		err2 := errors.New("err2")
		err3 := errors.New("err3")
		for i := 0; i < b.N; i++ {
			_ = socialgraph.NewAggregateError(err1, err2, err3)
		}
	})
}
