package funcutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPanicOrLogOnErr_LogsWithoutPanickingByDefault(t *testing.T) {
	require.NotPanics(t, func() {
		PanicOrLogOnErr(func() error { return errors.New("boom") }, false, "context")
	})
}

func TestPanicOrLogOnErr_PanicsWhenRequested(t *testing.T) {
	require.Panics(t, func() {
		PanicOrLogOnErr(func() error { return errors.New("boom") }, true, "context")
	})
}

func TestPanicOrLogOnErr_NoOpOnSuccess(t *testing.T) {
	require.NotPanics(t, func() {
		PanicOrLogOnErr(func() error { return nil }, true, "context")
	})
}

func TestIdentityFunc_ReturnsConstant(t *testing.T) {
	f := IdentityFunc(42)
	require.Equal(t, 42, f())
	require.Equal(t, 42, f())
}
