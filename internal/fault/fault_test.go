package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap("noop", nil))
}

func TestIsFatalThroughWrapping(t *testing.T) {
	base := errors.New("disk gone")
	err := fmt.Errorf("mark dead: %w", Wrap("kill character", base))

	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "kill character")
	assert.False(t, IsFatal(base))
	assert.False(t, IsFatal(nil))
}

func TestChannelKeepsFirstFault(t *testing.T) {
	c := NewChannel()
	first := Wrap("a", errors.New("one"))
	c.Report(first)
	c.Report(Wrap("b", errors.New("two")))

	select {
	case got := <-c.C():
		require.Equal(t, first, got)
	default:
		t.Fatal("expected a fault on the channel")
	}
	select {
	case got := <-c.C():
		t.Fatalf("unexpected second fault %v", got)
	default:
	}
}
