package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/ticketflow/pkg/adapters/memory"
	"github.com/aretw0/ticketflow/pkg/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(booking.MustTable(), memory.NewStore())
	ctx := context.Background()
	count := 2000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, err := mgr.Step(ctx, sid, booking.Auth)
		require.NoError(t, err)
		require.NoError(t, mgr.Delete(ctx, sid))
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
