package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain pops one queued frame without blocking.
func drain(t *testing.T, c *Conn) []byte {
	t.Helper()
	select {
	case b := <-c.out:
		return b
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func assertIdle(t *testing.T, c *Conn) {
	t.Helper()
	select {
	case b := <-c.out:
		t.Fatalf("unexpected frame: %s", b)
	default:
	}
}

func TestEmitReachesAllMembers(t *testing.T) {
	g := NewGroups()
	a, b := NewConn(nil), NewConn(nil)
	g.Subscribe(a, roomGroup("r1"))
	g.Subscribe(b, roomGroup("r1"))

	g.Emit(roomGroup("r1"), []byte("x"))
	assert.Equal(t, []byte("x"), drain(t, a))
	assert.Equal(t, []byte("x"), drain(t, b))
}

func TestEmitExceptSkipsSender(t *testing.T) {
	g := NewGroups()
	a, b := NewConn(nil), NewConn(nil)
	g.Subscribe(a, roomGroup("r1"))
	g.Subscribe(b, roomGroup("r1"))

	g.EmitExcept(roomGroup("r1"), []byte("x"), a)
	assertIdle(t, a)
	assert.Equal(t, []byte("x"), drain(t, b))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	g := NewGroups()
	a := NewConn(nil)
	g.Subscribe(a, roomGroup("r1"))
	g.Unsubscribe(a, roomGroup("r1"))

	g.Emit(roomGroup("r1"), []byte("x"))
	assertIdle(t, a)
	assert.Equal(t, 0, g.Size(roomGroup("r1")))
}

func TestDropRemovesFromEveryGroup(t *testing.T) {
	g := NewGroups()
	a := NewConn(nil)
	g.Subscribe(a, roomGroup("r1"))
	g.Subscribe(a, userGroup("alice"))
	require.Equal(t, 1, g.Size(userGroup("alice")))

	g.Drop(a)
	g.Emit(roomGroup("r1"), []byte("x"))
	g.Emit(userGroup("alice"), []byte("y"))
	assertIdle(t, a)
	assert.Equal(t, 0, g.Size(roomGroup("r1")))
	assert.Equal(t, 0, g.Size(userGroup("alice")))
}

func TestGroupKeysAreNamespaced(t *testing.T) {
	g := NewGroups()
	a, b := NewConn(nil), NewConn(nil)
	g.Subscribe(a, roomGroup("alice"))
	g.Subscribe(b, userGroup("alice"))

	g.Emit(userGroup("alice"), []byte("x"))
	assertIdle(t, a)
	assert.Equal(t, []byte("x"), drain(t, b))
}
