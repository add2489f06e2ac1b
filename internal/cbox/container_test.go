package cbox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(seq func(func(*ContainedObject) bool)) []ID {
	var out []ID
	for co := range seq {
		out = append(out, co.ID())
	}
	return out
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	c := NewContainer()
	_, err := c.Add(newCounter(), SystemProfiles, 1, false)
	require.NoError(t, err)
	_, err = c.Add(newCounter(), SystemProfiles, 2, false)
	require.NoError(t, err)
	return c
}

func TestContainerAddAssignsIDs(t *testing.T) {
	c := newTestContainer(t)

	id, err := c.Add(newCounter(), 0x01, InvalidID, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserStartID, id)

	id, err = c.Add(newCounter(), 0x01, InvalidID, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserStartID+1, id)

	_, err = c.Add(newCounter(), 0x01, 150, false)
	require.NoError(t, err)

	id, err = c.Add(newCounter(), 0x01, InvalidID, false)
	require.NoError(t, err)
	assert.Equal(t, ID(151), id)

	assert.Equal(t, []ID{1, 2, 100, 101, 150, 151}, ids(c.All()))
	assert.Equal(t, []ID{100, 101, 150, 151}, ids(c.User()))
}

func TestContainerAddDuplicate(t *testing.T) {
	c := newTestContainer(t)
	_, err := c.Add(newCounter(), 0x01, 100, false)
	require.NoError(t, err)

	_, err = c.Add(newCounter(), 0x01, 100, false)
	assert.Equal(t, StatusInvalidObjectID, StatusOf(err))
	assert.Equal(t, 3, c.Len())
}

func TestContainerAddFillsGapsWhenTopIsTaken(t *testing.T) {
	c := NewContainer()
	_, err := c.Add(newCounter(), 0x01, MaxID, false)
	require.NoError(t, err)
	_, err = c.Add(newCounter(), 0x01, 100, false)
	require.NoError(t, err)

	id, err := c.Add(newCounter(), 0x01, InvalidID, false)
	require.NoError(t, err)
	assert.Equal(t, ID(101), id)
}

func TestContainerFull(t *testing.T) {
	c := NewContainer()
	c.SetStartID(MaxID - 1)
	for range 2 {
		_, err := c.Add(newCounter(), 0x01, InvalidID, false)
		require.NoError(t, err)
	}
	_, err := c.Add(newCounter(), 0x01, InvalidID, false)
	assert.Equal(t, StatusContainerFull, StatusOf(err))
}

func TestContainerAddIdentityUniqueness(t *testing.T) {
	c := newTestContainer(t)
	seen := map[ID]bool{}
	for i := range 50 {
		requested := InvalidID
		if i%3 == 0 {
			requested = ID(100 + i*2)
		}
		id, err := c.Add(newCounter(), 0x01, requested, false)
		if err != nil {
			continue
		}
		assert.False(t, seen[id], "id %d assigned twice", id)
		assert.GreaterOrEqual(t, id, c.StartID())
		seen[id] = true
	}
	all := ids(c.All())
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1], all[i])
	}
}

func TestContainerReplaceInvalidatesOldSlot(t *testing.T) {
	c := newTestContainer(t)
	first := newCounter()
	_, err := c.Add(first, 0x03, 100, false)
	require.NoError(t, err)
	old := c.FetchContained(100)

	second := newCounter()
	_, err = c.Add(second, 0x03, 100, true)
	require.NoError(t, err)

	assert.Same(t, second, c.Fetch(100))
	assert.Same(t, first, old.Object())
	assert.NotSame(t, old, c.FetchContained(100))
}

func TestContainerRemove(t *testing.T) {
	c := newTestContainer(t)
	_, err := c.Add(newCounter(), 0x01, 100, false)
	require.NoError(t, err)

	tests := []struct {
		name string
		id   ID
		want Status
	}{
		{"system object", 1, StatusObjectNotDeletable},
		{"absent", 120, StatusInvalidObjectID},
		{"user object", 100, StatusOK},
		{"already removed", 100, StatusInvalidObjectID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(c.Remove(tt.id)))
		})
	}
	assert.Equal(t, []ID{1, 2}, ids(c.All()))
}

func TestContainerDeactivate(t *testing.T) {
	c := newTestContainer(t)
	_, err := c.Add(newCounter(), 0x04, 100, false)
	require.NoError(t, err)

	require.NoError(t, c.Deactivate(100))
	co := c.FetchContained(100)
	require.NotNil(t, co)
	assert.True(t, co.Inactive())
	assert.Equal(t, Profiles(0x04), co.Profiles())

	var buf bytes.Buffer
	require.NoError(t, co.StreamTo(&buf))
	assert.Equal(t, []byte{100, 0, 0x04, 0xFF, 0xFF, 0xF4, 0x01}, buf.Bytes())

	require.NoError(t, c.Deactivate(100), "deactivating twice is a no-op")
	assert.Equal(t, StatusObjectNotWritable, StatusOf(c.Deactivate(1)))
	assert.Equal(t, StatusInvalidObjectID, StatusOf(c.Deactivate(101)))
}

func TestContainerUpdateSchedule(t *testing.T) {
	c := newTestContainer(t)
	obj := newCounter()
	_, err := c.Add(obj, 0x01, 100, false)
	require.NoError(t, err)
	_, err = c.Add(newCounter(), 0x01, 101, false)
	require.NoError(t, err)
	require.NoError(t, c.Deactivate(101))

	c.Update(0)
	assert.Equal(t, 1, obj.updates)

	c.Update(50)
	assert.Equal(t, 1, obj.updates, "not due until 100")

	c.ForcedUpdate(60)
	assert.Equal(t, 2, obj.updates)

	c.Update(160)
	assert.Equal(t, 3, obj.updates)
}

func TestTicksDueWraps(t *testing.T) {
	assert.True(t, Ticks(5).Due(Ticks(0xFFFFFFF0)))
	assert.False(t, Ticks(0xFFFFFFF0).Due(Ticks(5)))
	assert.True(t, Ticks(10).Due(10))
}

func TestContainerClear(t *testing.T) {
	c := newTestContainer(t)
	for range 3 {
		_, err := c.Add(newCounter(), 0x01, InvalidID, false)
		require.NoError(t, err)
	}

	c.Clear()
	assert.Equal(t, []ID{1, 2}, ids(c.All()))
	assert.Empty(t, c.UserIDs())

	c.ClearAll()
	assert.Equal(t, 0, c.Len())
}

func TestContainerIterationAllowsMutation(t *testing.T) {
	c := newTestContainer(t)
	for range 3 {
		_, err := c.Add(newCounter(), 0x01, InvalidID, false)
		require.NoError(t, err)
	}

	var visited []ID
	for co := range c.User() {
		visited = append(visited, co.ID())
		require.NoError(t, c.Remove(co.ID()))
	}
	assert.Equal(t, []ID{100, 101, 102}, visited)
	assert.Empty(t, c.UserIDs())
}

func TestContainedObjectStreamFrom(t *testing.T) {
	c := newTestContainer(t)
	obj := newCounter()
	_, err := c.Add(obj, 0x01, 100, false)
	require.NoError(t, err)
	co := c.FetchContained(100)

	t.Run("type mismatch leaves object untouched", func(t *testing.T) {
		in := bytes.NewReader([]byte{0x02, 0x01, 0x00, 7, 0, 0, 0})
		assert.Equal(t, StatusInvalidType, StatusOf(co.StreamFrom(in, false)))
		assert.Equal(t, uint32(0), obj.setting)
		assert.Equal(t, Profiles(0x01), co.Profiles())
	})

	t.Run("applies settings and profiles", func(t *testing.T) {
		in := bytes.NewReader([]byte{0x06, 0xF4, 0x01, 7, 0, 0, 0})
		require.NoError(t, co.StreamFrom(in, false))
		assert.Equal(t, uint32(7), obj.setting)
		assert.Equal(t, Profiles(0x06), co.Profiles())
	})

	t.Run("system objects keep profiles", func(t *testing.T) {
		in := bytes.NewReader([]byte{0x02, 0xF4, 0x01, 9, 0, 0, 0})
		require.NoError(t, co.StreamFrom(in, true))
		assert.Equal(t, uint32(9), obj.setting)
		assert.Equal(t, Profiles(0x06), co.Profiles())
	})

	t.Run("short payload", func(t *testing.T) {
		in := bytes.NewReader([]byte{0x02, 0xF4, 0x01, 9})
		assert.Equal(t, StatusInputStreamReadError, StatusOf(co.StreamFrom(in, false)))
	})
}

func TestContainedObjectPersistedLayout(t *testing.T) {
	c := newTestContainer(t)
	obj := newCounter()
	obj.setting = 0x01020304
	_, err := c.Add(obj, 0x05, 100, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.FetchContained(100).StreamPersistedTo(&buf))
	assert.Equal(t, []byte{0x05, 0xF4, 0x01, 4, 3, 2, 1}, buf.Bytes())
}
