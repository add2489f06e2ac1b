package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/brewlogic-core/internal/box"
	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/storage"
)

func TestCommandHandled(t *testing.T) {
	m := New()

	m.CommandHandled(box.CommandReadObject, cbox.StatusOK, time.Millisecond)
	m.CommandHandled(box.CommandReadObject, cbox.StatusOK, time.Millisecond)
	m.CommandHandled(box.CommandReadObject, cbox.StatusInvalidObjectID, time.Millisecond)

	tests := []struct {
		status string
		want   float64
	}{
		{cbox.StatusOK.String(), 2},
		{cbox.StatusInvalidObjectID.String(), 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.commands.WithLabelValues(box.CommandReadObject.String(), tt.status))
		if got != tt.want {
			t.Errorf("commands{status=%q} = %v, want %v", tt.status, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.commandDuration); n != 1 {
		t.Errorf("command duration series = %d, want 1", n)
	}
}

func TestObjectsChanged(t *testing.T) {
	m := New()
	m.ObjectsChanged(7, 2, 0x05)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"objects", testutil.ToFloat64(m.objects), 7},
		{"inactive", testutil.ToFloat64(m.inactiveObjects), 2},
		{"profiles", testutil.ToFloat64(m.activeProfiles), 5},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestConnectionsAndStorage(t *testing.T) {
	m := New()
	m.ConnectionOpened("tcp")
	m.ConnectionOpened("tcp")
	m.ConnectionClosed("tcp")
	m.StorageFailed("store")

	if got := testutil.ToFloat64(m.connections.WithLabelValues("tcp")); got != 1 {
		t.Errorf("open tcp connections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.connectionsSeen.WithLabelValues("tcp")); got != 2 {
		t.Errorf("accepted tcp connections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.storageFailures.WithLabelValues("store")); got != 1 {
		t.Errorf("storage failures = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObjectsChanged(3, 0, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"brewlogic_box_objects 3", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestPebbleCollector(t *testing.T) {
	store, err := storage.OpenPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenPebbleStore() error = %v", err)
	}
	defer store.Close()

	m := New()
	if err := m.RegisterPebble(store); err != nil {
		t.Fatalf("RegisterPebble() error = %v", err)
	}

	if n := testutil.CollectAndCount(NewPebbleCollector(store)); n != 7 {
		t.Errorf("pebble series = %d, want 7", n)
	}
	if err := m.RegisterPebble(store); err == nil {
		t.Error("registering the collector twice should fail")
	}
}
