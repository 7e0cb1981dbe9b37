package policy

import (
	"sync"
	"testing"
)

func TestHolder_Current(t *testing.T) {
	h := NewHolder("cdd01ef066bc6cf2")

	if got := h.Current(); got != "cdd01ef066bc6cf2" {
		t.Errorf("Current() = %q, want %q", got, "cdd01ef066bc6cf2")
	}
}

func TestHolder_Rotate(t *testing.T) {
	h := NewHolder("aaaa")

	if !h.Rotate("bbbb") {
		t.Error("Rotate(new) = false, want true")
	}
	if got := h.Current(); got != "bbbb" {
		t.Errorf("Current() after rotate = %q, want %q", got, "bbbb")
	}
}

func TestHolder_Rotate_Idempotent(t *testing.T) {
	h := NewHolder("aaaa")

	notified := 0
	h.Subscribe(func(old, new Identity) { notified++ })

	if h.Rotate("aaaa") {
		t.Error("Rotate(same) = true, want false")
	}
	if notified != 0 {
		t.Errorf("subscriber notified %d times on no-op rotation, want 0", notified)
	}
}

func TestHolder_Subscribe(t *testing.T) {
	h := NewHolder("aaaa")

	var gotOld, gotNew Identity
	h.Subscribe(func(old, new Identity) {
		gotOld, gotNew = old, new
	})

	h.Rotate("bbbb")

	if gotOld != "aaaa" || gotNew != "bbbb" {
		t.Errorf("subscriber got (%q, %q), want (%q, %q)", gotOld, gotNew, "aaaa", "bbbb")
	}
}

func TestHolder_ConcurrentReads(t *testing.T) {
	h := NewHolder("v0")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers must always observe a complete identity, never a torn value.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				id := h.Current()
				if id != "v0" && id != "v1" {
					t.Errorf("observed torn identity %q", id)
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			h.Rotate("v1")
		} else {
			h.Rotate("v0")
		}
	}
	close(stop)
	wg.Wait()
}

func TestIdentity_Short(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want string
	}{
		{"long hash", "cdd01ef066bc6cf2f1f5f1a1b2c3d4e5", "cdd01ef066bc"},
		{"short token", "v1", "v1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}
