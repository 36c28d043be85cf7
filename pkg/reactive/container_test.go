package reactive

import (
	"slices"
	"strconv"
	"sync"
	"testing"
)

func TestSubscribeReceivesCurrentValue(t *testing.T) {
	c := New[int]("numbers")
	c.Set(map[string]int{"a": 1})

	var got []map[string]int
	unsub := c.Subscribe(func(m map[string]int) { got = append(got, m) })
	defer unsub()

	if len(got) != 1 {
		t.Fatalf("calls = %d, want 1", len(got))
	}
	if got[0]["a"] != 1 {
		t.Errorf("initial value = %v, want a=1", got[0])
	}
}

func TestSetEmitsSingleChange(t *testing.T) {
	c := New[string]("labels")
	calls := 0
	c.Subscribe(func(map[string]string) { calls++ })
	calls = 0

	c.Set(map[string]string{"a": "x", "b": "y", "c": "z"})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestSetCopiesInput(t *testing.T) {
	c := New[int]("numbers")
	in := map[string]int{"a": 1}
	c.Set(in)
	in["a"] = 99
	in["b"] = 2

	if v, _ := c.Get("a"); v != 1 {
		t.Errorf("Get(a) = %d, want 1", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestSetNil(t *testing.T) {
	c := New[int]("numbers")
	c.Set(map[string]int{"a": 1})
	c.Set(nil)
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if c.Snapshot() == nil {
		t.Error("Snapshot() = nil, want empty map")
	}
}

func TestMutate(t *testing.T) {
	c := New[int]("numbers")
	c.Set(map[string]int{"a": 1})
	before := c.Snapshot()

	calls := 0
	c.Subscribe(func(map[string]int) { calls++ })
	calls = 0

	if !c.Mutate("a", func(v int) int { return v + 10 }) {
		t.Fatal("Mutate(a) = false, want true")
	}
	if v, _ := c.Get("a"); v != 11 {
		t.Errorf("Get(a) = %d, want 11", v)
	}
	if before["a"] != 1 {
		t.Errorf("earlier snapshot changed to %d", before["a"])
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	if c.Mutate("missing", func(v int) int { t.Error("fn called for missing id"); return v }) {
		t.Error("Mutate(missing) = true, want false")
	}
	if calls != 1 {
		t.Errorf("calls after missing = %d, want 1", calls)
	}
}

func TestHoldRelease(t *testing.T) {
	tests := []struct {
		name      string
		writes    func(c *Container[int])
		wantCalls int
	}{
		{
			name:      "NoWrites",
			writes:    func(*Container[int]) {},
			wantCalls: 0,
		},
		{
			name: "SetAndMutate",
			writes: func(c *Container[int]) {
				c.Set(map[string]int{"a": 1, "b": 2})
				c.Mutate("a", func(v int) int { return v * 2 })
				c.Mutate("b", func(v int) int { return v * 2 })
			},
			wantCalls: 1,
		},
		{
			name: "Nested",
			writes: func(c *Container[int]) {
				c.Hold()
				c.Set(map[string]int{"a": 1})
				c.Release()
				c.Mutate("a", func(v int) int { return 5 })
			},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[int]("numbers")
			var seen []map[string]int
			c.Subscribe(func(m map[string]int) { seen = append(seen, m) })
			seen = nil

			c.Hold()
			tt.writes(c)
			if len(seen) != 0 {
				t.Fatalf("notified %d times while held", len(seen))
			}
			c.Release()

			if len(seen) != tt.wantCalls {
				t.Errorf("calls = %d, want %d", len(seen), tt.wantCalls)
			}
		})
	}
}

func TestHoldDeliversFinalState(t *testing.T) {
	c := New[int]("numbers")
	var last map[string]int
	c.Subscribe(func(m map[string]int) { last = m })

	c.Hold()
	c.Set(map[string]int{"a": -1})
	c.Mutate("a", func(int) int { return 7 })
	c.Release()

	if last["a"] != 7 {
		t.Errorf("delivered a = %d, want 7", last["a"])
	}
}

func TestReleaseWithoutHold(t *testing.T) {
	c := New[int]("numbers")
	calls := 0
	c.Subscribe(func(map[string]int) { calls++ })
	calls = 0
	c.Release()
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	c := New[int]("numbers")
	calls := 0
	unsub := c.Subscribe(func(map[string]int) { calls++ })
	if c.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", c.Subscribers())
	}

	unsub()
	unsub()
	c.Set(map[string]int{"a": 1})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (initial only)", calls)
	}
	if c.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", c.Subscribers())
	}
}

func TestSubscriberOrder(t *testing.T) {
	c := New[int]("numbers")
	var order []string
	c.Subscribe(func(map[string]int) { order = append(order, "first") })
	c.Subscribe(func(map[string]int) { order = append(order, "second") })
	order = nil

	c.Set(map[string]int{"a": 1})

	if !slices.Equal(order, []string{"first", "second"}) {
		t.Errorf("order = %v", order)
	}
}

func TestSubscriberMayWrite(t *testing.T) {
	c := New[int]("numbers")
	c.Set(map[string]int{"a": 1})
	c.Subscribe(func(m map[string]int) {
		if m["a"] == 2 {
			c.Mutate("a", func(int) int { return 3 })
		}
	})

	c.Mutate("a", func(int) int { return 2 })

	if v, _ := c.Get("a"); v != 3 {
		t.Errorf("Get(a) = %d, want 3", v)
	}
}

func TestKeysSorted(t *testing.T) {
	c := New[int]("numbers")
	c.Set(map[string]int{"c": 3, "a": 1, "b": 2})
	if got := c.Keys(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int]("numbers")
	c.Set(map[string]int{"a": 0})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Mutate("a", func(v int) int { return v + 1 })
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	if v, _ := c.Get("a"); v != 800 {
		t.Errorf("Get(a) = %d, want 800", v)
	}
}

func TestHeldWritesKeepEarlierSnapshots(t *testing.T) {
	c := New[int]("numbers")
	var events []map[string]int
	c.Subscribe(func(m map[string]int) { events = append(events, m) })
	c.Set(map[string]int{"a": 1, "b": 1})
	before := c.Snapshot()

	c.Hold()
	c.Mutate("a", func(int) int { return 2 })
	mid := c.Snapshot()
	c.Mutate("a", func(int) int { return 3 })
	c.Mutate("b", func(int) int { return 3 })
	c.Release()

	if before["a"] != 1 || events[1]["a"] != 1 {
		t.Errorf("snapshot before hold changed: %v, %v", before, events[1])
	}
	if mid["a"] != 2 || mid["b"] != 1 {
		t.Errorf("snapshot during hold changed: %v", mid)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if last := events[2]; last["a"] != 3 || last["b"] != 3 {
		t.Errorf("released event = %v", last)
	}

	// A write after the hold must not touch the map just delivered.
	c.Mutate("a", func(int) int { return 4 })
	if events[2]["a"] != 3 {
		t.Errorf("delivered map edited after release: %v", events[2])
	}
}

func TestHeldMutateLinear(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large container test in short mode")
	}
	const n = 50000

	m := make(map[string]int, n)
	for i := range n {
		m[strconv.Itoa(i)] = i
	}
	c := New[int]("numbers")
	c.Hold()
	c.Set(m)
	for i := range n {
		c.Mutate(strconv.Itoa(i), func(v int) int { return v + 1 })
	}
	c.Release()

	if v, _ := c.Get("49999"); v != n {
		t.Errorf("Get(49999) = %d, want %d", v, n)
	}
}

func BenchmarkMutateHeld(b *testing.B) {
	const n = 10000
	m := make(map[string]int, n)
	keys := make([]string, n)
	for i := range n {
		keys[i] = strconv.Itoa(i)
		m[keys[i]] = i
	}
	c := New[int]("numbers")
	c.Set(m)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Hold()
		for _, k := range keys {
			c.Mutate(k, func(v int) int { return v + 1 })
		}
		c.Release()
	}
}
