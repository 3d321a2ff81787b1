package rwarc

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestRwArc_Basic(t *testing.T) {
	a := New(0)
	r := a.Read()
	if r.Get() != 0 {
		t.Fatalf("got %d, want 0", r.Get())
	}
	r.Unlock()

	w := a.Write()
	w.Set(1)
	w.Unlock()

	r = a.Read()
	if r.Get() != 1 {
		t.Fatalf("got %d, want 1", r.Get())
	}
	r.Unlock()
}

func TestRwArc_ConcurrentReaders(t *testing.T) {
	a := New(42)
	var wg sync.WaitGroup
	n := runtime.GOMAXPROCS(0)
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			r := a.Read()
			if r.Get() != 42 {
				t.Errorf("got %d, want 42", r.Get())
			}
			r.Unlock()
		}()
	}
	wg.Wait()
}

func TestRwArc_ReadersAndWriters(t *testing.T) {
	a := New(0)
	var readers int32
	var writers int32

	const loops = 1000
	readerN := runtime.GOMAXPROCS(0)
	writerN := 2

	var wg sync.WaitGroup
	wg.Add(readerN + writerN)

	for range readerN {
		go func() {
			defer wg.Done()
			for range loops {
				r := a.Read()
				n := atomic.AddInt32(&readers, 1)
				if atomic.LoadInt32(&writers) != 0 {
					t.Errorf("reader observed active writer")
					r.Unlock()
					return
				}
				if n <= 0 {
					t.Errorf("invalid reader count")
					r.Unlock()
					return
				}
				atomic.AddInt32(&readers, -1)
				r.Unlock()
			}
		}()
	}

	for range writerN {
		go func() {
			defer wg.Done()
			for range loops {
				w := a.Write()
				if atomic.AddInt32(&writers, 1) != 1 {
					t.Errorf("multiple writers active")
					w.Unlock()
					return
				}
				if atomic.LoadInt32(&readers) != 0 {
					t.Errorf("writer observed active readers")
					w.Unlock()
					return
				}
				atomic.AddInt32(&writers, -1)
				w.Unlock()
			}
		}()
	}

	wg.Wait()
}

// Ten goroutines each take the exclusive claim and increment by one; the
// slot must end at exactly ten.
func TestRwArc_WriterIncrements(t *testing.T) {
	a := New(0)
	var g errgroup.Group
	for range 10 {
		g.Go(func() error {
			w := a.Write()
			w.Update(func(v int) int { return v + 1 })
			w.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	r := a.Read()
	defer r.Unlock()
	if r.Get() != 10 {
		t.Fatalf("got %d, want 10", r.Get())
	}
}

func TestRwArc_TryWriteBlockedByReader(t *testing.T) {
	a := New(0)
	r := a.Read()
	if _, ok := a.TryWrite(); ok {
		t.Fatal("TryWrite succeeded while a read claim is held")
	}
	r.Unlock()
	w, ok := a.TryWrite()
	if !ok {
		t.Fatal("TryWrite failed on a free core")
	}
	w.Unlock()
}

func TestRwArc_TryReadBlockedByWriter(t *testing.T) {
	a := New(0)
	w := a.Write()
	if _, ok := a.TryRead(); ok {
		t.Fatal("TryRead succeeded while the exclusive claim is held")
	}
	w.Unlock()
	r, ok := a.TryRead()
	if !ok {
		t.Fatal("TryRead failed on a free core")
	}
	r.Unlock()
}

func TestRwArc_Downgrade(t *testing.T) {
	a := New(5)
	w := a.Write()
	w.Set(6)
	r := w.Downgrade()
	if r.Get() != 6 {
		t.Fatalf("got %d, want 6", r.Get())
	}
	// Shared again: another reader may enter, a writer may not.
	r2, ok := a.TryRead()
	if !ok {
		t.Fatal("second reader rejected after downgrade")
	}
	if _, ok := a.TryWrite(); ok {
		t.Fatal("writer admitted while downgraded read claims are held")
	}
	r2.Unlock()
	r.Unlock()
}

func TestRwArc_StateCounts(t *testing.T) {
	a := New(0)
	if a.HasReaders() || a.HasWriter() || a.HasUpgradable() {
		t.Fatal("fresh core reports claims")
	}

	r := a.Read()
	if !a.HasReaders() || a.ReaderCount() != 1 {
		t.Fatalf("ReaderCount=%d, want 1", a.ReaderCount())
	}
	r.Unlock()

	u := a.UpgradableRead()
	// The reservation counts as a read share.
	if a.ReaderCount() != 1 || a.UpgradableCount() != 1 {
		t.Fatalf("ReaderCount=%d UpgradableCount=%d", a.ReaderCount(), a.UpgradableCount())
	}
	u.Unlock()

	w := a.Write()
	if a.WriterCount() != 1 || a.ReaderCount() != 0 {
		t.Fatalf("WriterCount=%d ReaderCount=%d", a.WriterCount(), a.ReaderCount())
	}
	w.Unlock()
	if a.HasWriter() {
		t.Fatal("writer bit still set after Unlock")
	}
}

func TestRwArc_CloneAndRefs(t *testing.T) {
	a := New(7)
	if a.Refs() != 1 {
		t.Fatalf("Refs=%d, want 1", a.Refs())
	}
	b := a.Clone()
	if a.Refs() != 2 {
		t.Fatalf("Refs=%d, want 2", a.Refs())
	}
	r := b.Read()
	if a.Refs() != 3 {
		t.Fatalf("Refs=%d, want 3", a.Refs())
	}
	r.Unlock()
	b.Release()
	if a.Refs() != 1 {
		t.Fatalf("Refs=%d, want 1", a.Refs())
	}
}

// A guard keeps the core alive after every owning handle released it.
func TestRwArc_GuardOutlivesHandles(t *testing.T) {
	a := New(3)
	r := a.DeferredRead()
	a.Release()
	if r.Get() != 3 {
		t.Fatalf("got %d, want 3", r.Get())
	}
	r.Release()
}

func TestRwArc_IntoInner(t *testing.T) {
	a := New(11)
	v, ok := a.IntoInner()
	if !ok || v != 11 {
		t.Fatalf("IntoInner=(%d,%v), want (11,true)", v, ok)
	}

	b := New(12)
	c := b.Clone()
	if _, ok := b.IntoInner(); ok {
		t.Fatal("IntoInner succeeded with a second handle alive")
	}
	c.Release()
	v, ok = b.IntoInner()
	if !ok || v != 12 {
		t.Fatalf("IntoInner=(%d,%v), want (12,true)", v, ok)
	}
}

func TestRwArc_UseAfterReleasePanics(t *testing.T) {
	a := New(0)
	a.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on use after Release")
		}
	}()
	a.Read()
}

func TestReadArc_DoubleUnlockPanics(t *testing.T) {
	a := New(0)
	r := a.Read()
	r.Unlock()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second Unlock")
		}
	}()
	r.Unlock()
}
