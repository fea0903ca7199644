package grabber

import (
	"testing"
	"time"

	"github.com/ledstream/core/ledmap"
	"github.com/ledstream/core/pixel"
)

func TestWorkerCountClamp(t *testing.T) {
	cases := []struct {
		ideal, want int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 2},
		{5, 4},
		{100, 4},
	}
	for _, c := range cases {
		if got := workerCount(c.ideal); got != c.want {
			t.Errorf("workerCount(%d) = %d, want %d", c.ideal, got, c.want)
		}
	}
}

// TestPoolPreservesOrder submits far more buffers than the pool has
// idle worker slots, so some are expected to be dropped under
// back-pressure. It asserts that every frame that does come out of
// Out() arrives with a strictly increasing Seq, and that the run
// terminates instead of stalling on a dropped buffer's sequence
// number (a dropped buffer is never assigned one).
func TestPoolPreservesOrder(t *testing.T) {
	imgPool := ledmap.NewPool(0)
	p := New(5, imgPool, nil) // 4 workers.
	defer p.Stop()

	const n = 20
	for i := 0; i < n; i++ {
		src := []byte{1, 2, 3, 4, 5, 6}
		p.Submit(Buffer{
			Arrived: time.Now(),
			Request: pixel.Request{Src: src, Width: 2, Height: 1, Stride: 6, Format: pixel.RGB24},
		})
	}

	received := 0
	timeout := time.After(2 * time.Second)
	var lastSeq uint64
	first := true
	for {
		stats := p.Stats()
		if received+int(stats.Dropped) >= n {
			break
		}
		select {
		case v := <-p.Out():
			f, ok := v.(*Frame)
			if !ok {
				t.Fatalf("unexpected failed frame: %+v", v)
			}
			if !first && f.Seq != lastSeq+1 {
				t.Fatalf("out-of-order: got seq %d after %d", f.Seq, lastSeq)
			}
			first = false
			lastSeq = f.Seq
			f.Image.Release()
			received++
		case <-timeout:
			t.Fatalf("timed out after %d/%d frames (dropped=%d): reassembly stalled", received, n, p.Stats().Dropped)
		}
	}
	if received == 0 {
		t.Fatal("no frames were ever emitted")
	}
}

// TestPoolDropsDoNotStallReassembly forces a drop by submitting a
// second buffer while the pool's single worker is still busy with the
// first, then confirms later submissions keep flowing out of Out()
// instead of the reassembly drain stalling on the dropped buffer's
// sequence number.
func TestPoolDropsDoNotStallReassembly(t *testing.T) {
	imgPool := ledmap.NewPool(0)
	p := New(1, imgPool, nil) // workerCount(1) == 1 worker.
	defer p.Stop()

	src := []byte{1, 2, 3, 4, 5, 6}
	req := pixel.Request{Src: src, Width: 2, Height: 1, Stride: 6, Format: pixel.RGB24}

	p.Submit(Buffer{Arrived: time.Now(), Request: req}) // occupies the only worker.
	p.Submit(Buffer{Arrived: time.Now(), Request: req}) // no idle worker: dropped.

	var got []*Frame
	readFrame := func() {
		select {
		case v := <-p.Out():
			f, ok := v.(*Frame)
			if !ok {
				t.Fatalf("unexpected failed frame: %+v", v)
			}
			f.Image.Release()
			got = append(got, f)
		case <-time.After(2 * time.Second):
			t.Fatalf("reassembly stalled: got %d frames", len(got))
		}
	}

	readFrame()
	if p.Stats().Dropped == 0 {
		t.Skip("scheduling-dependent: the second submit landed on the worker before it went idle")
	}

	// The dropped buffer never consumed a sequence number; further
	// submissions must still reach Out() rather than waiting on it forever.
	p.Submit(Buffer{Arrived: time.Now(), Request: req})
	p.Submit(Buffer{Arrived: time.Now(), Request: req})
	readFrame()
	readFrame()

	for i := 1; i < len(got); i++ {
		if got[i].Seq != got[i-1].Seq+1 {
			t.Fatalf("sequence gap across a drop: %d then %d", got[i-1].Seq, got[i].Seq)
		}
	}
}
