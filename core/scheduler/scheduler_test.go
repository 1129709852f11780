package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/infra/logger"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestScheduler(cfg Config) (*Scheduler, *fakeClock) {
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := New(cfg, logger.NopLogger{})
	s.now = clk.Now
	s.started = clk.Now()
	return s, clk
}

func taskAt(x, y float64) model.Task {
	return model.NewTask(model.TaskPick, model.Point{X: x, Y: y})
}

func TestDispatchOrderPriorityThenFIFO(t *testing.T) {
	s, clk := newTestScheduler(Config{})
	a, b, c := taskAt(1, 1), taskAt(2, 2), taskAt(3, 3)

	s.Add(a, 2)
	clk.advance(time.Second)
	s.Add(b, 1)
	clk.advance(time.Second)
	s.Add(c, 1)

	want := []uuid.UUID{b.ID, c.ID, a.ID}
	for i, id := range want {
		got, ok := s.Next()
		if !ok || got.ID != id {
			t.Fatalf("dispatch %d: expected %s got %s (ok=%v)", i, id, got.ID, ok)
		}
	}
}

func TestNextClearsCurrentOnEmpty(t *testing.T) {
	s, _ := newTestScheduler(Config{})
	task := taskAt(1, 1)
	s.Add(task, 1)

	if _, ok := s.Next(); !ok {
		t.Fatalf("expected a task")
	}
	if cur, ok := s.Current(); !ok || cur.ID != task.ID {
		t.Fatalf("current should be the dispatched task")
	}
	if _, ok := s.Next(); ok {
		t.Fatalf("queue should be empty")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("empty pop must clear the current task")
	}
}

func TestAdmissionCap(t *testing.T) {
	s, _ := newTestScheduler(Config{MaxQueueSize: 2})

	if !s.Add(taskAt(1, 1), 1) || !s.Add(taskAt(2, 2), 1) {
		t.Fatalf("first two tasks should be admitted")
	}
	if s.Add(taskAt(3, 3), 1) {
		t.Fatalf("third task should be rejected at capacity")
	}

	// Dispatching frees the queue slot: the task stays active but is no
	// longer queued.
	if _, ok := s.Next(); !ok {
		t.Fatalf("expected a task")
	}
	if !s.Add(taskAt(4, 4), 1) {
		t.Fatalf("slot freed by dispatch should admit a new task")
	}
}

func TestAddBatchCountsAdmitted(t *testing.T) {
	s, _ := newTestScheduler(Config{MaxQueueSize: 2})
	tasks := []model.Task{taskAt(1, 1), taskAt(2, 2), taskAt(3, 3)}

	if got := s.AddBatch(tasks, nil); got != 2 {
		t.Fatalf("expected 2 admitted got %d", got)
	}
	if s.Pending() != 2 {
		t.Fatalf("expected 2 pending got %d", s.Pending())
	}
}

func TestAddDuplicateIDRejected(t *testing.T) {
	s, _ := newTestScheduler(Config{})
	task := taskAt(1, 1)

	if !s.Add(task, 1) {
		t.Fatalf("first add should succeed")
	}
	if s.Add(task, 5) {
		t.Fatalf("re-adding an active task ID should fail")
	}
}

func TestCompleteUnknownNoMutation(t *testing.T) {
	s, _ := newTestScheduler(Config{})
	s.Add(taskAt(1, 1), 1)

	if s.Complete(uuid.New()) {
		t.Fatalf("completing an unknown task should fail")
	}
	st := s.Stats()
	if st.CompletedCount != 0 || st.PendingCount != 1 {
		t.Fatalf("failed complete must not mutate state: %+v", st)
	}
}

func TestCompleteRecordsDurations(t *testing.T) {
	s, clk := newTestScheduler(Config{})
	task := taskAt(1, 1)
	s.Add(task, 1)

	clk.advance(2 * time.Second)
	if _, ok := s.Next(); !ok {
		t.Fatalf("expected the task")
	}
	clk.advance(3 * time.Second)
	if !s.Complete(task.ID) {
		t.Fatalf("complete should succeed")
	}

	st := s.Stats()
	if st.CompletedCount != 1 {
		t.Fatalf("expected 1 completed got %d", st.CompletedCount)
	}
	if st.AvgWaitTime != 5 {
		t.Fatalf("wait should span admission to completion: got %v", st.AvgWaitTime)
	}
	if st.AvgCompletionTime != 3 {
		t.Fatalf("completion should span dispatch to completion: got %v", st.AvgCompletionTime)
	}
	if st.Throughput != 1.0/5.0 {
		t.Fatalf("throughput should be completed/elapsed: got %v", st.Throughput)
	}

	if s.Complete(task.ID) {
		t.Fatalf("completed tasks are terminal")
	}
}

func TestCompleteQueuedTaskLeavesNoGhost(t *testing.T) {
	s, _ := newTestScheduler(Config{})
	a, b := taskAt(1, 1), taskAt(2, 2)
	s.Add(a, 1)
	s.Add(b, 2)

	if !s.Complete(b.ID) {
		t.Fatalf("queued tasks are active and completable")
	}
	got, ok := s.Next()
	if !ok || got.ID != a.ID {
		t.Fatalf("expected %s got %s", a.ID, got.ID)
	}
	if _, ok := s.Next(); ok {
		t.Fatalf("completed task must not resurface from the queue")
	}
}

func TestCancel(t *testing.T) {
	s, _ := newTestScheduler(Config{})
	a, b := taskAt(1, 1), taskAt(2, 2)
	s.Add(a, 1)
	s.Add(b, 2)

	if s.Cancel(uuid.New()) {
		t.Fatalf("canceling an unknown task should fail")
	}
	if !s.Cancel(a.ID) {
		t.Fatalf("canceling a queued task should succeed")
	}
	got, ok := s.Next()
	if !ok || got.ID != b.ID {
		t.Fatalf("canceled task resurfaced, got %s", got.ID)
	}
	if !s.Cancel(b.ID) {
		t.Fatalf("canceling the dispatched task should succeed")
	}
	if s.Complete(b.ID) {
		t.Fatalf("canceled tasks are terminal")
	}
	if st := s.Stats(); st.CanceledCount != 2 {
		t.Fatalf("expected 2 canceled got %d", st.CanceledCount)
	}
}

func TestReprioritizeResetsArrival(t *testing.T) {
	s, clk := newTestScheduler(Config{})
	a, b := taskAt(1, 1), taskAt(2, 2)

	s.Add(a, 1)
	clk.advance(time.Second)
	s.Add(b, 1)
	clk.advance(time.Second)

	// Same priority, but the fresh stamp moves a behind b.
	if !s.Reprioritize(a.ID, 1) {
		t.Fatalf("reprioritize should succeed")
	}
	first, _ := s.Next()
	second, _ := s.Next()
	if first.ID != b.ID || second.ID != a.ID {
		t.Fatalf("expected order b,a got %s,%s", first.ID, second.ID)
	}
}

func TestReprioritizeRequeuesDispatchedTask(t *testing.T) {
	s, _ := newTestScheduler(Config{})
	task := taskAt(1, 1)
	s.Add(task, 1)

	if _, ok := s.Next(); !ok {
		t.Fatalf("expected the task")
	}
	if !s.Reprioritize(task.ID, 3) {
		t.Fatalf("reprioritize of a dispatched task should succeed")
	}
	got, ok := s.Next()
	if !ok || got.ID != task.ID {
		t.Fatalf("reprioritized task should be queued again")
	}
}

func TestReplanPrefersCloserTask(t *testing.T) {
	s, clk := newTestScheduler(Config{})
	far, near := taskAt(10, 10), taskAt(1, 1)

	s.Add(far, 1)
	clk.advance(time.Second)
	s.Add(near, 1)

	// FIFO would dispatch far first; replanning with the robot on top of
	// near must rank near first among equal priorities.
	s.Replan(model.Point{X: 1, Y: 1})
	got, ok := s.Next()
	if !ok || got.ID != near.ID {
		t.Fatalf("expected the zero-distance task first, got %s", got.ID)
	}
	if got, _ := s.Next(); got.ID != far.ID {
		t.Fatalf("expected the far task second")
	}
}

func TestStatsPending(t *testing.T) {
	s, _ := newTestScheduler(Config{})
	s.Add(taskAt(1, 1), 1)
	s.Add(taskAt(2, 2), 1)

	st := s.Stats()
	if st.PendingCount != 2 || st.CompletedCount != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if got := len(s.Active()); got != 2 {
		t.Fatalf("expected 2 active got %d", got)
	}
}
