package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/warebotics/warebot/core/logger"
	"github.com/warebotics/warebot/core/model"
)

// record is the scheduler-owned state of one active task. index is the heap
// slot while queued and -1 once dispatched, so cancellation can remove a
// queued record in O(log n) without rebuilding the queue.
type record struct {
	task      model.Task
	priority  int
	effective float64
	arrival   time.Time
	dispatch  time.Time
	seq       uint64
	index     int
}

// taskHeap orders records by (effective priority, arrival, admission seq).
// The sequence number makes FIFO ordering hold even for identical timestamps.
type taskHeap []*record

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].effective != h[j].effective {
		return h[i].effective < h[j].effective
	}
	if !h[i].arrival.Equal(h[j].arrival) {
		return h[i].arrival.Before(h[j].arrival)
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	rec := x.(*record)
	rec.index = len(*h)
	*h = append(*h, rec)
}

func (h *taskHeap) Pop() any {
	old := *h
	rec := old[len(old)-1]
	old[len(old)-1] = nil
	rec.index = -1
	*h = old[:len(old)-1]
	return rec
}

// Scheduler hands out tasks in priority order. A task is active from admission
// until Complete or Cancel; dispatching via Next keeps it active but frees its
// queue slot.
type Scheduler struct {
	mu  sync.Mutex
	cfg Config
	log logger.Logger
	now func() time.Time

	queue   taskHeap
	active  map[uuid.UUID]*record
	current uuid.UUID
	seq     uint64
	started time.Time

	completed int
	canceled  int
	waits     []float64
	services  []float64
}

// New returns an empty scheduler. Zero config fields fall back to defaults.
func New(cfg Config, log logger.Logger) *Scheduler {
	cfg.SetDefaults()
	s := &Scheduler{
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		active: make(map[uuid.UUID]*record),
	}
	s.started = s.now()
	return s
}

// Add admits a task with the given priority. Lower priorities dispatch first.
// It returns false when the queue is full or the task ID is already active.
func (s *Scheduler) Add(task model.Task, priority int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(task, priority)
}

func (s *Scheduler) add(task model.Task, priority int) bool {
	if len(s.queue) >= s.cfg.MaxQueueSize {
		s.log.Warnf("task %s rejected: queue full at %d", task.ID, len(s.queue))
		return false
	}
	if _, dup := s.active[task.ID]; dup {
		s.log.Warnf("task %s rejected: already active", task.ID)
		return false
	}
	s.seq++
	rec := &record{
		task:      task,
		priority:  priority,
		effective: float64(priority),
		arrival:   s.now(),
		seq:       s.seq,
	}
	s.active[task.ID] = rec
	heap.Push(&s.queue, rec)
	s.log.Debugw("task admitted", map[string]any{
		"task":     task.ID.String(),
		"type":     task.Type.String(),
		"priority": priority,
	})
	return true
}

// AddBatch admits tasks in order and returns how many were accepted. Tasks
// without a matching priority entry use DefaultPriority.
func (s *Scheduler) AddBatch(tasks []model.Task, priorities []int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	admitted := 0
	for i, task := range tasks {
		p := model.DefaultPriority
		if i < len(priorities) {
			p = priorities[i]
		}
		if s.add(task, p) {
			admitted++
		}
	}
	return admitted
}

// Next pops the highest-priority task. The second result is false when the
// queue is empty, in which case the current task reference is cleared.
func (s *Scheduler) Next() (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		s.current = uuid.Nil
		return model.Task{}, false
	}
	rec := heap.Pop(&s.queue).(*record)
	rec.dispatch = s.now()
	s.current = rec.task.ID
	return rec.task, true
}

// Complete marks an active task as done and records its wait and service
// durations. Unknown or already terminal tasks return false without mutation.
func (s *Scheduler) Complete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.active[id]
	if !ok {
		return false
	}
	if rec.index >= 0 {
		// Completed straight out of the queue; no ghost entry may remain.
		heap.Remove(&s.queue, rec.index)
	}
	delete(s.active, id)
	if s.current == id {
		s.current = uuid.Nil
	}
	now := s.now()
	s.waits = append(s.waits, now.Sub(rec.arrival).Seconds())
	if rec.dispatch.IsZero() {
		s.services = append(s.services, 0)
	} else {
		s.services = append(s.services, now.Sub(rec.dispatch).Seconds())
	}
	s.completed++
	return true
}

// Cancel removes an active task. It works for queued and dispatched tasks and
// returns false for unknown or terminal ones.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.active[id]
	if !ok {
		return false
	}
	if rec.index >= 0 {
		heap.Remove(&s.queue, rec.index)
	}
	delete(s.active, id)
	if s.current == id {
		s.current = uuid.Nil
	}
	s.canceled++
	return true
}

// Reprioritize re-queues an active task under a new priority with a fresh
// arrival stamp. The task loses its accumulated queue age on purpose: its wait
// accounting restarts. A dispatched task goes back into the queue.
func (s *Scheduler) Reprioritize(id uuid.UUID, priority int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.active[id]
	if !ok {
		return false
	}
	if rec.index >= 0 {
		heap.Remove(&s.queue, rec.index)
	}
	if s.current == id {
		s.current = uuid.Nil
	}
	s.seq++
	rec.priority = priority
	rec.effective = float64(priority)
	rec.arrival = s.now()
	rec.dispatch = time.Time{}
	rec.seq = s.seq
	heap.Push(&s.queue, rec)
	return true
}

// Replan re-weights every queued task by its distance to the robot: closer
// tasks of equal priority dispatch first. Weights hold until the next Replan
// or Reprioritize touches them.
func (s *Scheduler) Replan(robot model.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.queue {
		rec.effective = rec.task.Position.Dist(robot) * float64(rec.priority) * s.cfg.ReplanDistanceWeight
	}
	heap.Init(&s.queue)
}

// Current returns the task most recently handed out by Next, if it is still
// active.
func (s *Scheduler) Current() (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.active[s.current]
	if !ok {
		return model.Task{}, false
	}
	return rec.task, true
}

// Active returns a copy of all active tasks, queued ones first in heap order,
// then the dispatched current task.
func (s *Scheduler) Active() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]model.Task, 0, len(s.active))
	for _, rec := range s.queue {
		tasks = append(tasks, rec.task)
	}
	if rec, ok := s.active[s.current]; ok && rec.index < 0 {
		tasks = append(tasks, rec.task)
	}
	return tasks
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Statistics summarizes scheduler activity. Durations are seconds: wait is
// admission to completion, completion is dispatch to completion.
type Statistics struct {
	CompletedCount    int     `json:"completed_count"`
	PendingCount      int     `json:"pending_count"`
	CanceledCount     int     `json:"canceled_count"`
	AvgCompletionTime float64 `json:"avg_completion_time"`
	AvgWaitTime       float64 `json:"avg_wait_time"`
	Throughput        float64 `json:"throughput"`
}

// Stats returns a snapshot of the scheduler statistics.
func (s *Scheduler) Stats() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Statistics{
		CompletedCount: s.completed,
		PendingCount:   len(s.queue),
		CanceledCount:  s.canceled,
	}
	if len(s.waits) > 0 {
		st.AvgWaitTime = stat.Mean(s.waits, nil)
		st.AvgCompletionTime = stat.Mean(s.services, nil)
	}
	if elapsed := s.now().Sub(s.started).Seconds(); elapsed > 0 {
		st.Throughput = float64(s.completed) / elapsed
	}
	return st
}
