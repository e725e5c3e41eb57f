package event

import "github.com/sadopc/focusdeck/internal/store"

// SessionCompleted fires when a countdown reaches zero. It carries the new
// record and the post-increment stats snapshot so listeners can refresh
// without re-reading storage.
type SessionCompleted struct {
	Session store.Session
	Stats   store.Stats
}

func (SessionCompleted) Topic() Topic { return TopicSessionCompleted }

// TaskChanged fires on every task mutation. Reason "completed" fires exactly
// once per incomplete-to-complete toggle; toggling back is "reopened".
type TaskChanged struct {
	Reason Reason
	Task   store.Task
	Tasks  []store.Task
}

func (TaskChanged) Topic() Topic { return TopicTaskChanged }

// DeadlineChanged fires when a deadline is added or completed. Completion
// carries the removed record and the remaining list.
type DeadlineChanged struct {
	Reason    Reason
	Deadline  store.Deadline
	Deadlines []store.Deadline
}

func (DeadlineChanged) Topic() Topic { return TopicDeadlineChanged }

// ReflectionAdded carries the new entry plus the session history backing its
// snapshot fields.
type ReflectionAdded struct {
	Reflection store.Reflection
	Sessions   []store.Session
}

func (ReflectionAdded) Topic() Topic { return TopicReflectionAdded }

// FeedUpdated fires when the insights coordinator appends to the update feed,
// including from its background reminder loop.
type FeedUpdated struct {
	Update store.Update
}

func (FeedUpdated) Topic() Topic { return TopicFeedUpdated }
