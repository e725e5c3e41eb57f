package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusdeck/internal/store"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(TopicTaskChanged, func(e Event) {
		got = append(got, e)
	})

	ev := TaskChanged{Reason: ReasonAdded, Task: store.Task{ID: 1, Text: "hello"}}
	bus.Publish(ev)

	require.Len(t, got, 1)
	tc, ok := got[0].(TaskChanged)
	require.True(t, ok)
	assert.Equal(t, ReasonAdded, tc.Reason)
	assert.Equal(t, "hello", tc.Task.Text)
}

func TestPublishIsTopicScoped(t *testing.T) {
	bus := NewBus()

	taskCalls, deadlineCalls := 0, 0
	bus.Subscribe(TopicTaskChanged, func(Event) { taskCalls++ })
	bus.Subscribe(TopicDeadlineChanged, func(Event) { deadlineCalls++ })

	bus.Publish(TaskChanged{Reason: ReasonAdded})

	assert.Equal(t, 1, taskCalls)
	assert.Equal(t, 0, deadlineCalls, "other topics must not fire")
}

func TestMultipleSubscribersInOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(TopicFeedUpdated, func(Event) { order = append(order, "first") })
	bus.Subscribe(TopicFeedUpdated, func(Event) { order = append(order, "second") })

	bus.Publish(FeedUpdated{})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	unsub := bus.Subscribe(TopicSessionCompleted, func(Event) { calls++ })

	bus.Publish(SessionCompleted{})
	unsub()
	bus.Publish(SessionCompleted{})

	assert.Equal(t, 1, calls, "unsubscribed listener must not fire again")
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()

	unsub := bus.Subscribe(TopicSessionCompleted, func(Event) {})
	unsub()
	assert.NotPanics(t, unsub)
}

func TestUnsubscribeOnlyRemovesOwn(t *testing.T) {
	bus := NewBus()

	aCalls, bCalls := 0, 0
	unsubA := bus.Subscribe(TopicTaskChanged, func(Event) { aCalls++ })
	bus.Subscribe(TopicTaskChanged, func(Event) { bCalls++ })

	unsubA()
	bus.Publish(TaskChanged{})

	assert.Equal(t, 0, aCalls)
	assert.Equal(t, 1, bCalls)
}

func TestEventTopics(t *testing.T) {
	assert.Equal(t, TopicSessionCompleted, SessionCompleted{}.Topic())
	assert.Equal(t, TopicTaskChanged, TaskChanged{}.Topic())
	assert.Equal(t, TopicDeadlineChanged, DeadlineChanged{}.Topic())
	assert.Equal(t, TopicReflectionAdded, ReflectionAdded{}.Topic())
	assert.Equal(t, TopicFeedUpdated, FeedUpdated{}.Topic())
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TopicFeedUpdated, func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Publish(FeedUpdated{})
		}()
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(TopicSessionCompleted, func(Event) {})
			unsub()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, calls)
}

// Publishing from inside a handler must not deadlock; the engine publishes
// SessionCompleted and a listener may react by publishing FeedUpdated.
func TestPublishFromHandler(t *testing.T) {
	bus := NewBus()

	feedCalls := 0
	bus.Subscribe(TopicFeedUpdated, func(Event) { feedCalls++ })
	bus.Subscribe(TopicSessionCompleted, func(Event) {
		bus.Publish(FeedUpdated{})
	})

	bus.Publish(SessionCompleted{})
	assert.Equal(t, 1, feedCalls)
}
