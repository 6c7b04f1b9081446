package store

import (
	"fmt"
	"sync"
	"testing"

	utils "github.com/minaorangina/war/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waiting(id string) Waiting {
	return Waiting{ID: id}
}

func TestQueue(t *testing.T) {
	t.Run("pairs in order of arrival", func(t *testing.T) {
		q := NewQueue()

		_, _, paired := q.Push(waiting("c1"))
		utils.AssertTrue(t, !paired)

		first, second, paired := q.Push(waiting("c2"))
		require.True(t, paired)
		utils.AssertEqual(t, first.ID, "c1")
		utils.AssertEqual(t, second.ID, "c2")

		_, _, paired = q.Push(waiting("c3"))
		utils.AssertTrue(t, !paired)
		utils.AssertEqual(t, q.Len(), 1)

		first, second, paired = q.Push(waiting("c4"))
		require.True(t, paired)
		utils.AssertEqual(t, first.ID, "c3")
		utils.AssertEqual(t, second.ID, "c4")
		utils.AssertEqual(t, q.Len(), 0)
	})

	t.Run("drain empties the queue", func(t *testing.T) {
		q := NewQueue()
		q.Push(waiting("lonely"))

		drained := q.Drain()
		require.Len(t, drained, 1)
		utils.AssertEqual(t, drained[0].ID, "lonely")
		utils.AssertEqual(t, q.Len(), 0)
	})

	t.Run("no connection is handed out twice under contention", func(t *testing.T) {
		q := NewQueue()
		const n = 200

		var mu sync.Mutex
		seen := map[string]int{}
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				first, second, paired := q.Push(waiting(id))
				if !paired {
					return
				}
				mu.Lock()
				seen[first.ID]++
				seen[second.ID]++
				mu.Unlock()
			}(fmt.Sprintf("c%d", i))
		}
		wg.Wait()

		assert.Len(t, seen, n)
		for id, count := range seen {
			assert.Equal(t, 1, count, "connection %s paired %d times", id, count)
		}
		assert.Equal(t, 0, q.Len())
	})
}
