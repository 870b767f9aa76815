package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zat/initiative/internal/models"
)

func TestHolderSerializesApply(t *testing.T) {
	h := newHarness(t)
	hold := NewHolder(seed(t, h.store))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := hold.Apply(func(st models.AppState) (models.AppState, error) {
				return h.store.AddCourse(st, models.CourseInput{Name: fmt.Sprintf("course %d", i)})
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, hold.Snapshot().Courses, 21)
}

func TestHolderKeepsStateOnError(t *testing.T) {
	h := newHarness(t)
	hold := NewHolder(seed(t, h.store))
	before := hold.Snapshot()

	_, err := hold.Apply(func(st models.AppState) (models.AppState, error) {
		return h.store.DeleteGroup(st, "missing")
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, hold.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	hold := NewHolder(models.AppState{Groups: []models.Group{{ID: "g", MaxCapacity: models.IntPtr(3)}}})

	snap := hold.Snapshot()
	*snap.Groups[0].MaxCapacity = 99

	assert.Equal(t, 3, *hold.Snapshot().Groups[0].MaxCapacity)
}
