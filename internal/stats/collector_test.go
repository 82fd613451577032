package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.AddDirsListed(3)
	c.AddArchived(2)
	c.AddArchiveFailed(1)
	c.AddBytesArchived(1024)
	c.AddDeleted(1)

	snap := c.Snapshot()
	assert.Equal(t, int64(3), snap.DirsListed)
	assert.Equal(t, int64(2), snap.Archived)
	assert.Equal(t, int64(1), snap.ArchiveFailed)
	assert.Equal(t, int64(1024), snap.BytesArchived)
	assert.Equal(t, int64(1), snap.Deleted)
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddArchived(1)
				c.AddBytesArchived(10)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(1000), snap.Archived)
	assert.Equal(t, int64(10000), snap.BytesArchived)
}

func TestSnapshotString(t *testing.T) {
	c := NewCollector()
	c.AddArchived(1)
	assert.Contains(t, c.Snapshot().String(), "archived=1")
}
