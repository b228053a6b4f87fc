package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt64Array_ConcurrentScans(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var ids []int64
			if assert.NoError(t, int64Array(&ids).Scan("{1,2,3}")) {
				assert.Equal(t, []int64{1, 2, 3}, ids)
			}
		}()
	}
	wg.Wait()
}

func TestInt64Array_Null(t *testing.T) {
	ids := []int64{9}
	assert.NoError(t, int64Array(&ids).Scan(nil))
	assert.Empty(t, nonNilInt64s(ids))
}
