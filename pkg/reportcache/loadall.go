package reportcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// LoadAll loads both report families concurrently and returns the combined
// error of whichever failed.
func (e *Engine) LoadAll(ctx context.Context, resourceKind string) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)

	for _, clusterLevel := range []bool{true, false} {
		wg.Add(1)
		go func(clusterLevel bool) {
			defer wg.Done()
			if _, err := e.GetReports(ctx, clusterLevel, resourceKind); err != nil {
				family := "namespaced"
				if clusterLevel {
					family = "cluster-level"
				}
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("failed to load %s reports: %w", family, err))
				mu.Unlock()
			}
		}(clusterLevel)
	}
	wg.Wait()

	return result.ErrorOrNil()
}
