// Package settle provides a settle-all combinator for fanning out to
// independent sources: every task runs concurrently, the call waits for
// all of them, and each task's failure is captured in its own tagged
// result instead of failing the batch. Partial success is the normal
// case when aggregating heterogeneous upstreams.
package settle

import (
	"context"
	"sync"
)

// Task is one unit of work tagged with the source it represents.
type Task[T any] struct {
	Source string
	Run    func(ctx context.Context) (T, error)
}

// Result is the tagged outcome of one task: Ok carries a value, Err a
// reason, never both.
type Result[T any] struct {
	Source string
	Value  T
	Err    error
}

// Ok reports whether the task succeeded.
func (r Result[T]) Ok() bool {
	return r.Err == nil
}

// All runs every task concurrently and returns their results in task
// order once all have finished. It never returns early: a slow or
// failing source does not suppress the others' results.
func All[T any](ctx context.Context, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			value, err := task.Run(ctx)
			results[i] = Result[T]{Source: task.Source, Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()

	return results
}
