package workerpool

import (
	"context"
	"sync"
)

// Pool is a reusable bounded worker pool.
// ⭐ SSOT: 배치 동시성은 이 패키지로만 (종목별 goroutine 직접 생성 금지)
//
// 모든 작업은 시작 시점에 한꺼번에 제출되고, 결과는 완료 순서대로 수집된다.
// 취소는 작업과 작업 사이에서만 확인한다 (진행 중인 작업은 끝까지 수행).
type Pool struct {
	workers int
}

// New creates a pool with the given concurrency (minimum 1)
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size
func (p *Pool) Workers() int { return p.workers }

// Progress is called once per completed task from a single goroutine
type Progress[R any] func(done, total int, result R)

// Map runs fn over items and returns results in completion order.
// 취소되면 지금까지 완료된 결과와 ctx.Err() 를 함께 반환한다.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) R, progress Progress[R]) ([]R, error) {
	total := len(items)
	results := make([]R, 0, total)
	if total == 0 {
		return results, ctx.Err()
	}

	itemCh := make(chan T, total)
	resultCh := make(chan R, total)

	for _, item := range items {
		itemCh <- item
	}
	close(itemCh)

	workers := p.workers
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				resultCh <- fn(ctx, item)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		results = append(results, r)
		if progress != nil {
			progress(len(results), total, r)
		}
	}

	if len(results) < total {
		return results, ctx.Err()
	}
	return results, nil
}
