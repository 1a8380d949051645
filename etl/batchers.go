package etl

// Batcher groups transformed records into Load batches. Implement it on the
// job when batches must respect a limit other than a plain record count, such
// as the number of bind parameters a single INSERT may carry.
//
// Batch must keep the relative order of items; the engine relies on it to
// load records in extract order.
type Batcher[T any] interface {
	Batch(items []T) [][]T
}

// BatcherFunc adapts a plain function to the [Batcher] interface.
type BatcherFunc[T any] func(items []T) [][]T

func (f BatcherFunc[T]) Batch(items []T) [][]T {
	return f(items)
}

// SizeBatcher creates batches with at most maxSize items each.
func SizeBatcher[T any](maxSize int) Batcher[T] {
	return BatcherFunc[T](func(items []T) [][]T {
		if len(items) == 0 || maxSize <= 0 {
			return nil
		}
		return chunk(items, maxSize)
	})
}

// WeightedBatcher creates batches whose summed weight does not exceed
// maxWeight. An item heavier than maxWeight gets a batch of its own rather
// than being dropped.
//
// Example:
//
//	// one bind parameter per column, PostgreSQL accepts 65535 per statement
//	batcher := etl.WeightedBatcher(func([]any) int { return len(columns) }, 65535)
func WeightedBatcher[T any](weigher func(T) int, maxWeight int) Batcher[T] {
	return BatcherFunc[T](func(items []T) [][]T {
		if len(items) == 0 || maxWeight <= 0 {
			return nil
		}

		var batches [][]T
		var current []T
		weight := 0

		for _, item := range items {
			w := weigher(item)
			if len(current) > 0 && weight+w > maxWeight {
				batches = append(batches, current)
				current = nil
				weight = 0
			}
			current = append(current, item)
			weight += w
		}

		if len(current) > 0 {
			batches = append(batches, current)
		}
		return batches
	})
}

// chunk splits a slice into sub-slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}

	result := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		result = append(result, items[i:min(i+size, len(items))])
	}
	return result
}
