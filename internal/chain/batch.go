package chain

import "fmt"

// MaxMultiGetObjects is the node limit for sui_multiGetObjects.
const MaxMultiGetObjects = 50

// SplitBatches splits ids into consecutive batches of at most size.
func SplitBatches(ids []string, size int) ([][]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches, nil
}
