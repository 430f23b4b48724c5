package matching

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
)

const defaultPartitionSize = 256

// Ranker ranks large directories by scoring partitions on a worker pool and
// merging the sorted partial lists. Its output is identical to Rank.
type Ranker struct {
	mode          ScoringMode
	pool          *ants.Pool
	partitionSize int
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker) error

// WithWorkers sets the worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(size int) RankerOption {
	return func(r *Ranker) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithPartitionSize sets how many users one pool task scores. Directories not
// larger than one partition are ranked inline.
func WithPartitionSize(size int) RankerOption {
	return func(r *Ranker) error {
		if size < 1 {
			size = defaultPartitionSize
		}
		r.partitionSize = size
		return nil
	}
}

// NewRanker creates a Ranker for the given mode.
func NewRanker(mode ScoringMode, opts ...RankerOption) (*Ranker, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScoringMode, mode)
	}

	r := &Ranker{
		mode:          mode,
		partitionSize: defaultPartitionSize,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}

	if r.pool == nil {
		size := runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return nil, err
		}
		r.pool = pool
	}

	return r, nil
}

func (r *Ranker) Mode() ScoringMode { return r.mode }

// Release frees the worker pool.
func (r *Ranker) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Rank ranks dir against tokens.
func (r *Ranker) Rank(tokens TokenSet, dir Directory) ([]MatchResult, error) {
	if len(dir) <= r.partitionSize || tokens.Len() == 0 {
		return Rank(tokens, dir, r.mode)
	}

	names := make([]string, 0, len(dir))
	for name := range dir {
		names = append(names, name)
	}
	sort.Strings(names)

	var partitions [][]string
	for start := 0; start < len(names); start += r.partitionSize {
		end := min(start+r.partitionSize, len(names))
		partitions = append(partitions, names[start:end])
	}

	partial := make([][]MatchResult, len(partitions))
	var wg sync.WaitGroup
	for i, part := range partitions {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			partial[i] = r.rankPartition(tokens, dir, part)
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit partition %d: %w", i, err)
		}
	}
	wg.Wait()

	return mergeSorted(partial), nil
}

func (r *Ranker) rankPartition(tokens TokenSet, dir Directory, names []string) []MatchResult {
	results := make([]MatchResult, 0)
	for _, name := range names {
		if result, ok := score(tokens, name, dir[name], r.mode); ok {
			results = append(results, result)
		}
	}
	sortResults(results)
	return results
}

// mergeSorted merges lists that are each sorted by less.
func mergeSorted(lists [][]MatchResult) []MatchResult {
	for len(lists) > 1 {
		var next [][]MatchResult
		for i := 0; i < len(lists); i += 2 {
			if i+1 == len(lists) {
				next = append(next, lists[i])
				continue
			}
			next = append(next, mergeTwo(lists[i], lists[i+1]))
		}
		lists = next
	}

	if len(lists) == 0 || lists[0] == nil {
		return make([]MatchResult, 0)
	}
	return lists[0]
}

func mergeTwo(a, b []MatchResult) []MatchResult {
	out := make([]MatchResult, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if less(b[j], a[i]) {
			out = append(out, b[j])
			j++
			continue
		}
		out = append(out, a[i])
		i++
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
