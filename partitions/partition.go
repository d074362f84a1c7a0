package partitions

import (
	"fmt"
	"sync"
)

// Partition is a set of matrix rows that one worker computes together
type Partition struct {
	// Unique identifier for this partition
	ID int

	// Row membership, ascending
	Rows    []int // Global row indices in this partition
	NumRows int   // Number of rows owned
	MaxRows int   // Padded size, KpartMax of the layout

	// Work is the summed row weight, the nonzero count for sparse rows
	Work int
}

// PartitionLayout manages the decomposition of a row space
type PartitionLayout struct {
	// All partitions of the row space
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(NumRows) across all partitions
	TotalRows     int // Sum of all rows across partitions
	NumPartitions int // Total number of partitions

	// Row to partition mapping
	RToP []int // Length TotalRows: row i belongs to partition RToP[i]
}

// GetPartition returns the partition containing row i
func (pl *PartitionLayout) GetPartition(row int) int {
	if row < 0 || row >= len(pl.RToP) {
		return -1
	}
	return pl.RToP[row]
}

// ValidateLayout checks partition consistency: every row is owned exactly
// once and the padded sizes agree with KpartMax
func (pl *PartitionLayout) ValidateLayout() error {
	if len(pl.Partitions) != pl.NumPartitions {
		return fmt.Errorf("have %d partitions, NumPartitions is %d",
			len(pl.Partitions), pl.NumPartitions)
	}
	actualMax := 0
	seen := make([]bool, pl.TotalRows)
	for _, p := range pl.Partitions {
		if p.NumRows != len(p.Rows) {
			return fmt.Errorf("partition %d: NumRows %d != len(Rows) %d",
				p.ID, p.NumRows, len(p.Rows))
		}
		if p.NumRows > actualMax {
			actualMax = p.NumRows
		}
		if p.MaxRows != pl.KpartMax {
			return fmt.Errorf("partition %d: MaxRows %d != KpartMax %d",
				p.ID, p.MaxRows, pl.KpartMax)
		}
		for _, r := range p.Rows {
			if r < 0 || r >= pl.TotalRows {
				return fmt.Errorf("partition %d: row %d out of range", p.ID, r)
			}
			if seen[r] {
				return fmt.Errorf("partition %d: row %d assigned twice", p.ID, r)
			}
			if pl.RToP[r] != p.ID {
				return fmt.Errorf("row %d: RToP %d != partition %d", r, pl.RToP[r], p.ID)
			}
			seen[r] = true
		}
	}
	for r, ok := range seen {
		if !ok {
			return fmt.Errorf("row %d is not assigned", r)
		}
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("computed KpartMax %d != stored KpartMax %d",
			actualMax, pl.KpartMax)
	}
	return nil
}

// Run calls fn once per non-empty partition, each on its own goroutine, and
// returns when all calls are done. fn must only write state owned by the
// rows of its partition.
func (pl *PartitionLayout) Run(fn func(p Partition)) {
	var wg sync.WaitGroup
	for _, p := range pl.Partitions {
		if p.NumRows == 0 {
			continue
		}
		wg.Add(1)
		go func(p Partition) {
			defer wg.Done()
			fn(p)
		}(p)
	}
	wg.Wait()
}

// PartitionStatistics computes load balance metrics over the partition work
func (pl *PartitionLayout) PartitionStatistics() PartitionStats {
	stats := PartitionStats{
		NumPartitions: pl.NumPartitions,
		MinRows:       pl.TotalRows,
	}
	totalWork := 0
	for _, p := range pl.Partitions {
		if p.NumRows < stats.MinRows {
			stats.MinRows = p.NumRows
		}
		if p.NumRows > stats.MaxRows {
			stats.MaxRows = p.NumRows
		}
		if p.Work > stats.MaxWork {
			stats.MaxWork = p.Work
		}
		totalWork += p.Work
	}
	if pl.NumPartitions > 0 {
		stats.AvgWork = float64(totalWork) / float64(pl.NumPartitions)
	}
	if stats.AvgWork > 0 {
		stats.Imbalance = float64(stats.MaxWork) / stats.AvgWork
	}
	return stats
}

type PartitionStats struct {
	NumPartitions int
	MinRows       int
	MaxRows       int
	MaxWork       int
	AvgWork       float64
	Imbalance     float64 // MaxWork / AvgWork
}
