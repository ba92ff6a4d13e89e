package storage

import (
	"fmt"
	"os"
	"sort"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
)

// WriteRecords writes the novelty records of one focal year to dir,
// replacing the year's previous results.
func WriteRecords(dir string, focalYear int, recs []novelty.Record) error {
	for _, r := range recs {
		if r.FocalYear != focalYear {
			return fmt.Errorf("record %d has focal year %d, not %d", r.DocumentID, r.FocalYear, focalYear)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	return writeJSONL(YearFile(dir, focalYear), "result", recs)
}

// SaveRecordsByYear writes recs grouped by focal year.
func SaveRecordsByYear(dir string, recs []novelty.Record) error {
	byYear := make(map[int][]novelty.Record)
	for _, r := range recs {
		byYear[r.FocalYear] = append(byYear[r.FocalYear], r)
	}
	for year, rs := range byYear {
		if err := WriteRecords(dir, year, rs); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecords reads every stored result, ordered by (focal year, document).
func ReadRecords(dir string) ([]novelty.Record, error) {
	years, err := Years(dir)
	if err != nil {
		return nil, err
	}
	var all []novelty.Record
	for _, y := range years {
		recs, err := readJSONL[novelty.Record](YearFile(dir, y), "results")
		if err != nil {
			return nil, fmt.Errorf("focal year %d: %w", y, err)
		}
		all = append(all, recs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].FocalYear != all[j].FocalYear {
			return all[i].FocalYear < all[j].FocalYear
		}
		return all[i].DocumentID < all[j].DocumentID
	})
	return all, nil
}
