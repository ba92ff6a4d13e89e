package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

const yearFileExt = ".jsonl"

// YearFile returns the path of a year's document file inside dir.
func YearFile(dir string, year int) string {
	return filepath.Join(dir, strconv.Itoa(year)+yearFileExt)
}

// WriteYear writes the documents of one publication year, replacing the
// year's file. Every document must belong to year.
func WriteYear(dir string, year int, docs []document.Document) error {
	for _, d := range docs {
		if d.Year != year {
			return fmt.Errorf("document %d has year %d, not %d", d.ID, d.Year, year)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating docs directory: %w", err)
	}
	return writeJSONL(YearFile(dir, year), "document", docs)
}

// ReadYear reads one year's documents. A year without a file has no documents.
func ReadYear(dir string, year int) ([]document.Document, error) {
	docs, err := readJSONL[document.Document](YearFile(dir, year), "documents")
	if err != nil {
		return nil, fmt.Errorf("year %d: %w", year, err)
	}
	return docs, nil
}

// ReadRange reads the documents of every year in [from, to].
func ReadRange(dir string, from, to int) ([]document.Document, error) {
	var all []document.Document
	for y := from; y <= to; y++ {
		docs, err := ReadYear(dir, y)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// SaveByYear groups docs by publication year and writes one file per year.
// It returns the number of documents written per year.
func SaveByYear(dir string, docs []document.Document) (map[int]int, error) {
	byYear := make(map[int][]document.Document)
	for _, d := range docs {
		byYear[d.Year] = append(byYear[d.Year], d)
	}
	counts := make(map[int]int, len(byYear))
	for year, ds := range byYear {
		if err := WriteYear(dir, year, ds); err != nil {
			return nil, err
		}
		counts[year] = len(ds)
	}
	return counts, nil
}

// Years lists the years that have a document file in dir, ascending.
func Years(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing docs directory: %w", err)
	}
	var years []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, yearFileExt) {
			continue
		}
		y, err := strconv.Atoi(strings.TrimSuffix(name, yearFileExt))
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// ReadAllDocs reads every year file in dir.
func ReadAllDocs(dir string) ([]document.Document, error) {
	years, err := Years(dir)
	if err != nil {
		return nil, err
	}
	var all []document.Document
	for _, y := range years {
		docs, err := ReadYear(dir, y)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}
