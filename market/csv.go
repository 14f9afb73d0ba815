package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// LoadPricesCSV reads a daily OHLCV dataset:
//
//	date,open,high,low,close,volume
//
// A header row is allowed and blank lines are skipped. Files ending in .xz
// are decompressed on the fly; .zip archives are extracted to a temp dir and
// the first .csv member is read.
func LoadPricesCSV(path string) (PriceSeries, error) {
	r, err := openDataset(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var series PriceSeries
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) < 6 || isHeader(row[0]) {
			continue
		}

		var bar Bar
		if bar.Date, err = ParseDate(row[0]); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if bar.Open, err = decimal.NewFromString(row[1]); err != nil {
			return nil, fmt.Errorf("%s: bad open on %s: %w", path, bar.Date, err)
		}
		if bar.High, err = decimal.NewFromString(row[2]); err != nil {
			return nil, fmt.Errorf("%s: bad high on %s: %w", path, bar.Date, err)
		}
		if bar.Low, err = decimal.NewFromString(row[3]); err != nil {
			return nil, fmt.Errorf("%s: bad low on %s: %w", path, bar.Date, err)
		}
		if bar.Close, err = decimal.NewFromString(row[4]); err != nil {
			return nil, fmt.Errorf("%s: bad close on %s: %w", path, bar.Date, err)
		}
		if bar.Volume, err = strconv.ParseInt(row[5], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: bad volume on %s: %w", path, bar.Date, err)
		}
		series = append(series, bar)
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// LoadDividendsCSV reads per-share dividend events as `date,amount` rows.
// The same compression handling as LoadPricesCSV applies. An empty file is a
// valid, empty series.
func LoadDividendsCSV(path string) (DividendSeries, error) {
	r, err := openDataset(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var series DividendSeries
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) < 2 || isHeader(row[0]) {
			continue
		}

		var dv Dividend
		if dv.ExDate, err = ParseDate(row[0]); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if dv.Amount, err = decimal.NewFromString(row[1]); err != nil {
			return nil, fmt.Errorf("%s: bad amount on %s: %w", path, dv.ExDate, err)
		}
		series = append(series, dv)
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

func isHeader(field string) bool {
	f := strings.TrimSpace(strings.ToLower(field))
	return f == "" || f == "date" || f == "ex_date"
}

type dataset struct {
	io.Reader
	close func() error
}

func (d dataset) Close() error { return d.close() }

// openDataset opens a CSV file, transparently handling .xz compression and
// .zip archives.
func openDataset(path string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open xz %s: %w", path, err)
		}
		return dataset{Reader: r, close: f.Close}, nil

	case ".zip":
		dir, err := os.MkdirTemp("", "dripsim-zip-")
		if err != nil {
			return nil, err
		}
		if err := unzip.Extract(path, dir); err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		member, err := firstCSV(dir)
		if err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		f, err := os.Open(member)
		if err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
		return dataset{Reader: f, close: func() error {
			err := f.Close()
			os.RemoveAll(dir)
			return err
		}}, nil

	default:
		return os.Open(path)
	}
}

func firstCSV(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found == "" && !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".csv") {
			found = p
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("archive contains no .csv member")
	}
	return found, nil
}
