package preference

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/stacktools/stableset/pkg/errors"
)

// ReadTable parses a rectangular preference table from r.
//
// Each column is one voter's ranking, each row one rank position (row 1 =
// most preferred). When hasHeader is true the first row holds voter names
// and is skipped. Trailing empty cells at the bottom of a column are
// ignored, so shorter columns are tolerated by the parser and reported by
// profile validation instead (as an omitted alternative, with the voter
// index). Cell values are whitespace-trimmed.
func ReadTable(r io.Reader, hasHeader bool) (*Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse preference table")
	}
	if hasHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "preference table is empty")
	}

	voters := 0
	for _, row := range rows {
		if len(row) > voters {
			voters = len(row)
		}
	}
	if voters == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "preference table has no voter columns")
	}

	rankings := make([]Ranking, voters)
	for v := 0; v < voters; v++ {
		for _, row := range rows {
			if v >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[v])
			if cell == "" {
				continue
			}
			rankings[v] = append(rankings[v], cell)
		}
	}

	return FromRankings(rankings)
}

// ReadTableFile opens path and parses it with ReadTable.
func ReadTableFile(path string, hasHeader bool) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "profile file %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadTable(f, hasHeader)
}
