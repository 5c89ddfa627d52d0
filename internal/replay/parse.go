package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"hindsight/internal/common"
	"hindsight/internal/money"
)

// NewCSVTickParser returns a TickParser reading rows of
// symbol,bid,ask,timestamp (RFC3339) from a file, rounding bid/ask to
// scale places. No third-party CSV/columnar library appears in the
// retrieved corpus for tick-file ingestion, so this stays on
// encoding/csv, same as the rollover rate table (internal/collab/rollover.go).
func NewCSVTickParser(scale int32) TickParser {
	return func(path string) ([]common.Tick, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("replay: open %s: %w", path, err)
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = 4

		var ticks []common.Tick
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("replay: read %s: %w", path, err)
			}

			ts, err := time.Parse(time.RFC3339Nano, record[3])
			if err != nil {
				continue // header row or malformed line, skip
			}
			bid, err := money.Parse(record[1], scale)
			if err != nil {
				return nil, fmt.Errorf("replay: parse bid in %s: %w", path, err)
			}
			ask, err := money.Parse(record[2], scale)
			if err != nil {
				return nil, fmt.Errorf("replay: parse ask in %s: %w", path, err)
			}
			ticks = append(ticks, common.Tick{
				Symbol:    record[0],
				Bid:       bid,
				Ask:       ask,
				Timestamp: ts,
			})
		}
		return ticks, nil
	}
}
