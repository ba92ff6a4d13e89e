package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/merge"
)

// WriteJSONL writes one JSON object per row.
func WriteJSONL(w io.Writer, rows []merge.Row) error {
	enc := json.NewEncoder(w)
	for i, r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
	}
	return nil
}
