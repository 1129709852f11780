package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/warebotics/warebot/core/tasklog"
)

// WriteJSON writes the task log records to w in JSON format.
func WriteJSON(w io.Writer, recs []tasklog.Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteCSV writes the task log records to w in CSV format with a header row.
func WriteCSV(w io.Writer, recs []tasklog.Record) error {
	cw := csv.NewWriter(w)
	header := []string{
		"timestamp", "task_id", "type", "outcome", "x", "y",
		"priority", "wait_s", "service_s", "waypoints", "path_m",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.Timestamp.Format(time.RFC3339),
			r.TaskID,
			r.Type,
			string(r.Outcome),
			strconv.FormatFloat(r.Position.X, 'f', -1, 64),
			strconv.FormatFloat(r.Position.Y, 'f', -1, 64),
			strconv.Itoa(r.Priority),
			strconv.FormatFloat(r.WaitSeconds, 'f', -1, 64),
			strconv.FormatFloat(r.ServiceSeconds, 'f', -1, 64),
			strconv.Itoa(r.Waypoints),
			strconv.FormatFloat(r.PathMeters, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
