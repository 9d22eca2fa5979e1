package kafkax

import (
	"encoding/json"
	"errors"
	"time"
)

const CollectDayType = "collect_day"

// CollectJob asks a worker to fetch and store one date.
type CollectJob struct {
	Type        string    `json:"type"`
	RunID       string    `json:"run_id"`
	Date        string    `json:"date"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewCollectJob(runID, date string) CollectJob {
	return CollectJob{Type: CollectDayType, RunID: runID, Date: date, RequestedAt: time.Now().UTC()}
}

func (j CollectJob) Encode() ([]byte, error) { return json.Marshal(j) }

func ParseCollectJob(b []byte) (CollectJob, error) {
	var j CollectJob
	if err := json.Unmarshal(b, &j); err != nil {
		return CollectJob{}, err
	}
	if j.Type != CollectDayType {
		return CollectJob{}, errors.New("unexpected message type " + j.Type)
	}
	if j.Date == "" {
		return CollectJob{}, errors.New("collect job without date")
	}
	return j, nil
}
