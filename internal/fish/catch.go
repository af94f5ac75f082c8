package fish

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CaughtFish is one landed fish. Records are created once per successful
// catch and only ever removed by a full reset.
type CaughtFish struct {
	ID       string    `json:"id"`
	FishID   string    `json:"fishId"`
	CaughtAt time.Time `json:"caughtAt"`
}

// NewCatchID derives a record id from the capture time plus a random salt.
func NewCatchID(at time.Time) string {
	salt := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + salt
}
