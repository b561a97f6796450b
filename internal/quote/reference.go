package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReference generates a quote reference of the form DEV-YYYYMMDD-XXXXXXXX,
// where the suffix is the uppercased first 8 hex characters of a random UUID.
// References are unique per call and sortable by issue date.
func NewReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("DEV-%s-%s", now.Format("20060102"), suffix)
}
