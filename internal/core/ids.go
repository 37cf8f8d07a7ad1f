package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ID identifies roster entries, line items, sponsorships and transactions.
// The zero value means "no reference" and encodes as "".
type ID int64

// NoID is the empty reference.
const NoID ID = 0

func (id ID) IsZero() bool {
	return id == NoID
}

func (id ID) String() string {
	if id == NoID {
		return ""
	}
	return strconv.FormatInt(int64(id), 10)
}

// ParseID accepts decimal integers, including float spellings of integers
// such as "1718000000000.0". Anything else yields NoID.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoID
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return NoID
	}
	return ID(int64(f))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = NoID
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*id = NoID
			return nil
		}
		*id = ParseID(s)
		return nil
	}
	*id = ParseID(string(data))
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == NoID {
		return []byte(`""`), nil
	}
	return []byte(strconv.FormatInt(int64(id), 10)), nil
}

// IDGenerator hands out millisecond timestamps, bumped so that every id is
// strictly greater than the previous one.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Observe makes sure future ids are greater than id.
func (g *IDGenerator) Observe(id ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int64(id) > g.last {
		g.last = int64(id)
	}
}

func (g *IDGenerator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.now().UnixMilli()
	if v <= g.last {
		v = g.last + 1
	}
	g.last = v
	return ID(v)
}
