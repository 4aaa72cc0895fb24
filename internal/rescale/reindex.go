package rescale

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/series"
)

// TimeLookup resolves a key to its display timestamp.
type TimeLookup interface {
	TimeOf(key string) (time.Time, bool)
}

// Reindex re-attaches display timestamps from lookup to every point of s,
// keeping order and values.
func Reindex(s *series.Series, lookup TimeLookup) (*series.Series, error) {
	out := make([]model.Point, s.Len())
	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		ts, ok := lookup.TimeOf(p.Key)
		if !ok {
			return nil, fmt.Errorf("%w: timestamp for %q", ErrMissingAnchor, p.Key)
		}
		p.Time = ts
		out[i] = p
	}
	return series.New(s.Name, out), nil
}
