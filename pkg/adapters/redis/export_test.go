package redis

import "time"

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}
