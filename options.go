package featureset

import (
	"time"

	"github.com/google/uuid"
)

type options struct {
	id        string
	createdAt time.Time
}

// Option configures constructor behavior.
//
// Options exist to keep the constructor surface small: identity and
// timestamp are generated unless a caller (typically the persistence layer
// restoring a set) overrides them.
type Option func(*options)

// WithID overrides the generated identifier. Empty ids are ignored.
//
// The id is opaque to the library; it only has to be process-unique. The
// persistence layer uses it as the default file stem.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithCreatedAt overrides the generated construction timestamp. Zero times
// are ignored.
func WithCreatedAt(t time.Time) Option {
	return func(o *options) {
		if !t.IsZero() {
			o.createdAt = t
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
