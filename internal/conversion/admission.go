package conversion

import (
	"context"
	"sync"

	"image_conversion/entity"
)

// Admission bounds how many conversions may run or wait. permits has
// one slot per worker; waiting caps the backlog in front of the permit
// pool. A zero-size backlog degenerates to reject-on-saturation.
//
// No other component touches the permit count directly; everything
// goes through Acquire and Permit.Release.
type Admission struct {
	permits chan struct{}
	waiting chan struct{}
}

func NewAdmission(workers, queueSize int) *Admission {
	return &Admission{
		permits: make(chan struct{}, workers),
		waiting: make(chan struct{}, queueSize),
	}
}

// Acquire reserves one conversion slot. When no permit is free it
// joins the bounded backlog, failing fast with ErrServiceBusy once
// that is full too. A waiter whose context ends gives its backlog slot
// back and never takes a permit.
func (a *Admission) Acquire(ctx context.Context) (*Permit, error) {
	select {
	case a.permits <- struct{}{}:
		return &Permit{pool: a}, nil
	default:
	}

	select {
	case a.waiting <- struct{}{}:
	default:
		return nil, entity.ErrServiceBusy
	}
	defer func() { <-a.waiting }()

	select {
	case a.permits <- struct{}{}:
		return &Permit{pool: a}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Available reports how many permits are free right now.
func (a *Admission) Available() int {
	return cap(a.permits) - len(a.permits)
}

// Capacity reports the configured worker count.
func (a *Admission) Capacity() int {
	return cap(a.permits)
}

// Permit is the right to run one conversion. Release is safe to call
// more than once; only the first call returns the slot.
type Permit struct {
	pool *Admission
	once sync.Once
}

func (p *Permit) Release() {
	p.once.Do(func() { <-p.pool.permits })
}
