// Package timesync supplies trusted UTC time to a clock. The chrony source
// only hands out the host's time once chronyd reports it synchronised.
package timesync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/facebookincubator/ntp/protocol/chrony"
	"golang.org/x/net/trace"
)

// DefaultAddress is chronyd's command port
const DefaultAddress = "localhost:323"

// DefaultMaxCorrection is the largest pending correction still accepted
const DefaultMaxCorrection = 100 * time.Millisecond

// leapUnsynchronised is chrony's "Not synchronised" leap status
const leapUnsynchronised = 3

var ErrNotSynchronised = errors.New("host clock not synchronised")

// Check rejects tracking data that does not describe a synchronised clock
func Check(t *chrony.ReplyTracking, maxCorrection time.Duration) error {
	if t.LeapStatus == leapUnsynchronised || t.Stratum == 0 || t.Stratum >= 16 {
		return fmt.Errorf("%w: stratum %d, leap status %d", ErrNotSynchronised, t.Stratum, t.LeapStatus)
	}
	correction := time.Duration(math.Abs(float64(t.CurrentCorrection)) * float64(time.Second))
	if maxCorrection > 0 && correction > maxCorrection {
		return fmt.Errorf("%w: correction of %v pending", ErrNotSynchronised, correction)
	}
	return nil
}

// SystemSource trusts the host clock without asking anyone
type SystemSource struct{}

func (SystemSource) Resync(ctx context.Context) (time.Time, error) {
	return time.Now().UTC(), ctx.Err()
}

// ChronySource asks chronyd for its tracking state before returning the
// host's time
type ChronySource struct {
	Address       string
	MaxCorrection time.Duration

	now    func() time.Time
	events trace.EventLog
}

// NewChronySource queries chronyd at address
func NewChronySource(address string) *ChronySource {
	return &ChronySource{
		Address:       address,
		MaxCorrection: DefaultMaxCorrection,
		now:           time.Now,
		events:        trace.NewEventLog("timesync", address),
	}
}

// Close finishes the event log
func (s *ChronySource) Close() {
	s.events.Finish()
}

// Resync returns the host's UTC time if chronyd reports it synchronised
func (s *ChronySource) Resync(ctx context.Context) (time.Time, error) {
	tracking, err := s.Tracking(ctx)
	if err != nil {
		s.events.Errorf("tracking: %v", err)
		return time.Time{}, err
	}
	if err := Check(tracking, s.MaxCorrection); err != nil {
		s.events.Errorf("%v", err)
		return time.Time{}, err
	}
	now := s.now().UTC()
	s.events.Printf("synchronised: stratum %d, offset %v, resync at %v",
		tracking.Stratum, tracking.LastOffset, now.Format(time.RFC3339Nano))
	return now, nil
}

// Tracking fetches chronyd's tracking report
func (s *ChronySource) Tracking(ctx context.Context) (*chrony.ReplyTracking, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", s.Address)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	c := chrony.Client{Sequence: 1, Connection: conn}
	res, err := c.Communicate(chrony.NewTrackingPacket())
	if err != nil {
		return nil, fmt.Errorf("communicate: %w", err)
	}
	tracking, ok := res.(*chrony.ReplyTracking)
	if !ok {
		return nil, fmt.Errorf("tracking reply was of unexpected type: %T", res)
	}
	return tracking, nil
}
