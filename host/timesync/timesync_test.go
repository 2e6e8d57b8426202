package timesync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookincubator/ntp/protocol/chrony"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		tracking chrony.Tracking
		ok       bool
	}{
		{"synchronised", chrony.Tracking{Stratum: 2, CurrentCorrection: 0.001}, true},
		{"gps reference", chrony.Tracking{Stratum: 1, RefID: 0x47505300}, true},
		{"unsynchronised leap", chrony.Tracking{Stratum: 2, LeapStatus: 3}, false},
		{"no stratum", chrony.Tracking{Stratum: 0}, false},
		{"stratum 16", chrony.Tracking{Stratum: 16}, false},
		{"large correction", chrony.Tracking{Stratum: 3, CurrentCorrection: -0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(&chrony.ReplyTracking{Tracking: tt.tracking}, DefaultMaxCorrection)
			if tt.ok && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrNotSynchronised) {
				t.Errorf("Expected ErrNotSynchronised, got %v", err)
			}
		})
	}
}

func TestCheckWithoutCorrectionLimit(t *testing.T) {
	tracking := &chrony.ReplyTracking{Tracking: chrony.Tracking{Stratum: 3, CurrentCorrection: 5}}
	if err := Check(tracking, 0); err != nil {
		t.Errorf("Expected no limit, got %v", err)
	}
}

func TestSystemSource(t *testing.T) {
	before := time.Now()
	got, err := SystemSource{}.Resync(context.Background())
	if err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if got.Before(before.Add(-time.Second)) || got.Location() != time.UTC {
		t.Errorf("Expected current UTC time, got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (SystemSource{}).Resync(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
