//go:build rp2040

// Cross-core queue bench for the RP2040.
//
// Core 1 answers requests from a queue.Channel the way the sensor worker
// does in the clock firmware, while core 0 measures round trips and pushes
// bursts through a queue.Ring to check that nothing is lost or reordered.
// Results are printed over the USB console.
package main

import (
	"machine"
	"sort"
	"sync/atomic"
	"time"

	"picoclock/queue"
)

const (
	iterations = 200
	burstSize  = 4096
)

var (
	link  = queue.NewChannel[uint32, uint32](8)
	burst = queue.New[uint32](64)

	core1Ready atomic.Bool
	burstBad   atomic.Uint32
	burstSeen  atomic.Uint32
)

func micros() uint32 {
	return uint32(time.Now().UnixMicro())
}

func main() {
	time.Sleep(2 * time.Second)
	println("multicore: starting core 1")

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.Core1.Start(core1Main)
	for !core1Ready.Load() {
		time.Sleep(time.Millisecond)
	}

	for {
		led.High()
		roundTrip()
		led.Low()
		throughput()
		time.Sleep(5 * time.Second)
	}
}

// core1Main echoes requests and checks the burst sequence
func core1Main() {
	core1Ready.Store(true)
	next := uint32(0)
	for {
		if req, ok := link.NextRequest(); ok {
			for link.Respond(req) != nil {
			}
		}
		if v, ok := burst.TryPop(); ok {
			if v != next {
				burstBad.Add(1)
			}
			next = v + 1
			burstSeen.Add(1)
		}
	}
}

func roundTrip() {
	samples := make([]uint32, 0, iterations)
	timeouts := 0
	for i := uint32(1); i <= iterations; i++ {
		start := micros()
		if err := link.Request(i); err != nil {
			println("  request", i, "dropped:", err.Error())
			continue
		}
		for {
			if v, ok := link.Response(); ok && v == i {
				break
			}
			if micros()-start > 10000 {
				timeouts++
				break
			}
		}
		samples = append(samples, micros()-start)
		time.Sleep(100 * time.Microsecond)
	}
	if len(samples) == 0 {
		return
	}

	sort.Slice(samples, func(a, b int) bool { return samples[a] < samples[b] })
	var total uint64
	for _, s := range samples {
		total += uint64(s)
	}
	println("round trip over", len(samples), "requests:")
	println("  min", samples[0], "us  max", samples[len(samples)-1], "us  avg", uint32(total/uint64(len(samples))), "us")
	println("  p50", samples[len(samples)*50/100], "us  p90", samples[len(samples)*90/100], "us  p99", samples[len(samples)*99/100], "us")
	if timeouts > 0 {
		println("  timeouts", timeouts)
	}
}

func throughput() {
	burstBad.Store(0)
	burstSeen.Store(0)
	start := micros()
	full := 0
	for i := uint32(0); i < burstSize; {
		if burst.TryPush(i) != nil {
			full++
			continue
		}
		i++
	}
	for burstSeen.Load() < burstSize {
		if micros()-start > 1000000 {
			break
		}
	}
	elapsed := micros() - start

	s := burst.Stats()
	println("burst of", burstSize, "values in", elapsed, "us")
	println("  received", burstSeen.Load(), "out of order", burstBad.Load(), "full retries", full, "drops", s.Dropped)
}
