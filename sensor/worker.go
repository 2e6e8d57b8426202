package sensor

import "picoclock/queue"

// Request is the single-byte command sent to core 1
type Request uint8

const (
	RequestRead Request = iota + 1
)

// Response is core 1's answer to a Request
type Response struct {
	Request Request
	Reading Reading
	OK      bool
}

// Channel is the cross-core link used by Worker
type Channel = queue.Channel[Request, Response]

// NewChannel creates the cross-core link
func NewChannel() *Channel {
	return queue.NewChannel[Request, Response](4)
}

// Worker serves sensor requests on core 1. Reads that bit-bang a pin with
// interrupts disabled would break the 1 ms scan deadline on core 0.
type Worker struct {
	ch     *Channel
	sensor Sensor
	served uint32
}

// NewWorker creates a worker answering requests on ch with s
func NewWorker(ch *Channel, s Sensor) *Worker {
	return &Worker{ch: ch, sensor: s}
}

// Poll serves at most one request and reports whether it did. Core 1 calls
// it in a loop.
func (w *Worker) Poll() bool {
	req, ok := w.ch.NextRequest()
	if !ok {
		return false
	}

	resp := Response{Request: req}
	switch req {
	case RequestRead:
		r, err := ReadWithRetry(w.sensor, DefaultAttempts)
		resp.Reading = r
		resp.OK = err == nil
	}
	// A full response ring means core 0 has stopped listening; dropping
	// the answer is fine, it asks again next period.
	_ = w.ch.Respond(resp)
	w.served++
	return true
}

// Served returns the number of requests handled
func (w *Worker) Served() uint32 {
	return w.served
}
