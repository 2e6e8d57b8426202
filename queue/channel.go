package queue

// Channel pairs two rings, one per direction, for handing work between the
// two cores. Core 0 is the only producer of requests and the only consumer
// of responses; core 1 is the reverse. Neither side ever blocks.
type Channel[Req, Resp any] struct {
	requests  *Ring[Req]
	responses *Ring[Resp]
}

// NewChannel creates a channel whose rings each have the given capacity
func NewChannel[Req, Resp any](capacity int) *Channel[Req, Resp] {
	return &Channel[Req, Resp]{
		requests:  New[Req](capacity),
		responses: New[Resp](capacity),
	}
}

// Request queues a request for core 1 (core 0 side)
func (c *Channel[Req, Resp]) Request(r Req) error {
	return c.requests.TryPush(r)
}

// Response returns the next reply from core 1, if any (core 0 side)
func (c *Channel[Req, Resp]) Response() (Resp, bool) {
	return c.responses.TryPop()
}

// NextRequest returns the next pending request (core 1 side)
func (c *Channel[Req, Resp]) NextRequest() (Req, bool) {
	return c.requests.TryPop()
}

// Respond queues a reply for core 0 (core 1 side)
func (c *Channel[Req, Resp]) Respond(r Resp) error {
	return c.responses.TryPush(r)
}

// Pending returns the number of requests core 1 has not picked up yet
func (c *Channel[Req, Resp]) Pending() int {
	return c.requests.Len()
}
