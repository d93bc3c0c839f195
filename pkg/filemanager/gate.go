package filemanager

import "sync"

// Route is a single intercepted listing request. Forward lets it reach
// the server and returns the file names parsed from the response;
// Block answers it with an empty synthetic body so the page does not
// hang waiting for a reply.
type Route interface {
	Payload() string
	Forward() ([]string, error)
	Block() error
}

// RequestGate is a single-flight filter over the widget's outgoing
// listing requests. After a single directory click the widget may fire
// the wanted request plus duplicates or requests for ancestor
// directories; the gate forwards exactly the payload it was armed with
// and suppresses everything else, including immediate repeats of the
// forwarded payload while duplicate blocking is on.
type RequestGate struct {
	mu            sync.Mutex
	allowed       string
	armed         bool
	blockRepeats  bool
	lastSeen      string
	lastForwarded string
	results       chan []string
}

// NewRequestGate creates a disarmed gate.
func NewRequestGate() *RequestGate {
	return &RequestGate{results: make(chan []string, 1)}
}

// Allow arms the gate to forward exactly one kind of payload, with
// duplicate blocking on. Any result left over from a previous
// navigation attempt is discarded. The returned channel receives the
// listing parsed from the forwarded request's response.
func (g *RequestGate) Allow(payload string) <-chan []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowed = payload
	g.armed = true
	g.blockRepeats = true
	g.lastForwarded = ""
	select {
	case <-g.results:
	default:
	}
	return g.results
}

// Disallow disarms the gate; every request is answered synthetically.
func (g *RequestGate) Disallow() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
	g.allowed = ""
}

// PermitRepeat disables duplicate blocking without changing the
// allowed payload.
func (g *RequestGate) PermitRepeat() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockRepeats = false
}

// SuppressRepeat re-enables duplicate blocking.
func (g *RequestGate) SuppressRepeat() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockRepeats = true
}

// Reset disarms the gate and clears its payload memory. Called at
// session open and close.
func (g *RequestGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
	g.allowed = ""
	g.blockRepeats = true
	g.lastSeen = ""
	g.lastForwarded = ""
	select {
	case <-g.results:
	default:
	}
}

// LastSeen returns the payload of the most recent request observed by
// the gate, forwarded or not.
func (g *RequestGate) LastSeen() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSeen
}

// Handle applies the gate policy to one intercepted request. Every
// request mutates the last-seen payload; only a request matching the
// armed payload, and not an immediate repeat of the last forwarded one
// while duplicate blocking is on, reaches the server. The parsed
// listing from a forwarded request is delivered to the channel handed
// out by Allow; if nothing is draining it, the result is dropped
// rather than blocking the interception callback.
func (g *RequestGate) Handle(r Route) error {
	payload := r.Payload()

	g.mu.Lock()
	g.lastSeen = payload
	forward := g.armed && payload == g.allowed &&
		!(g.blockRepeats && payload == g.lastForwarded)
	if forward {
		g.lastForwarded = payload
	}
	g.mu.Unlock()

	if !forward {
		return r.Block()
	}

	names, err := r.Forward()
	if err != nil {
		return err
	}
	select {
	case g.results <- names:
	default:
	}
	return nil
}
