package singleinstance

import (
	"bufio"
	"context"
	"net"
	"time"
)

// DefaultProbeTimeout bounds one PING when the caller's context has no
// deadline.
const DefaultProbeTimeout = 300 * time.Millisecond

// Resident is a running instance that answered PING.
type Resident struct {
	Port int
	Addr string
}

// Detect scans Ports() and returns the first resident that answers PING.
// Each probe is bounded by the time left on ctx, capped at timeout.
func Detect(ctx context.Context, timeout time.Duration) (Resident, bool) {
	r := Ports()
	for port := r.Start; port <= r.End; port++ {
		if ctx.Err() != nil {
			return Resident{}, false
		}
		addr := r.Addr(port)
		if ping(addr, probeTimeout(ctx, timeout)) {
			return Resident{Port: port, Addr: addr}, true
		}
	}
	return Resident{}, false
}

func probeTimeout(ctx context.Context, limit time.Duration) time.Duration {
	if limit <= 0 {
		limit = DefaultProbeTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < limit {
			return d
		}
	}
	return limit
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
