package singleinstance

import (
	"net"
	"os"
	"strconv"
)

const (
	defaultPortStart = 49700
	defaultPortEnd   = 49750

	portStartEnv = "SINGLEINSTANCE_PORT_START"
	portEndEnv   = "SINGLEINSTANCE_PORT_END"
)

// PortRange is the inclusive loopback port range a resident may answer on.
// The resident binds Start; clients scan the whole range.
type PortRange struct {
	Start, End int
}

// Ports reads the range from SINGLEINSTANCE_PORT_START and
// SINGLEINSTANCE_PORT_END. Unset or invalid values keep the defaults; the
// result is clamped to [1024, 65535] and ordered.
func Ports() PortRange {
	r := PortRange{
		Start: envPort(portStartEnv, defaultPortStart),
		End:   envPort(portEndEnv, defaultPortEnd),
	}
	r.Start = max(r.Start, 1024)
	r.End = min(r.End, 65535)
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

func envPort(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

// Addr is the loopback address for port.
func (r PortRange) Addr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}
