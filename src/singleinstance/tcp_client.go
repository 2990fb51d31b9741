package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryCapture(ctx context.Context, req Request) (bool, string, error) {
	res, ok := Detect(ctx, 2*time.Second)
	if !ok {
		return false, "", nil
	}
	conn, err := net.DialTimeout("tcp", res.Addr, probeTimeout(ctx, 2*time.Second))
	if err != nil {
		return false, "", nil
	}
	path, err := c.capture(ctx, conn, req)
	return true, path, err
}

// capture sends the request and waits for the resident's answer. The user
// may take as long as they like in the overlay, so only ctx bounds the wait.
func (c *tcpClient) capture(ctx context.Context, conn net.Conn, req Request) (string, error) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(captureVerb + " " + req.Encode() + "\n"); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case successResponse:
		return strings.TrimSpace(string(body)), nil
	case errorResponse:
		return "", errors.New(string(body))
	case cancelledResponse:
		return "", ErrCancelled
	default:
		return "", errors.New("unexpected resident response: " + strings.TrimSpace(status))
	}
}
