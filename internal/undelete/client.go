// Package undelete restores soft-deleted recordings through the backend's
// control protocol. The protocol frames ASCII payloads with an 8-byte
// left-justified length header; list payloads join their fields with the
// `[]:[]` separator.
package undelete

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"dvrflow/internal/model"
	"dvrflow/internal/telemetry"

	"go.uber.org/zap"
)

const (
	backendSep   = "[]:[]"
	protoVersion = "91"
	protoToken   = "BuzzOff"
)

// Client is a connected control-protocol session.
type Client struct {
	conn net.Conn
}

// Dial connects to the backend control port (default host:6543) and performs
// the version and announce handshake.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect backend: %w", err)
	}
	c := &Client{conn: conn}
	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an established connection without handshaking. Used by
// tests running over a pipe.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) handshake() error {
	reply, err := c.Command("MYTH_PROTO_VERSION " + protoVersion + " " + protoToken)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "ACCEPT") {
		return fmt.Errorf("backend rejected protocol version %s: %s", protoVersion, reply)
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	reply, err = c.Command("ANN Monitor " + host + " 0")
	if err != nil {
		return err
	}
	if reply != "OK" {
		return fmt.Errorf("backend refused announce: %s", reply)
	}
	return nil
}

// Command sends one framed command and returns the backend's framed reply.
func (c *Client) Command(cmd string) (string, error) {
	if err := writeFrame(c.conn, cmd); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}
	reply, err := readFrame(c.conn)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

// Undelete asks the backend to restore one soft-deleted recording. The
// backend answers with a numeric status; anything non-zero is a failure.
func (c *Client) Undelete(rec model.Recording) error {
	reply, err := c.Command("UNDELETE_RECORDING" + backendSep + backendString(rec))
	if err != nil {
		return err
	}
	status, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return fmt.Errorf("unexpected undelete reply %q", reply)
	}
	if status != 0 {
		return fmt.Errorf("undelete %s failed with status %d", rec.Name(), status)
	}
	return nil
}

// Close tells the backend the session is over and drops the connection.
func (c *Client) Close() error {
	if err := writeFrame(c.conn, "DONE"); err != nil {
		telemetry.Logger.Debug("Failed to send DONE", zap.Error(err))
	}
	return c.conn.Close()
}

// backendString flattens the recording into the field order the backend's
// program-info decoder expects: title, subtitle, chanid, start time (unix
// seconds), basename, storage group, recording group, file size.
func backendString(rec model.Recording) string {
	return strings.Join([]string{
		rec.Title,
		rec.Subtitle,
		strconv.Itoa(rec.ChanID),
		strconv.FormatInt(rec.StartTime.UTC().Unix(), 10),
		rec.Basename,
		rec.StorageGroup,
		rec.RecGroup,
		strconv.FormatInt(rec.FileSize, 10),
	}, backendSep)
}

func writeFrame(w io.Writer, payload string) error {
	_, err := fmt.Fprintf(w, "%-8d%s", len(payload), payload)
	return err
}

func readFrame(r io.Reader) (string, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", err
	}
	size, err := strconv.Atoi(strings.TrimSpace(string(header)))
	if err != nil {
		return "", fmt.Errorf("malformed frame header %q", header)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return "", err
	}
	return string(body), nil
}
