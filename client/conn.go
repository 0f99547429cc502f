package client

import (
	"io"
	"net"
)

type closeWriter interface {
	CloseWrite() error
}

type writeHalf struct {
	net.Conn
}

// Close shuts down the sending side only when the connection supports it,
// so the server can still push its last frames to the reader.
func (w writeHalf) Close() error {
	if cw, ok := w.Conn.(closeWriter); ok {
		return cw.CloseWrite()
	}
	return w.Conn.Close()
}

// WriteHalf exposes the sending side of conn for a CommandChannel.
func WriteHalf(conn net.Conn) io.WriteCloser {
	return writeHalf{Conn: conn}
}
