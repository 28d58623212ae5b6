package util

import (
	"net"
	"time"
)

// NetConnReader wraps a connection with read timeout updated infrequently in trade of accuracy
//
// The real timeout could be anything from specified timeout value to double of it
type NetConnReader struct {
	conn           net.Conn
	readTimeoutMin time.Duration
	readTimeoutMax time.Duration
	readDeadline   time.Time
}

// WrapNetConnReader creates a NetConnReader for given network connection
func WrapNetConnReader(conn net.Conn, readTimeout time.Duration) *NetConnReader {
	return &NetConnReader{
		conn:           conn,
		readTimeoutMin: readTimeout,
		readTimeoutMax: readTimeout * 2,
		readDeadline:   time.Time{},
	}
}

// ReadDeadline returns the current read deadline
func (cr *NetConnReader) ReadDeadline() time.Time {
	return cr.readDeadline
}

func (cr *NetConnReader) Read(p []byte) (n int, err error) {
	if cr.readTimeoutMin > 0 {
		now := time.Now()
		if cr.readDeadline.Sub(now) < cr.readTimeoutMin {
			nextDeadline := now.Add(cr.readTimeoutMax)
			if err := cr.conn.SetReadDeadline(nextDeadline); err != nil {
				return 0, err
			}
			cr.readDeadline = nextDeadline
		}
	}
	return cr.conn.Read(p)
}
