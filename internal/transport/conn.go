// Package transport carries protocol lines over a byte stream.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
)

// Conn is a bidirectional line-oriented connection. ReadLine is called from a
// single goroutine; WriteLine may be called concurrently with it.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

// TCPConn frames lines with '\n' over a net.Conn.
type TCPConn struct {
	conn    net.Conn
	reader  *bufio.Reader
	writeMu sync.Mutex
	writer  *bufio.Writer
}

func NewTCPConn(conn net.Conn) *TCPConn {
	return &TCPConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

// ReadLine returns the next line without its terminator.
func (c *TCPConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if line != "" && errors.Is(err, io.EOF) {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *TCPConn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}

func (c *TCPConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Dial connects to a relay at addr.
func Dial(ctx context.Context, addr string) (*TCPConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewTCPConn(conn), nil
}

// Serve accepts connections on l until ctx is cancelled, handing each to
// handle on its own goroutine.
func Serve(ctx context.Context, l net.Listener, handle func(Conn)) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Printf("[TCP] accept timeout: %v", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		go handle(NewTCPConn(conn))
	}
}
