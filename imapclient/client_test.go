package imapclient_test

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/kvio/imapengine/imapclient"
)

// fakeServer wraps the server side of a net.Pipe connection with line-based
// read/write helpers for scripting a minimal IMAP session.
type fakeServer struct {
	t  *testing.T
	r  *bufio.Reader
	nc net.Conn
}

func newFakeServer(t *testing.T, conn net.Conn) *fakeServer {
	return &fakeServer{t: t, r: bufio.NewReader(conn), nc: conn}
}

func (s *fakeServer) readLine() string {
	s.t.Helper()
	line, err := s.r.ReadString('\n')
	if err != nil {
		s.t.Fatalf("server: ReadString() error = %v", err)
	}
	return line
}

func (s *fakeServer) send(line string) {
	s.t.Helper()
	if _, err := s.nc.Write([]byte(line)); err != nil {
		s.t.Fatalf("server: Write() error = %v", err)
	}
}

func dialFake(t *testing.T, options *imapclient.Options) (*imapclient.Client, *fakeServer) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	srv := newFakeServer(t, serverConn)
	c := imapclient.New(clientConn, options)
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestClientGreetingAndLogin(t *testing.T) {
	c, srv := dialFake(t, nil)

	go srv.send("* OK IMAP4rev1 Service Ready\r\n")

	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Login("tim", "sekrit") }()

	line := srv.readLine()
	if line != "T1 LOGIN \"tim\" \"sekrit\"\r\n" {
		t.Fatalf("server saw %q", line)
	}
	srv.send("T1 OK LOGIN completed\r\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Login() did not return in time")
	}
}

func TestClientLoginFailure(t *testing.T) {
	c, srv := dialFake(t, nil)
	go srv.send("* OK ready\r\n")
	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Login("tim", "wrong") }()

	srv.readLine()
	srv.send("T1 NO [AUTHENTICATIONFAILED] invalid credentials\r\n")

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Login() with a NO response should return an error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Login() did not return in time")
	}
}

func TestClientCapability(t *testing.T) {
	c, srv := dialFake(t, nil)
	go srv.send("* OK ready\r\n")
	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	type result struct {
		caps []string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		caps, err := c.Capability()
		var names []string
		for c := range caps {
			names = append(names, string(c))
		}
		done <- result{names, err}
	}()

	srv.readLine()
	srv.send("* CAPABILITY IMAP4rev1 IDLE STARTTLS\r\n")
	srv.send("T1 OK CAPABILITY completed\r\n")

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Capability() error = %v", r.err)
		}
		if len(r.caps) != 3 {
			t.Fatalf("Capability() = %v, want 3 entries", r.caps)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Capability() did not return in time")
	}
}

func TestClientUnilateralExists(t *testing.T) {
	var gotCount uint32
	notified := make(chan struct{})
	options := &imapclient.Options{
		UnilateralData: &imapclient.UnilateralDataHandler{
			Exists: func(count uint32) {
				gotCount = count
				close(notified)
			},
		},
	}
	c, srv := dialFake(t, options)
	go srv.send("* OK ready\r\n")
	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	srv.send("* 42 EXISTS\r\n")

	select {
	case <-notified:
		if gotCount != 42 {
			t.Errorf("Exists count = %d, want 42", gotCount)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("UnilateralDataHandler.Exists was not called in time")
	}
}

func TestClientNoop(t *testing.T) {
	c, srv := dialFake(t, nil)
	go srv.send("* OK ready\r\n")
	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Noop() }()

	line := srv.readLine()
	if line != "T1 NOOP\r\n" {
		t.Fatalf("server saw %q", line)
	}
	srv.send("T1 OK NOOP completed\r\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Noop() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Noop() did not return in time")
	}
}
