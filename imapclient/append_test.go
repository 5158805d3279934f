package imapclient_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kvio/imapengine"
	"github.com/kvio/imapengine/imapclient"
)

func TestClientAppend(t *testing.T) {
	c, srv := dialFake(t, nil)
	go srv.send("* OK ready\r\n")
	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	body := "Subject: hi\r\n\r\nhello\r\n"
	done := make(chan error, 1)
	go func() {
		_, err := c.Append("INBOX", strings.NewReader(body), int64(len(body)), imapengine.AppendOptions{
			Flags: []imapengine.Flag{imapengine.FlagSeen},
		})
		done <- err
	}()

	line := srv.readLine()
	if line != "T1 APPEND INBOX (\\Seen) {22}\r\n" {
		t.Fatalf("server saw %q", line)
	}
	srv.send("+ OK\r\n")

	buf := make([]byte, len(body))
	if _, err := io.ReadFull(srv.r, buf); err != nil {
		t.Fatalf("server: read literal error = %v", err)
	}
	if string(buf) != body {
		t.Fatalf("server saw literal %q, want %q", buf, body)
	}
	if tail := srv.readLine(); tail != "\r\n" {
		t.Fatalf("server saw %q after literal, want CRLF", tail)
	}
	srv.send("T1 OK APPEND completed\r\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Append() did not return in time")
	}
}

// TestClientAppendCatenate exercises the CATENATE (RFC 4469) subcommand
// path: a message assembled from a URL part and an inline TEXT literal,
// neither of which goes through the plain AppendBeginMessage branch.
func TestClientAppendCatenate(t *testing.T) {
	c, srv := dialFake(t, nil)
	go srv.send("* OK ready\r\n")
	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	url := "/INBOX;UIDVALIDITY=1/;UID=20/;SECTION=1.2"
	text := "more text\r\n"
	done := make(chan error, 1)
	go func() {
		_, err := c.AppendMulti("INBOX", []imapclient.AppendMessage{{
			Catenate: []imapclient.AppendCatenatePart{
				{URL: imapengine.IMAPURL{Raw: url}},
				{Reader: strings.NewReader(text), Size: int64(len(text))},
			},
		}})
		done <- err
	}()

	// The URL part is short and printable, so it goes out as a quoted
	// string inline rather than its own literal; the first CRLF on the
	// wire is the one opening the TEXT part's literal.
	line := srv.readLine()
	want := "T1 APPEND INBOX CATENATE (URL \"" + url + "\" TEXT {11}\r\n"
	if line != want {
		t.Fatalf("server saw %q, want %q", line, want)
	}
	srv.send("+ OK\r\n")

	textBytes := make([]byte, len(text))
	if _, err := io.ReadFull(srv.r, textBytes); err != nil {
		t.Fatalf("server: read TEXT literal error = %v", err)
	}
	if string(textBytes) != text {
		t.Fatalf("server saw TEXT literal %q, want %q", textBytes, text)
	}

	line = srv.readLine()
	if line != ")\r\n" {
		t.Fatalf("server saw %q, want closing paren", line)
	}
	srv.send("T1 OK APPEND completed\r\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("AppendMulti() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AppendMulti() did not return in time")
	}
}

// TestClientAppendMulti exercises MULTIAPPEND (RFC 3502): two plain
// messages submitted to the same APPEND command.
func TestClientAppendMulti(t *testing.T) {
	c, srv := dialFake(t, nil)
	go srv.send("* OK ready\r\n")
	if err := c.WaitGreeting(); err != nil {
		t.Fatalf("WaitGreeting() error = %v", err)
	}

	first, second := "one\r\n", "two\r\n"
	done := make(chan error, 1)
	go func() {
		_, err := c.AppendMulti("INBOX", []imapclient.AppendMessage{
			{Reader: strings.NewReader(first), Size: int64(len(first))},
			{Reader: strings.NewReader(second), Size: int64(len(second))},
		})
		done <- err
	}()

	line := srv.readLine()
	if line != "T1 APPEND INBOX {5}\r\n" {
		t.Fatalf("server saw %q", line)
	}
	srv.send("+ OK\r\n")
	buf := make([]byte, len(first))
	if _, err := io.ReadFull(srv.r, buf); err != nil {
		t.Fatalf("server: read first literal error = %v", err)
	}

	line = srv.readLine()
	if line != " {5}\r\n" {
		t.Fatalf("server saw %q", line)
	}
	srv.send("+ OK\r\n")
	buf = make([]byte, len(second))
	if _, err := io.ReadFull(srv.r, buf); err != nil {
		t.Fatalf("server: read second literal error = %v", err)
	}

	if tail := srv.readLine(); tail != "\r\n" {
		t.Fatalf("server saw %q after second literal, want CRLF", tail)
	}
	srv.send("T1 OK APPEND completed\r\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("AppendMulti() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AppendMulti() did not return in time")
	}
}
