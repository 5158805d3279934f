package imapclient

import (
	"sync"
	"time"

	"github.com/kvio/imapengine"
)

// idleRestartInterval bounds how long a single IDLE round is left open.
// Some middleboxes and proxies kill TCP connections they judge idle well
// under an hour; RFC 2177 recommends re-issuing IDLE before that happens.
const idleRestartInterval = 28 * time.Minute

// IdleCommand represents an in-progress, auto-restarting IDLE session.
// Unilateral mailbox updates observed while idling are delivered to
// Options.UnilateralData as usual. Close ends the session.
type IdleCommand struct {
	c    *Client
	stop chan struct{}
	done chan struct{}
	once sync.Once
	err  error
}

// idleRound is one IDLE/DONE round-trip sharing the tag of its IDLE command.
type idleRound struct {
	pc *pendingCommand
}

// Idle begins an IDLE session, blocking until the server has acknowledged
// it with a continuation. The returned IdleCommand re-issues IDLE
// automatically every idleRestartInterval until Close is called.
func (c *Client) Idle() (*IdleCommand, error) {
	round, err := c.startIdleRound()
	if err != nil {
		return nil, err
	}

	idle := &IdleCommand{c: c, stop: make(chan struct{}), done: make(chan struct{})}
	go idle.run(round)
	return idle, nil
}

func (idle *IdleCommand) run(round *idleRound) {
	defer close(idle.done)
	timer := time.NewTimer(idleRestartInterval)
	defer timer.Stop()

	for {
		select {
		case <-idle.stop:
			idle.err = idle.c.stopIdleRound(round)
			return
		case <-timer.C:
			if err := idle.c.stopIdleRound(round); err != nil {
				idle.err = err
				return
			}
			next, err := idle.c.startIdleRound()
			if err != nil {
				idle.err = err
				return
			}
			round = next
			timer.Reset(idleRestartInterval)
		}
	}
}

// Close ends the IDLE session, sending DONE and waiting for the server's
// tagged response to whichever round is currently open.
func (idle *IdleCommand) Close() error {
	idle.once.Do(func() { close(idle.stop) })
	<-idle.done
	return idle.err
}

func (c *Client) startIdleRound() (*idleRound, error) {
	tag := c.tagGen.Next()
	pc := &pendingCommand{done: make(chan struct{})}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil, c.closeErr
	}
	c.pending[tag] = pc
	c.mutex.Unlock()

	started := make(chan struct{})
	c.idleMu.Lock()
	c.idleStarted = started
	c.idleMu.Unlock()

	part := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: tag, Command: imapengine.CommandIdleStart{}}}
	if err := c.submit(part); err != nil {
		c.mutex.Lock()
		delete(c.pending, tag)
		c.mutex.Unlock()
		return nil, err
	}

	select {
	case <-started:
		return &idleRound{pc: pc}, nil
	case <-pc.done:
		if pc.err != nil {
			return nil, pc.err
		}
		return nil, (*imapengine.Error)(&imapengine.StatusResponse{Type: pc.resp.Kind, Code: pc.resp.Code, Text: pc.resp.Text})
	}
}

func (c *Client) stopIdleRound(r *idleRound) error {
	if err := c.submit(imapengine.IdleDonePart{}); err != nil {
		return err
	}
	<-r.pc.done
	if r.pc.err != nil {
		return r.pc.err
	}
	if r.pc.resp.Kind != imapengine.StatusResponseTypeOK {
		return (*imapengine.Error)(&imapengine.StatusResponse{Type: r.pc.resp.Kind, Code: r.pc.resp.Code, Text: r.pc.resp.Text})
	}
	return nil
}
