// Package ipc is the local control socket: minipro-ctl sends typed
// utterances or audio files to a running assistant through it.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"sync"
)

const DefaultSocketPath = "/tmp/minipro.sock"

const (
	CmdSay   = "say"
	CmdAudio = "audio"
)

type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

func (m ControlMessage) Validate() error {
	switch m.Cmd {
	case CmdSay:
		if m.Text == "" {
			return errors.New("say: empty text")
		}
	case CmdAudio:
		if m.Path == "" {
			return errors.New("audio: empty path")
		}
	default:
		return fmt.Errorf("unknown command %q", m.Cmd)
	}
	return nil
}

type Server struct {
	path string
	ln   net.Listener
	msgs chan ControlMessage

	closeOnce sync.Once
}

// Listen binds the socket and starts accepting in the background.
// Messages are queued; when the queue is full new ones are dropped.
func Listen(path string, queue int) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath
	}
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Server{
		path: path,
		ln:   ln,
		msgs: make(chan ControlMessage, queue),
	}
	go s.accept()

	return s, nil
}

func (s *Server) Messages() <-chan ControlMessage {
	return s.msgs
}

func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.ln.Close()
		os.Remove(s.path)
	})
	return err
}

func (s *Server) accept() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Warn("Bad control message", "err", err)
		return
	}
	if err := msg.Validate(); err != nil {
		log.Warn("Rejected control message", "err", err)
		return
	}

	select {
	case s.msgs <- msg:
		log.Debug("Queued control message", "cmd", msg.Cmd)
	default:
		log.Warn("Control queue full, dropping message", "cmd", msg.Cmd)
	}
}

func Send(path string, msg ControlMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if path == "" {
		path = DefaultSocketPath
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		return err
	}
	defer conn.Close()

	return json.NewEncoder(conn).Encode(msg)
}
