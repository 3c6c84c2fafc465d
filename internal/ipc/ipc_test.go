package ipc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socketPath(t *testing.T) string {
	// unix socket paths are length-limited; keep it short
	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)
	return filepath.Join(dir, "c.sock")
}

func TestSendAndReceive(t *testing.T) {
	path := socketPath(t)
	srv, err := Listen(path, 4)
	require.NoError(t, err)
	defer srv.Close()

	require.NoError(t, Send(path, ControlMessage{Cmd: CmdSay, Text: "tell me a joke"}))
	require.NoError(t, Send(path, ControlMessage{Cmd: CmdAudio, Path: "/tmp/q.wav"}))

	var got []ControlMessage
	for len(got) < 2 {
		select {
		case m := <-srv.Messages():
			got = append(got, m)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for control messages")
		}
	}
	assert.ElementsMatch(t, []ControlMessage{
		{Cmd: CmdSay, Text: "tell me a joke"},
		{Cmd: CmdAudio, Path: "/tmp/q.wav"},
	}, got)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ControlMessage{Cmd: CmdSay, Text: "hi"}.Validate())
	assert.Error(t, ControlMessage{Cmd: CmdSay}.Validate())
	assert.Error(t, ControlMessage{Cmd: CmdAudio}.Validate())
	assert.Error(t, ControlMessage{Cmd: "trigger"}.Validate())
}

func TestSendWithoutServer(t *testing.T) {
	err := Send(socketPath(t), ControlMessage{Cmd: CmdSay, Text: "hello"})
	assert.Error(t, err)
}

func TestSendRejectsInvalid(t *testing.T) {
	err := Send(socketPath(t), ControlMessage{Cmd: "bogus"})
	assert.ErrorContains(t, err, "unknown command")
}
