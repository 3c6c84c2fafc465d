package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/spf13/pflag"

	"minipro/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "S", ipc.DefaultSocketPath, "Control socket path")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: minipro-ctl [--socket path] say <words...>")
		fmt.Fprintln(os.Stderr, "       minipro-ctl [--socket path] audio <file>")
		cli.PrintDefaults()
	}
	cli.Parse()

	args := cli.Args()
	if len(args) < 2 {
		cli.Usage()
		os.Exit(2)
	}

	var msg ipc.ControlMessage
	switch args[0] {
	case ipc.CmdSay:
		msg = ipc.ControlMessage{Cmd: ipc.CmdSay, Text: strings.Join(args[1:], " ")}
	case ipc.CmdAudio:
		path, err := filepath.Abs(args[1])
		if err != nil {
			fmt.Println("bad path:", err)
			os.Exit(1)
		}
		msg = ipc.ControlMessage{Cmd: ipc.CmdAudio, Path: path}
	default:
		cli.Usage()
		os.Exit(2)
	}

	if err := ipc.Send(*socket, msg); err != nil {
		fmt.Println("minipro not running:", err)
		os.Exit(1)
	}
}
