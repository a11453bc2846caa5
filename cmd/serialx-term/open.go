package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jangala-dev/serialx/serialx"
)

var openOpts = struct {
	port string
	baud uint32
}{}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Bridge stdin/stdout to a serial port",
	Long:  "Open the named port through the serialx driver and relay bytes between it and the terminal. Interrupt (Ctrl-C) to exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if openOpts.port == "" {
			return fmt.Errorf("--port is required (try the ports subcommand)")
		}

		p := serialx.NewPort(serialx.NewOSDevice(openOpts.port))
		if err := p.Begin(openOpts.baud); err != nil {
			return err
		}
		defer p.Close()

		restore, err := makeRaw(int(os.Stdin.Fd()))
		if err != nil {
			log.Printf("raw mode unavailable: %v", err)
		} else {
			defer restore()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Port -> stdout.
		go func() {
			buf := make([]byte, 256)
			for {
				n, err := p.ReadBlocking(ctx, buf)
				if err != nil {
					return
				}
				os.Stdout.Write(buf[:n])
			}
		}()

		// Stdin -> port.
		go func() {
			buf := make([]byte, 256)
			for {
				n, err := os.Stdin.Read(buf)
				if err != nil {
					stop()
					return
				}
				if _, err := p.Write(buf[:n]); err != nil {
					stop()
					return
				}
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func init() {
	openCmd.Flags().StringVarP(&openOpts.port, "port", "p", "", "serial port to open (e.g. /dev/ttyUSB0)")
	openCmd.Flags().Uint32VarP(&openOpts.baud, "baud", "b", 115200, "transfer rate in bits/second")
}
