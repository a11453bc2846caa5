// serialx-term is a small serial terminal built on the serialx driver: it
// lists ports and bridges stdin/stdout to a port opened through the OS
// device backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
)

var rootCmd = &cobra.Command{
	Use:   "serialx-term",
	Short: "Serial terminal for the serialx driver",
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.GetPortsList()
		if err != nil {
			return fmt.Errorf("list ports: %w", err)
		}
		if len(ports) == 0 {
			fmt.Println("no serial ports found")
			return nil
		}
		for _, name := range ports {
			fmt.Println(name)
		}
		return nil
	},
}

func main() {
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(openCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
