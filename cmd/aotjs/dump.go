package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/redchew/aotjs/internal/engine"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Build a small object graph and print the live heap",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		opts, err := loadEngineOptions(configPath)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		e := engine.NewEngine(opts)
		root := e.NewObject(e.Undefined())
		e.SetProperty(root, e.NewString("name"), e.NewString("aotjs"))
		e.SetProperty(root, e.NewString("version"), engine.NewInt32(1))
		child := e.NewObject(root)
		e.SetProperty(child, e.NewString("parent"), root)

		switch format {
		case "text":
			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
			fmt.Println(headerStyle.Render("aotjs heap dump"))
			fmt.Print(e.Dump())
			return nil
		case "msgpack":
			if out != "" {
				if err := e.SaveSnapshot(out); err != nil {
					return err
				}
				fmt.Printf("wrote msgpack snapshot to %s\n", out)
				return nil
			}
			data, err := msgpack.Marshal(e.Snapshot())
			if err != nil {
				return fmt.Errorf("encoding snapshot: %w", err)
			}
			_, err = os.Stdout.Write(data)
			return err
		default:
			return fmt.Errorf("unknown --format %q (want \"text\" or \"msgpack\")", format)
		}
	},
}

func init() {
	dumpCmd.Flags().String("format", "text", `dump format: "text" or "msgpack"`)
	dumpCmd.Flags().String("out", "", "file to write a msgpack snapshot to (defaults to stdout)")
}
