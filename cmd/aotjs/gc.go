package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redchew/aotjs/internal/engine"
)

var gcAllocCount int

func init() {
	gcCmd.Flags().IntVar(&gcAllocCount, "alloc", 64, "number of throwaway objects to allocate before collecting")
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Allocate a batch of unrooted objects and show what a collection reclaims",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		opts, err := loadEngineOptions(configPath)
		if err != nil {
			return err
		}

		e := engine.NewEngine(opts)
		before := e.LiveObjectCount()
		for i := 0; i < gcAllocCount; i++ {
			e.NewObject(e.Undefined())
		}
		peak := e.LiveObjectCount()
		e.GC()
		after := e.LiveObjectCount()

		fmt.Printf("before: %d live\n", before)
		fmt.Printf("peak:   %d live\n", peak)
		fmt.Printf("after:  %s live\n", color.GreenString("%d", after))
		if after != before {
			return fmt.Errorf("expected GC to reclaim every unrooted object, %d remain", after-before)
		}
		return nil
	},
}
