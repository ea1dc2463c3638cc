package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

const checkTimeout = 10 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured collaborators are reachable",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStack(cmd)
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		if failed := st.check(ctx, func(name string, err error) {
			if err != nil {
				fmt.Printf("✗ %s: %v\n", name, err)
			} else {
				fmt.Printf("✓ %s\n", name)
			}
		}); failed > 0 {
			os.Exit(1)
		}
	},
}

// check pings every collaborator in name order and returns how many failed.
func (s *stack) check(ctx context.Context, report func(name string, err error)) int {
	names := make([]string, 0, len(s.pingers))
	for name := range s.pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		err := s.pingers[name].Ping(ctx)
		if err != nil {
			failed++
		}
		report(name, err)
	}
	return failed
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
