package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot from the terminal",
	Long: `Runs the bot over stdin and stdout as the customer given by --phone.
Sessions go to the configured store, so a conversation can be resumed or inspected.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		phone, _ := cmd.Flags().GetString("phone")
		phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")

		st, err := newStack(cfg, cfg.Logger())
		if err != nil {
			fmt.Printf("Error initializing mercato: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		bot, err := st.bot(memory.NewConsole(os.Stdout), nil, nil)
		if err != nil {
			fmt.Printf("Error initializing mercato: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("--- Mercato chat as %s (type 'exit' to quit) ---\n", phone)
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "exit" || input == "quit" {
				fmt.Println("Bye!")
				return
			}
			bot.Handle(cmd.Context(), phone, input)
		}
		if err := scanner.Err(); err != nil {
			fmt.Printf("Error reading input: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("phone", "265990000001", "Customer phone number to chat as")
}
