package main

import (
	"fmt"
	"os"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Inspect and update customer orders",
}

var orderLsCmd = &cobra.Command{
	Use:   "ls <phone>",
	Short: "List a customer's orders, newest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStack(cmd)
		defer st.Close()

		orders, err := st.catalog.CustomerOrders(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading orders: %v\n", err)
			os.Exit(1)
		}
		if len(orders) == 0 {
			fmt.Println("No orders found.")
			return
		}
		for _, o := range orders {
			fmt.Printf("%s %s  %-10s  %s x%d  %s  %s\n",
				o.Status.Emoji(), o.ID, o.Status, o.ProductName, o.Quantity,
				chat.Price(o.Currency, o.TotalPrice), o.OrderDate)
		}
	},
}

var orderStatusCmd = &cobra.Command{
	Use:   "status <order-id> <status>",
	Short: "Set the fulfilment status of an order",
	Long:  fmt.Sprintf("Sets the status of an order. Valid statuses: %v.", domain.OrderStatuses),
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		status, err := domain.ParseOrderStatus(args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		st := openStack(cmd)
		defer st.Close()

		if err := st.catalog.UpdateOrderStatus(cmd.Context(), args[0], status); err != nil {
			fmt.Printf("Error updating order '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("Order '%s' is now %s %s\n", args[0], status.Emoji(), status)
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderLsCmd)
	orderCmd.AddCommand(orderStatusCmd)
}
