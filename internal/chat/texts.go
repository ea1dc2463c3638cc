package chat

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WelcomeMenu is the idle menu.
func WelcomeMenu() string {
	return "🛍️ *PRODUCTS CATALOG*\n\n" +
		"*Select an option:*\n\n" +
		"1. 📍 Browse by Location\n" +
		"2. 📂 Browse Categories\n" +
		"3. 🔍 Search Products\n" +
		"4. 📦 My Orders\n" +
		"5. ❓ Help & Support\n" +
		"6. 🏪 Shop Owner Dashboard\n\n" +
		"*Type:* 1, 2, 3, 4, 5, or 6"
}

// HelpMenu lists the support topics.
func HelpMenu() string {
	return "📞 *HELP & SUPPORT*\n\n" +
		"*Select an option:*\n\n" +
		"1. How to order\n" +
		"2. Payment methods\n" +
		"3. Delivery information\n" +
		"4. Contact support\n" +
		"5. Return to main menu\n\n" +
		"*Type:* 1, 2, 3, 4, or 5"
}

const (
	InvalidOption = "❌ *Invalid Option*\n\nPlease select a valid option from the menu:\n\n"
	SystemSetup   = "⚠️ *System Setup*\n\nOur system is currently setting up. Please wait a moment and try again."
	SystemError   = "⚠️ *System Error*\n\nAn error occurred. Please try again."
	QueryTooShort = "❌ Please enter at least 2 characters.\n\nType 0 to go back."
	TypeNumber    = "*Type the number only*"
)

// OutOfRange re-prompts for a number in 1..max.
func OutOfRange(max int) string {
	return fmt.Sprintf("❌ Please type a number between 1 and %d.", max)
}

// Price renders an amount with its currency and thousands separators ("MWK 12,500").
func Price(currency string, amount float64) string {
	p := message.NewPrinter(language.English)
	if amount == math.Trunc(amount) {
		return p.Sprintf("%s %.0f", currency, amount)
	}
	return p.Sprintf("%s %.2f", currency, amount)
}

// Plural returns "s" unless n is 1.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
