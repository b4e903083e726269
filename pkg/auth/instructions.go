package auth

import (
	"fmt"
	"strings"
)

// ShowCookieExtractionGuide prints the walkthrough for pulling session
// cookies out of a browser, shown before the login prompts.
func ShowCookieExtractionGuide() {
	rule := strings.Repeat("-", 72)

	fmt.Println(rule)
	fmt.Println("Getting your Instagram session cookies")
	fmt.Println(rule)
	fmt.Println()
	fmt.Println("igloader authenticates with the session cookies your browser")
	fmt.Println("already holds. To find them:")
	fmt.Println()
	fmt.Println("1. Log into https://www.instagram.com in your browser and make")
	fmt.Println("   sure your feed loads.")
	fmt.Println()
	fmt.Println("2. Open the developer tools:")
	fmt.Println("   Chrome/Edge/Brave/Firefox: F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   Safari: enable the Develop menu in Settings, then Cmd+Option+I")
	fmt.Println()
	fmt.Println("3. Open the cookie list:")
	fmt.Println("   Application tab (Chrome) or Storage tab (Firefox)")
	fmt.Println("   -> Cookies -> https://www.instagram.com")
	fmt.Println()
	fmt.Println("4. Copy the values of these two cookies:")
	fmt.Println("   sessionid   long string containing %3A sequences,")
	fmt.Println("               e.g. 12345678%3Aabcdef%3A26%3A...")
	fmt.Println("   csrftoken   32-character string,")
	fmt.Println("               e.g. YTQHujAgMhyveLvvuwCfw9CPI8ROAHoy")
	fmt.Println()
	fmt.Println("Copy each value whole, without quotes or trailing semicolons.")
	fmt.Println("Cookies expire eventually; rerun 'igloader auth login' when they do.")
	fmt.Println()
	fmt.Println("These cookies grant full access to your account. Never share")
	fmt.Println("them; igloader stores them encrypted.")
	fmt.Println(rule)
	fmt.Println()
}
