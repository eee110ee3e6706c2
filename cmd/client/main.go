// Terminal driver for the chat session controller. The visual layer of the
// product is out of scope; this binary exists to exercise the full client
// flow: login, directory, conversation polling, optimistic send.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"chatline/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "chat server base URL")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	api := client.NewAPI(*server)
	me, err := api.Login(ctx, *email, *password)
	if err != nil {
		logger.Fatal("login failed", zap.Error(err))
	}
	fmt.Printf("logged in as %s <%s>\n", me.Name, me.Email)

	ctrl := client.NewController(api, logger)
	if err := ctrl.Start(ctx); err != nil {
		logger.Fatal("failed to start session", zap.Error(err))
	}
	defer ctrl.Close()

	printContacts(ctrl.State())
	fmt.Println(`commands: /contacts, /select <n>, /ai <prompt>, /quit, anything else sends`)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			printMessages(ctrl.State())

		case line == "/quit":
			_ = api.Logout(ctx)
			return

		case line == "/contacts":
			printContacts(ctrl.State())

		case strings.HasPrefix(line, "/select "):
			var n int
			if _, err := fmt.Sscanf(line, "/select %d", &n); err != nil {
				fmt.Println("usage: /select <n>")
				continue
			}
			state := ctrl.State()
			if n < 1 || n > len(state.Contacts) {
				fmt.Println("no such contact")
				continue
			}
			ctrl.Select(ctx, state.Contacts[n-1].ID)
			printMessages(ctrl.State())

		case strings.HasPrefix(line, "/ai "):
			answer, err := api.Ask(ctx, strings.TrimPrefix(line, "/ai "))
			if err != nil {
				fmt.Printf("assistant error: %v\n", err)
				continue
			}
			fmt.Printf("assistant: %s\n", answer)

		default:
			if err := ctrl.Send(ctx, line); err != nil {
				fmt.Printf("send failed: %v\n", err)
			}
			printMessages(ctrl.State())
		}
	}
}

func printContacts(state client.State) {
	for i, c := range state.Contacts {
		marker := " "
		if c.ID == state.Selected {
			marker = "*"
		}
		preview := ""
		if c.LastMessage != nil {
			preview = client.Preview(*c.LastMessage)
		}
		fmt.Printf("%s %2d. %-20s unread=%d online=%v  %s\n",
			marker, i+1, c.Name, c.UnreadCount, c.IsOnline, preview)
	}
}

func printMessages(state client.State) {
	for _, m := range state.Messages {
		fmt.Printf("[%s] %-4s %s (%s)\n", m.Time, m.Sender, client.Preview(m.Content), m.Status)
	}
}
