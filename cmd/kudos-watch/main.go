// Tails the notification channel of a running kudos server and prints
// every broadcast event, mostly useful when debugging award flows.
//
// Usage:
//
//	kudos-watch [ws://host:port/ws]
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kudos/wsclient"
)

func main() {
	url := "ws://localhost:5000/ws"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	client := wsclient.New(wsclient.Config{
		URL:         url,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		MaxAttempts: 10,
	})

	client.OnEvent(func(event wsclient.Event) {
		switch event.Type {
		case wsclient.EventPointsAwarded:
			fmt.Printf("[%s] employee %d: %+d points (%s)\n",
				event.Type, event.EmployeeID, event.Points, event.Reason)
		case wsclient.EventAchievementUnlocked:
			fmt.Printf("[%s] employee %d unlocked %q\n",
				event.Type, event.EmployeeID, event.AchievementName)
		case wsclient.EventRankChanged:
			fmt.Printf("[%s] new rank #%d\n", event.Type, event.NewRank)
		default:
			fmt.Printf("[%s] %+v\n", event.Type, event)
		}
	})

	if err := client.Connect(); err != nil {
		log.Printf("Initial connect failed, retrying: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	client.Close()
	fmt.Println("bye")
}
