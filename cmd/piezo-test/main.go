package main

import (
	"fmt"
	"time"

	"github.com/pillsync/alarms/internal/logwriter"
	"github.com/pillsync/alarms/internal/piezo"
)

func main() {
	if err := logwriter.Setup(); err != nil {
		fmt.Printf("logwriter setup err: %v\n", err)
	}

	b := piezo.New()
	p := piezo.DefaultPattern
	p.Duration = 10 * time.Second

	fmt.Println("Starting piezo alarm test for 10 seconds...")
	if err := b.Alarm(p); err != nil {
		fmt.Printf("alarm err: %v\n", err)
	}
	fmt.Println("Done.")

	b.Cleanup()
}
