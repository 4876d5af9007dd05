package main

import (
	"fmt"
	"time"

	"github.com/pillsync/alarms/internal/logwriter"
	"github.com/pillsync/alarms/internal/pixel"
)

func main() {
	if err := logwriter.Setup(); err != nil {
		fmt.Printf("logwriter setup err: %v\n", err)
	}

	s := pixel.New()
	p := pixel.DefaultPattern
	p.Duration = 10 * time.Second

	fmt.Println("Starting pixel alarm test for 10 seconds...")
	if err := s.Alarm(p); err != nil {
		fmt.Printf("alarm err: %v\n", err)
	}
	fmt.Println("Done.")

	s.Cleanup()
}
