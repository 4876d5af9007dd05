// alarm-test exercises both alarm drivers at once, the way the
// reminder scheduler fires them when a dose is due. The drivers are
// independent, each one still sees a single caller.
package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pillsync/alarms/internal/logwriter"
	"github.com/pillsync/alarms/internal/piezo"
	"github.com/pillsync/alarms/internal/pixel"
)

func main() {
	if err := logwriter.Setup(); err != nil {
		fmt.Printf("logwriter setup err: %v\n", err)
	}

	b := piezo.New()
	s := pixel.New()

	bp := piezo.DefaultPattern
	bp.Duration = 10 * time.Second
	sp := pixel.DefaultPattern
	sp.Duration = 10 * time.Second

	fmt.Println("Starting combined alarm test for 10 seconds...")

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error { return b.Alarm(bp) })
	g.Go(func() error { return s.Alarm(sp) })
	if err := g.Wait(); err != nil {
		fmt.Printf("alarm err: %v\n", err)
	}

	fmt.Println("Done.")

	b.Cleanup()
	s.Cleanup()
}
