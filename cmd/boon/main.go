// Command boon runs a Boon module from a directory, driving its top-level
// bindings until interrupted.
//
// It loads boon.yaml (if present) and the module's entry file through
// [boon.VFS], attaches a console [boon.Bridge] that prints every binding's
// firings to stderr, and exits cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bassosimone/boon"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[boon] ")

	dir := flag.String("dir", ".", "module directory containing boon.yaml and its entry file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	bridge := boon.NewConsoleBridge(logger)

	vfs := boon.NewVFS(*dir, bridge, nil, logger, nil)
	defer vfs.Close()

	nodes, err := vfs.Load(ctx)
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	var wg sync.WaitGroup
	for name, node := range nodes {
		id := boon.NewPersistenceID(*dir).Child(name, 0)
		wg.Add(1)
		go func(id boon.PersistenceId, node *boon.Node) {
			defer wg.Done()
			boon.RenderLoop(ctx, bridge, id, node)
		}(id, node)
	}

	<-ctx.Done()
	log.Println("shutting down...")
	vfs.Close()
	wg.Wait()
	log.Println("stopped")
}
