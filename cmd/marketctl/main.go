// Command marketctl browses the marketplace and manages offers from the
// terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"startup_market/internal/apiclient"
	"startup_market/internal/store"
	"startup_market/internal/utils"

	"github.com/joho/godotenv"
)

const usage = `usage: marketctl <command> [flags]

commands:
  login       sign in with email and password
  demo-login  sign in as the demo buyer or seller
  logout      end the session
  whoami      show the signed-in user
  explore     filter, sort and page through listings
  offer       make an offer on a listing
  stats       show the market summary
`

type app struct {
	session *store.SessionStore
	client  *apiclient.Client
	out     io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":      runLogin,
	"demo-login": runDemoLogin,
	"logout":     runLogout,
	"whoami":     runWhoami,
	"explore":    runExplore,
	"offer":      runOffer,
	"stats":      runStats,
}

func storagePath() string {
	if p := os.Getenv("MARKETCTL_STORAGE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".marketctl", "storage.json")
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("marketctl: ")
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	session := store.NewSessionStore(store.NewFileStorage(storagePath()))
	a := &app{
		session: session,
		client:  apiclient.New(apiclient.ConfigFromEnv(), session, nil),
		out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, a, os.Args[2:]); err != nil {
		log.Printf("%s: %v", os.Args[1], err)
		stop()
		os.Exit(1)
	}
}

func pageSizeFromEnv() int {
	return utils.GetEnvAsInt("PAGE_SIZE", 0)
}
