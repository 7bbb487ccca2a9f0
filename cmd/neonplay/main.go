// neonplay is a terminal client for the card-matching game. It plays a
// board interactively, saves snapshots locally, and records finished games
// with the backend when logged in.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/apiclient"
	"github.com/neonmatrix/neonmatrix/internal/game"
	"github.com/neonmatrix/neonmatrix/internal/logging"
	"github.com/neonmatrix/neonmatrix/internal/persist"
)

const settleDelay = time.Second

func main() {
	serverURL := flag.String("server", envDefault("NEONPLAY_SERVER", "http://localhost:3001"), "backend URL")
	email := flag.String("email", os.Getenv("NEONPLAY_EMAIL"), "account email (empty for offline play)")
	password := flag.String("password", os.Getenv("NEONPLAY_PASSWORD"), "account password")
	difficulty := flag.String("difficulty", "easy", "easy, medium or hard")
	savePath := flag.String("saves", envDefault("NEONPLAY_SAVES", "neonplay-saves.json"), "snapshot file")
	resumeID := flag.String("resume", "", "resume a saved game by snapshot id")
	flag.Parse()

	logger := logging.Setup(os.Getenv("NEONPLAY_LOG_LEVEL"))

	var remote persist.SessionSink
	var client *apiclient.Client
	if *email != "" {
		client = apiclient.New(*serverURL)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := client.Login(ctx, *email, *password)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		remote = client
		fmt.Println("Logged in as", *email)
	} else {
		fmt.Println("Playing offline; finished games are saved locally only.")
	}

	snapshots := persist.NewSnapshotStore(*savePath)
	recorder := persist.NewRecorder(snapshots, remote, logger)

	var g *game.Game
	var err error
	if *resumeID != "" {
		snap, getErr := snapshots.Get(*resumeID)
		if getErr != nil {
			fmt.Fprintf(os.Stderr, "load save: %v\n", getErr)
			os.Exit(1)
		}
		if snap == nil {
			fmt.Fprintf(os.Stderr, "no save with id %s\n", *resumeID)
			os.Exit(1)
		}
		g, err = game.Restore(*snap)
	} else {
		g, err = game.New(game.Difficulty(*difficulty), rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "start game: %v\n", err)
		os.Exit(1)
	}
	recorder.Attach(g)

	play(g, recorder, client)
}

func play(g *game.Game, recorder *persist.Recorder, client *apiclient.Client) {
	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- strings.TrimSpace(scanner.Text())
		}
		close(input)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var settleC <-chan time.Time

	render(g)
	prompt(g)

	for {
		select {
		case <-ticker.C:
			g.Tick()

		case <-settleC:
			settleC = nil
			g.Settle()
			render(g)
			prompt(g)

		case line, ok := <-input:
			if !ok {
				return
			}
			switch {
			case line == "q":
				return

			case line == "p":
				if g.Paused() {
					g.Resume()
					fmt.Println("Resumed.")
				} else {
					g.Pause()
					fmt.Println("Paused.")
				}

			case line == "s":
				snap, err := recorder.SaveNow(time.Now())
				if err != nil {
					fmt.Println("save failed:", err)
				} else {
					fmt.Println("Saved as", snap.ID)
				}

			case line == "b" && client != nil:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				profile, err := client.Profile(ctx)
				cancel()
				if err != nil {
					fmt.Println("profile failed:", err)
				} else {
					fmt.Println("Balance:", profile.Balance)
				}

			default:
				id, err := strconv.Atoi(line)
				if err != nil {
					fmt.Println("Enter a card number, or p (pause), s (save), q (quit).")
					continue
				}
				if !g.Flip(id) {
					fmt.Println("Can't flip that card right now.")
					continue
				}
				render(g)
				if g.PendingSettle() {
					settleC = time.After(settleDelay)
				}
				if g.Over() {
					finish(g, recorder)
					return
				}
				prompt(g)
			}
		}
	}
}

func finish(g *game.Game, recorder *persist.Recorder) {
	fmt.Printf("\nYou won in %d moves and %d seconds!\n", g.Moves(), g.Elapsed())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recorded, err := recorder.MaybeRecord(ctx, time.Now())
	if err != nil {
		fmt.Println("could not save the finished game:", err)
		return
	}
	if recorded {
		fmt.Println("Game recorded.")
	}
}

// render prints the board. Face-down cards show their index, face-up and
// matched cards show their face number.
func render(g *game.Game) {
	cards := g.Cards()
	perRow := 5
	for i, c := range cards {
		switch {
		case c.Matched:
			fmt.Printf("  [%2s] ", face(c.Value))
		case c.Flipped:
			fmt.Printf("  >%2s< ", face(c.Value))
		default:
			fmt.Printf("  .%2d. ", c.ID)
		}
		if (i+1)%perRow == 0 {
			fmt.Println()
		}
	}
	if len(cards)%perRow != 0 {
		fmt.Println()
	}
}

func prompt(g *game.Game) {
	fmt.Printf("moves=%d time=%ds matched=%d/%d > ", g.Moves(), g.Elapsed(), g.MatchedCount(), len(g.Cards()))
}

// face extracts the image number from a face value like "/images/image3.png".
func face(value string) string {
	s := strings.TrimPrefix(value, "/images/image")
	return strings.TrimSuffix(s, ".png")
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
