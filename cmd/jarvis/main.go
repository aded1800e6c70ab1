// Jarvis voice-command front end.
//
// Listens for transcribed speech on the event bus (or stdin when no NATS is
// configured) and drives the YouTube resolution engine against a live Chrome
// session. One command runs at a time; the browser is a shared resource.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"jarvis/browser"
	"jarvis/episodes"
	"jarvis/eventbus"
	"jarvis/ocr"
	"jarvis/speech"
	"jarvis/youtube"
)

func main() {
	_ = godotenv.Load()

	var (
		natsURL   = flag.String("nats", os.Getenv("NATS_URL"), "NATS URL for transcript events (empty: read stdin)")
		redisAddr = flag.String("redis", os.Getenv("REDIS_ADDR"), "Redis addr for episode recording (empty: disabled)")
	)
	flag.Parse()

	sess, err := browser.Attach(browser.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to attach browser session: %v", err)
	}
	defer sess.Close()

	if cur, err := sess.CurrentURL(); err == nil && !strings.Contains(cur, "youtube.com") {
		if err := sess.Navigate("https://www.youtube.com/"); err != nil {
			log.Printf("⚠️ Could not open YouTube: %v", err)
		}
	}

	var langs []string
	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		langs = strings.Split(v, ",")
	}
	rec := ocr.NewTesseract(langs...)

	var bus *eventbus.NATSBus
	var ann speech.Announcer = speech.LogAnnouncer{}
	if *natsURL != "" {
		bus, err = eventbus.NewNATSBus(eventbus.NATSConfig{URL: *natsURL})
		if err != nil {
			log.Printf("⚠️ NATS unavailable, speaking to the log instead: %v", err)
			bus = nil
		} else {
			defer bus.Close()
			ann = speech.NewBusAnnouncer(bus, "jarvis")
			log.Printf("✅ Connected to NATS at %s", *natsURL)
		}
	}

	var eps *episodes.Recorder
	if *redisAddr != "" {
		eps = episodes.NewRecorder(*redisAddr, "jarvis:episodes")
		defer eps.Close()
		log.Printf("✅ Episode recording to Redis at %s", *redisAddr)
	}

	resolver := youtube.NewResolver(sess, rec, ann, eps)

	// Commands are serialized through a channel regardless of their source.
	commands := make(chan string, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if bus != nil {
		_, err := bus.Subscribe(ctx, eventbus.TypeTranscript, func(evt eventbus.Event) {
			text := strings.TrimSpace(evt.Payload.Text)
			if text == "" {
				return
			}
			select {
			case commands <- text:
			default:
				log.Printf("⚠️ Command queue full, dropping: %q", text)
			}
		})
		if err != nil {
			log.Fatalf("Failed to subscribe to transcripts: %v", err)
		}
		log.Printf("🎤 Listening for transcript events")
	} else {
		go readStdin(commands)
		log.Printf("⌨️ No NATS configured, reading commands from stdin")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			log.Printf("👋 Shutting down")
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			lower := strings.ToLower(strings.TrimSpace(cmd))
			if lower == "exit" || lower == "quit" || lower == "stop listening" {
				log.Printf("👋 Shutting down")
				return
			}
			out := resolver.ExecuteCommand(cmd)
			log.Printf("🎯 %s: %s", out.Kind, out.Message)
			if out.Kind == youtube.OutcomeSessionLost {
				log.Printf("❌ Browser session lost, exiting")
				return
			}
		}
	}
}

func readStdin(commands chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			commands <- line
		}
	}
	close(commands)
}
