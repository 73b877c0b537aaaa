package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"budgeter/internal/banwatch"
	"budgeter/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// tokenSession holds the session token in memory and, optionally, on disk
type tokenSession struct {
	mu    sync.Mutex
	token string
	file  string
	log   *logrus.Entry
}

func (s *tokenSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *tokenSession) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.file != "" {
		if err := os.Remove(s.file); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).Warn("Failed to remove token file")
		}
	}
	s.log.Info("Signed out")
}

type exitNavigator struct {
	cancel context.CancelFunc
}

func (n exitNavigator) Navigate(route string) {
	fmt.Printf("-> navigating to %s\n", route)
	n.cancel()
}

type printObserver struct{}

func (printObserver) OnStateChange(s banwatch.Snapshot) {
	switch s.State {
	case banwatch.BanDetected:
		reason := "no reason given"
		if s.Ban != nil && s.Ban.Reason != nil {
			reason = *s.Ban.Reason
		}
		until := "permanently"
		if s.Ban != nil && s.Ban.BannedUntil != nil {
			until = "until " + s.Ban.BannedUntil.Local().Format(time.RFC1123)
		}
		fmt.Printf("Your account has been banned %s: %s. Leaving in %ds\n", until, reason, s.Countdown)
	case banwatch.Clean:
		fmt.Println("session ok")
	}
}

func main() {
	_ = godotenv.Load()

	logger, err := logging.New(logging.Options{Level: getEnv("LOG_LEVEL", "info"), Format: getEnv("LOG_FORMAT", "text")})
	if err != nil {
		logrus.Fatalf("Failed to initialize logging: %v", err)
	}
	log := logrus.NewEntry(logger)

	session := &tokenSession{token: os.Getenv("BUDGETER_TOKEN"), file: os.Getenv("BUDGETER_TOKEN_FILE"), log: log}
	if session.token == "" && session.file != "" {
		raw, err := os.ReadFile(session.file)
		if err != nil {
			log.Fatalf("Failed to read token file: %v", err)
		}
		session.token = string(trimNewline(raw))
	}
	if session.token == "" {
		log.Fatal("BUDGETER_TOKEN or BUDGETER_TOKEN_FILE is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, err := banwatch.New(banwatch.Options{
		Checker: &banwatch.HTTPChecker{
			BaseURL: getEnv("BUDGETER_URL", "http://localhost:8080"),
			Token:   session.Token,
			Client:  &http.Client{Timeout: banwatch.CheckTimeout},
		},
		Session:   session,
		Navigator: exitNavigator{cancel: cancel},
		Observer:  printObserver{},
		Logger:    log,
	})
	if err != nil {
		log.Fatalf("Failed to create poller: %v", err)
	}
	if err := p.Start(ctx); err != nil {
		log.Fatalf("Failed to start poller: %v", err)
	}

	// Each line on stdin stands in for the window regaining focus
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			p.Foreground()
		}
	}()

	<-p.Done()
	p.Stop()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r' || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	return b
}
