package voice

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/models"
)

const (
	Greeting       = "Don online hoon. Boliye, main sun raha hoon."
	PhraseDone     = "Done ho gaya."
	PhraseFailed   = "Kuch masla aaya. Try karo phr se."
	PhraseNotHeard = "Kuch sunai nahi diya. Dobara bolo please."

	DefaultListenTimeout = 3 * time.Second
	DefaultLoopDelay     = 500 * time.Millisecond
)

// ErrNoSpeech means the listener heard nothing before its deadline.
var ErrNoSpeech = errors.New("no speech detected")

// Listener returns one utterance. io.EOF ends the loop.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// ConsoleListener treats each input line as an utterance.
type ConsoleListener struct {
	lines chan string
	done  chan struct{}
}

func NewConsoleListener(r io.Reader) *ConsoleListener {
	l := &ConsoleListener{lines: make(chan string), done: make(chan struct{})}
	go func() {
		defer close(l.done)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			l.lines <- sc.Text()
		}
	}()
	return l
}

func (l *ConsoleListener) Listen(ctx context.Context) (string, error) {
	select {
	case line := <-l.lines:
		return strings.TrimSpace(line), nil
	case <-l.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ErrNoSpeech
	}
}

type Executor interface {
	Execute(ctx context.Context, raw string) models.Result
}

// Sayer is implemented by Speaker.
type Sayer interface {
	Say(ctx context.Context, text string)
}

type Loop struct {
	listener      Listener
	exec          Executor
	speaker       Sayer
	listenTimeout time.Duration
	delay         time.Duration
	logger        logger.Logger
}

func NewLoop(listener Listener, exec Executor, speaker Sayer, l logger.Logger) *Loop {
	return &Loop{
		listener:      listener,
		exec:          exec,
		speaker:       speaker,
		listenTimeout: DefaultListenTimeout,
		delay:         DefaultLoopDelay,
		logger:        logger.Component(l, "voice"),
	}
}

// WithTiming overrides the listen timeout and the pause between turns.
func (lp *Loop) WithTiming(listenTimeout, delay time.Duration) *Loop {
	lp.listenTimeout = listenTimeout
	lp.delay = delay
	return lp
}

// Run listens until ctx is cancelled or the listener reports io.EOF. A
// failed turn never stops the loop.
func (lp *Loop) Run(ctx context.Context) error {
	lp.logger.Info("voice loop started", nil)
	defer lp.logger.Info("voice loop stopped", nil)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := lp.turn(ctx); errors.Is(err, io.EOF) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(lp.delay):
		}
	}
}

// Once runs a single turn and speaks the not-heard phrase on silence.
func (lp *Loop) Once(ctx context.Context) {
	if err := lp.turn(ctx); errors.Is(err, ErrNoSpeech) {
		lp.speaker.Say(ctx, PhraseNotHeard)
	}
}

func (lp *Loop) turn(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			lp.logger.Error("voice turn panicked", map[string]interface{}{"panic": r})
		}
	}()

	lctx, cancel := context.WithTimeout(ctx, lp.listenTimeout)
	text, err := lp.listener.Listen(lctx)
	cancel()
	if err != nil {
		if !errors.Is(err, ErrNoSpeech) && !errors.Is(err, io.EOF) {
			lp.logger.Warn("listen failed", map[string]interface{}{"error": err.Error()})
		}
		return err
	}
	if text == "" {
		return ErrNoSpeech
	}

	lp.logger.Info("heard command", map[string]interface{}{"text": text})
	res := lp.exec.Execute(ctx, text)
	if res.OK {
		lp.speaker.Say(ctx, PhraseDone)
	} else {
		lp.speaker.Say(ctx, PhraseFailed)
	}
	return nil
}
