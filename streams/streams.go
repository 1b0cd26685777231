// Package streams provides output adapters for the dotconf Registry. The
// registry writes one line per notable event: a file loaded (Out) or a load
// that failed (ErrOut). Adapters here route those lines to the terminal,
// in-memory buffers, or a structured logger (slog, zap, zerolog).
package streams

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Streams is the contract the registry writes notices to. Either writer may be
// nil, in which case the corresponding notices are dropped.
type Streams interface {
	Out() io.Writer
	ErrOut() io.Writer
}

// Pair is a Streams made of two plain writers.
type Pair struct {
	out    io.Writer
	errOut io.Writer
}

func (p Pair) Out() io.Writer    { return p.out }
func (p Pair) ErrOut() io.Writer { return p.errOut }

// Std writes notices to os.Stdout and failures to os.Stderr.
func Std() Pair {
	return Pair{out: os.Stdout, errOut: os.Stderr}
}

// Writers returns a Pair writing to out and err.
func Writers(out, err io.Writer) Pair {
	return Pair{out: out, errOut: err}
}

// Discard drops everything.
func Discard() Pair {
	return Writers(io.Discard, io.Discard)
}

// lockedBuffer is a bytes.Buffer safe for concurrent writers.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func (l *lockedBuffer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.Reset()
}

// BufferStreams captures output in memory. It is safe for concurrent use,
// which matters because registries are shared between goroutines.
type BufferStreams struct {
	out    lockedBuffer
	errOut lockedBuffer
}

// Buffers returns an empty BufferStreams.
func Buffers() *BufferStreams { return &BufferStreams{} }

func (b *BufferStreams) Out() io.Writer    { return &b.out }
func (b *BufferStreams) ErrOut() io.Writer { return &b.errOut }

// Strings returns what has been written to Out and ErrOut so far.
func (b *BufferStreams) Strings() (out, errOut string) {
	return b.out.String(), b.errOut.String()
}

// Reset empties both buffers.
func (b *BufferStreams) Reset() {
	b.out.Reset()
	b.errOut.Reset()
}

// trimNewline drops one trailing newline so every Write maps to one log record.
func trimNewline(p []byte) string {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	return string(p)
}

type slogWriter struct {
	l     *slog.Logger
	level slog.Level
}

func (w slogWriter) Write(p []byte) (int, error) {
	w.l.Log(context.Background(), w.level, trimNewline(p))
	return len(p), nil
}

// Slog forwards notices to l at level info and failures at level err.
func Slog(l *slog.Logger, info, err slog.Level) Pair {
	return Pair{
		out:    slogWriter{l: l, level: info},
		errOut: slogWriter{l: l, level: err},
	}
}

type zapWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w zapWriter) Write(p []byte) (int, error) {
	if ce := w.l.Check(w.level, trimNewline(p)); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// Zap forwards notices to l at level info and failures at level err.
func Zap(l *zap.Logger, info, err zapcore.Level) Pair {
	return Pair{
		out:    zapWriter{l: l, level: info},
		errOut: zapWriter{l: l, level: err},
	}
}

type zerologWriter struct {
	l     zerolog.Logger
	level zerolog.Level
}

func (w zerologWriter) Write(p []byte) (int, error) {
	w.l.WithLevel(w.level).Msg(trimNewline(p))
	return len(p), nil
}

// Zerolog forwards notices to l at level info and failures at level err.
func Zerolog(l zerolog.Logger, info, err zerolog.Level) Pair {
	return Pair{
		out:    zerologWriter{l: l, level: info},
		errOut: zerologWriter{l: l, level: err},
	}
}
