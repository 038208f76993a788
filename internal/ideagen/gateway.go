// Package ideagen turns a topic into exactly five content ideas.
//
// The Gateway has three paths and the same result shape on each:
//
//	no API key      → demo templates, no network call
//	live call ok    → the generator's lines, padded or truncated to five
//	live call fails → a second template set; the error is logged, never returned
package ideagen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/logging"
	"github.com/sakif/creatorverse/internal/metrics"
)

// Count is the number of ideas every Generate call returns.
const Count = 5

// Ideas is a full set of generated ideas. Every element is non-empty.
type Ideas [Count]string

// Source says which path produced a result.
type Source string

const (
	SourceDemo     Source = "demo"
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result is what Generate returns.
type Result struct {
	Ideas  Ideas  `json:"ideas"`
	Source Source `json:"source"`
}

// Generator is the external text service. Complete returns the raw
// completion text for topic, one idea per line.
type Generator interface {
	Complete(ctx context.Context, topic string) (string, error)
}

// Gateway wraps a Generator with the demo and fallback paths.
type Gateway struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGateway creates a Gateway. A nil gen means no API key is configured and
// every call is served from the demo templates. timeout bounds each live call.
func NewGateway(gen Generator, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Gateway {
	return &Gateway{
		gen:     gen,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Demo reports whether the gateway runs without a live generator.
func (g *Gateway) Demo() bool {
	return g.gen == nil
}

// Generate returns five ideas for topic. It never fails; the caller is
// expected to have rejected an empty topic already.
func (g *Gateway) Generate(ctx context.Context, topic string) Result {
	if g.gen == nil {
		g.metrics.ObserveIdeaGeneration(string(SourceDemo))
		return Result{Ideas: fromTemplates(demoTemplates, topic), Source: SourceDemo}
	}

	text, err := g.complete(ctx, topic)
	if err == nil {
		var ideas Ideas
		ideas, err = normalize(text, topic)
		if err == nil {
			g.metrics.ObserveIdeaGeneration(string(SourceLive))
			return Result{Ideas: ideas, Source: SourceLive}
		}
	}

	logging.LogWarn(g.logger, "idea generation failed, serving fallback ideas",
		apperror.ExternalService("idea generator", err))
	g.metrics.ObserveIdeaGeneration(string(SourceFallback))
	return Result{Ideas: fromTemplates(fallbackTemplates, topic), Source: SourceFallback}
}

// complete makes the single live attempt. The call runs in its own
// goroutine so the timeout holds even if the generator ignores ctx, and a
// panic inside the generator is turned into an error.
func (g *Gateway) complete(ctx context.Context, topic string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("ideagen: generator panicked: %v", p)}
			}
		}()
		text, err := g.gen.Complete(ctx, topic)
		done <- outcome{text: text, err: err}
	}()

	select {
	case o := <-done:
		return o.text, o.err
	case <-ctx.Done():
		return "", fmt.Errorf("ideagen: generator call: %w", ctx.Err())
	}
}

// normalize splits text into trimmed non-blank lines and forces the count
// to exactly Count. Text with no usable line at all is treated as malformed.
func normalize(text, topic string) (Ideas, error) {
	var ideas Ideas

	n := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ideas[n] = line
		n++
		if n == Count {
			return ideas, nil
		}
	}

	if n == 0 {
		return ideas, fmt.Errorf("ideagen: generator returned no ideas")
	}

	for ; n < Count; n++ {
		ideas[n] = padding(topic)
	}
	return ideas, nil
}
