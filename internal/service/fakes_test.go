package service

import (
	"context"
	"sync"

	"github.com/organizai/organizai/internal/model"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.XPEventType
}

func (p *recordingPublisher) PublishAsync(_ string, t model.XPEventType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, t)
}

func (p *recordingPublisher) count(t model.XPEventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == t {
			n++
		}
	}
	return n
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) InvalidateDashboard(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
