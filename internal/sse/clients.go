// Package sse provides Server-Sent Events client management for live reload.
package sse

import (
	"sync"
)

type Client struct {
	Msg  chan string
	Slug string
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
	close(client.Msg)
}

// Broadcast delivers msg to every client watching slug. Slow clients are
// skipped rather than blocking the reload loop.
func (s *SSEClients) Broadcast(slug, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.Slug == slug {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}
