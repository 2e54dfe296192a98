package api

import (
	"context"
	"fmt"
	"net/url"
)

// Ask submits a free-text question to the AI service and returns the
// structured study answer.
func (c *Client) Ask(ctx context.Context, question string) (*Answer, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var answer Answer
	if err := c.post(ctx, "/ai/ask/", askRequest{Question: question}, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// Conversations lists the caller's past Q&A exchanges.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var conversations []Conversation
	if err := c.get(ctx, &url.URL{Path: "/ai/conversations/"}, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}
