// Package com has small helpers shared by the connection handlers.
package com

import "github.com/rs/xid"

// ConnId tags the log lines of one stream connection.
// It sorts by creation time and is unique without coordination.
type ConnId struct{ xid.ID }

func NewConnId() ConnId { return ConnId{xid.New()} }

// Short is the tail of the id, where the per process counter lives.
// Enough to tell connections apart in a log.
func (c ConnId) Short() string {
	s := c.String()
	return s[len(s)-6:]
}
