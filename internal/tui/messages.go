package tui

import (
	"time"

	"github.com/adityjk/news-terminal/internal/pipeline"
)

// listingMsg is sent by the refresh scheduler when a listing completes.
type listingMsg struct {
	listing pipeline.Listing
}

type articleMsg struct {
	outcome pipeline.Outcome
}

type errMsg struct {
	err error
}

type clockMsg time.Time
