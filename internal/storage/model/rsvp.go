package model

import (
	"fmt"
	"strings"
	"time"
)

type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPDeclined RSVPStatus = "declined"
)

// ParseRSVPStatus maps user input to a status. An empty string means going.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	switch st := RSVPStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return RSVPGoing, nil
	case RSVPGoing, RSVPMaybe, RSVPDeclined:
		return st, nil
	default:
		return "", fmt.Errorf("unknown rsvp status %q", s)
	}
}

type EventRSVP struct {
	GuildScopedEntity
	UserID    Snowflake
	EventName string
	EventDate *time.Time
	Status    RSVPStatus
}
