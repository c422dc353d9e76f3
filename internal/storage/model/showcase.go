package model

import (
	"strings"
)

type ShowcaseProject struct {
	GuildScopedEntity
	UserID      Snowflake
	ProjectName string
	Description string
	URL         string
	Tags        []string
}

// JoinTags flattens tags into the comma separated column format, dropping blanks.
func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
