package engine

import (
	"fmt"

	"github.com/valyala/bytebufferpool"
)

// Commentary lines all share the "{minute}' - ..." shape. Lines are built in
// pooled buffers since a full matchday renders a few hundred of them.

func line(minute int, format string, args ...any) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "%d' - ", minute)
	fmt.Fprintf(buf, format, args...)
	return buf.String()
}

func goalLine(minute int, scorer, teamName string, penalty bool) string {
	if penalty {
		return line(minute, "GOAL! %s converts the penalty for %s", scorer, teamName)
	}
	return line(minute, "GOAL! %s scores for %s", scorer, teamName)
}

func cardLine(minute int, card, playerName, teamName string) string {
	return line(minute, "%s for %s (%s)", card, playerName, teamName)
}

func subLine(minute int, onName, offName, teamName string) string {
	return line(minute, "Substitution for %s: %s replaces %s", teamName, onName, offName)
}

func cornerLine(minute int, teamName string) string {
	return line(minute, "Corner kick for %s", teamName)
}

func freeKickLine(minute int, teamName, location string) string {
	if location == "dangerous" {
		return line(minute, "Free kick for %s in a dangerous position", teamName)
	}
	return line(minute, "Free kick for %s", teamName)
}

func offsideLine(minute int, playerName string) string {
	return line(minute, "%s is caught offside", playerName)
}

func injuryLine(minute int, playerName, injuryType string) string {
	return line(minute, "%s goes down injured (%s)", playerName, injuryType)
}

func penaltyLine(minute int, teamName string) string {
	return line(minute, "PENALTY awarded to %s!", teamName)
}

func penaltyMissLine(minute int, teamName string) string {
	return line(minute, "The penalty is saved! %s cannot convert", teamName)
}
