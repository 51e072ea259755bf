package resolver

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// trace.go renders solver internals for debugging, the way the teacher's
// trace.go renders its own search steps: one line per event, gated behind
// a debug level check so the formatting cost disappears when nobody is
// looking, using the glyphs (success, failure, backtrack) the teacher
// reuses throughout its own search trace output.
const (
	glyphAssign    = "→"
	glyphWipeout   = "✗"
	glyphBacktrack = "←"
	glyphIncumbent = "✓"
)

func traceAssign(log *logrus.Logger, depth int, pkg string, candidate int) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	val := "ABSENT"
	if candidate != absent {
		val = versionLabel(candidate)
	}
	log.WithFields(logrus.Fields{"depth": depth, "package": pkg, "try": val}).Debug(glyphAssign + " trying")
}

func traceWipeout(log *logrus.Logger, pkg string, c conflict) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	log.WithField("package", pkg).Debug(glyphWipeout+" wipeout: ", c.String())
}

func traceBacktrack(log *logrus.Logger, pkg string) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	log.WithField("package", pkg).Debug(glyphBacktrack + " backtracking")
}

func traceIncumbent(log *logrus.Logger, tuple scoreTuple) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	log.WithFields(logrus.Fields{
		"top_level":     tuple.topLevel,
		"induced_count": tuple.inducedCount,
	}).Debug(glyphIncumbent + " new incumbent")
}

func versionLabel(idx int) string {
	return "#" + strconv.Itoa(idx)
}
