package spanlog

import (
	"sort"
	"strings"

	"github.com/max-chem-eng/spanlog/models"
)

// Filter decides whether an event or span of level emitted by target reaches
// the sinks. It is evaluated before an event is built.
type Filter func(target string, level models.Level) bool

// LevelFilter enables every target at min and above.
func LevelFilter(min models.Level) Filter {
	return func(_ string, level models.Level) bool {
		return level >= min
	}
}

type directive struct {
	target string
	min    models.Level
	off    bool
}

func (d directive) enabled(level models.Level) bool {
	return !d.off && level >= d.min
}

// ParseFilter parses a comma separated filter specification such as
//
//	warn,github.com/acme/app=debug,github.com/acme/app/db=off
//
// A bare level sets the default for all targets; target=level overrides it for
// targets with that package path prefix, the longest prefix winning. An empty
// specification yields INFO for every target.
func ParseFilter(spec string) (Filter, error) {
	def := directive{min: models.LevelInfo}
	var targets []directive

	for _, raw := range strings.Split(spec, ",") {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}
		target, levelName, hasTarget := strings.Cut(part, "=")
		if !hasTarget {
			levelName = target
		}
		d, err := parseDirective(levelName)
		if err != nil {
			return nil, &ConfigurationError{Setting: "filter", Value: spec, Err: err}
		}
		if !hasTarget {
			def = d
			continue
		}
		d.target = strings.TrimSpace(target)
		if d.target == "" {
			return nil, &ConfigurationError{Setting: "filter", Value: spec, Err: errEmptyTarget}
		}
		targets = append(targets, d)
	}

	// Longest prefix first, so the first match is the most specific one.
	sort.SliceStable(targets, func(i, j int) bool {
		return len(targets[i].target) > len(targets[j].target)
	})

	return func(target string, level models.Level) bool {
		for _, d := range targets {
			if matchesTarget(target, d.target) {
				return d.enabled(level)
			}
		}
		return def.enabled(level)
	}, nil
}

func parseDirective(name string) (directive, error) {
	if strings.EqualFold(strings.TrimSpace(name), "off") {
		return directive{off: true}, nil
	}
	level, err := models.ParseLevel(name)
	if err != nil {
		return directive{}, err
	}
	return directive{min: level}, nil
}

// matchesTarget reports whether target is prefix or lies below it in the
// package path hierarchy.
func matchesTarget(target, prefix string) bool {
	if !strings.HasPrefix(target, prefix) {
		return false
	}
	if len(target) == len(prefix) {
		return true
	}
	next := target[len(prefix)]
	return next == '/' || next == '.' || strings.HasSuffix(prefix, "/")
}
