package config

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/jakob/songfone/internal/util"
)

// MaxConversionWorkers is the hard upper bound on conversion parallelism,
// whatever the configured expression evaluates to
const MaxConversionWorkers = 512

var threadsExpr = regexp.MustCompile(`^(?:(\d+)|cpus *(?:([+\-*/]) *(\d+))?)$`)

// ParseThreads evaluates the max_conversion_threads setting. Accepted forms
// are a plain integer or an expression over the CPU count, e.g. "cpus",
// "cpus - 2", "CPUs/4". The result is clamped to [1, MaxConversionWorkers].
func ParseThreads(value string) (int, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	m := threadsExpr.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf(
			"max_conversion_threads expression %q is invalid, use only 'cpus [+|-|*|/ <number>]': %w",
			value, util.ErrInvalidConfig)
	}

	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("max_conversion_threads %q: %w", value, util.ErrInvalidConfig)
		}
		return clampThreads(n), nil
	}

	cpus := runtime.NumCPU()
	if m[2] == "" {
		return clampThreads(cpus), nil
	}

	n, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, fmt.Errorf("max_conversion_threads %q: %w", value, util.ErrInvalidConfig)
	}

	switch m[2] {
	case "+":
		cpus += n
	case "-":
		cpus -= n
	case "*":
		cpus *= n
	case "/":
		if n == 0 {
			return 0, fmt.Errorf("max_conversion_threads %q divides by zero: %w", value, util.ErrInvalidConfig)
		}
		cpus /= n
	}
	return clampThreads(cpus), nil
}

func clampThreads(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConversionWorkers {
		return MaxConversionWorkers
	}
	return n
}
