package report

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const value = `(\d+(?:\.\d+)?[A-Za-z]*)`

var (
	runningRe    = regexp.MustCompile(`(?m)^[ \t]*Running[ \t]+(\d+(?:\.\d+)?[a-z]*)[ \t]+test[ \t]+@[ \t]+(\S+)`)
	threadsRe    = regexp.MustCompile(`(?m)^[ \t]*(\d+)[ \t]+threads?[ \t]+and[ \t]+(\d+)[ \t]+connections?`)
	latencyRe    = regexp.MustCompile(`(?m)^[ \t]*Latency[ \t]+` + value + `[ \t]+` + value + `[ \t]+` + value)
	reqSecRe     = regexp.MustCompile(`(?m)^[ \t]*Req/Sec[ \t]+` + value + `[ \t]+` + value + `[ \t]+` + value)
	summaryRe    = regexp.MustCompile(`(?m)^[ \t]*(\d+)[ \t]+requests[ \t]+in[ \t]+(\d+(?:\.\d+)?)(us|ms|s|m|h),[ \t]+(\d+(?:\.\d+)?[KMGTP]?B)[ \t]+read`)
	rpsRe        = regexp.MustCompile(`(?m)^[ \t]*Requests/sec:[ \t]+(\d+(?:\.\d+)?)`)
	transferRe   = regexp.MustCompile(`(?m)^[ \t]*Transfer/sec:[ \t]+(\d+(?:\.\d+)?[KMGTP]?B)`)
	socketRe     = regexp.MustCompile(`(?m)^[ \t]*Socket errors:[ \t]*(.+?)[ \t]*$`)
	socketItemRe = regexp.MustCompile(`^[ \t]*([A-Za-z]+)[ \t]+(\d+)[ \t]*$`)
	nonSuccessRe = regexp.MustCompile(`(?m)^[ \t]*Non-2xx or 3xx responses:[ \t]+(\d+)`)
	distHeadRe   = regexp.MustCompile(`(?m)^[ \t]*Latency Distribution[ \t]*$`)
	distLineRe   = regexp.MustCompile(`^[ \t]*(\d+(?:\.\d+)?%)[ \t]+` + value + `[ \t]*$`)
)

// Parse extracts metrics from a wrk text report. It never fails: a pattern
// that does not match leaves its field unset, so callers must treat every
// field as optional.
func Parse(raw string) Record {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var r Record

	if m := runningRe.FindStringSubmatch(raw); m != nil {
		r.TestDuration = m[1]
		r.URL = m[2]
	}

	if m := threadsRe.FindStringSubmatch(raw); m != nil {
		r.Threads = atoi(m[1])
		r.Connections = atoi(m[2])
	}

	if m := latencyRe.FindStringSubmatch(raw); m != nil {
		r.Latency = &Distribution{Avg: m[1], Stdev: m[2], Max: m[3]}
	}

	if m := reqSecRe.FindStringSubmatch(raw); m != nil {
		r.ThreadRequestsPerSec = &Distribution{Avg: m[1], Stdev: m[2], Max: m[3]}
	}

	r.LatencyDistribution = parseDistribution(raw)

	if m := summaryRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			r.TotalRequests = &n
		}
		if d, err := time.ParseDuration(m[2] + m[3]); err == nil {
			secs := d.Seconds()
			r.TotalDuration = &secs
		}
		r.DataRead = m[4]
	}

	if m := rpsRe.FindStringSubmatch(raw); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			r.RequestsPerSec = &f
		}
	}

	if m := transferRe.FindStringSubmatch(raw); m != nil {
		r.TransferPerSec = m[1]
	}

	if m := socketRe.FindStringSubmatch(raw); m != nil {
		r.SocketErrors = parseSocketErrors(m[1])
	}

	if m := nonSuccessRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			r.NonSuccess = &n
		}
	}

	return r
}

// parseSocketErrors turns "connect 5, read 2" into {"connect": 5, "read": 2}.
// Malformed items are skipped.
func parseSocketErrors(list string) map[string]int {
	out := make(map[string]int)
	for _, item := range strings.Split(list, ",") {
		m := socketItemRe.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		out[strings.ToLower(m[1])] = n
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseDistribution reads the percentile block wrk prints after
// "Latency Distribution" when run with --latency.
func parseDistribution(raw string) map[string]string {
	loc := distHeadRe.FindStringIndex(raw)
	if loc == nil {
		return nil
	}

	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(raw[loc[1]:]))
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			// remainder of the header line
			first = false
			if strings.TrimSpace(line) == "" {
				continue
			}
		}
		m := distLineRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		out[m[1]] = m[2]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func atoi(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
