package security

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
)

// AbuseDetector scans inbound requests for injection and scanner patterns
// and tracks per-IP strikes. It blocks only after repeated offenses so a
// false positive never locks a citizen out on first contact.
type AbuseDetector struct {
	logger  *slog.Logger
	strikes map[string]*offender
	mutex   sync.RWMutex
}

type offender struct {
	count    int
	lastSeen time.Time
	patterns []string
}

// blockThreshold is the strike count after which an IP is refused
const blockThreshold = 10

var (
	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)union\s+select`),
		regexp.MustCompile(`(?i)or\s+1\s*=\s*1`),
		regexp.MustCompile(`(?i)drop\s+table`),
		regexp.MustCompile(`(?i)<script[^>]*>`),
		regexp.MustCompile(`(?i)javascript:`),
	}
	traversalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.\./`),
		regexp.MustCompile(`%2e%2e%2f`),
	}
	scannerAgents = []*regexp.Regexp{
		regexp.MustCompile(`(?i)sqlmap`),
		regexp.MustCompile(`(?i)nikto`),
		regexp.MustCompile(`(?i)nmap`),
		regexp.MustCompile(`(?i)burpsuite`),
	}
)

func NewAbuseDetector(logger *slog.Logger) *AbuseDetector {
	d := &AbuseDetector{
		logger:  logger.With("component", "abuse"),
		strikes: make(map[string]*offender),
	}

	go d.cleanup()
	return d
}

// Inspect scans one request. It returns false when the IP has accumulated
// enough strikes to be blocked; a single suspicious request is recorded and
// logged but still allowed through.
func (d *AbuseDetector) Inspect(ip, userAgent, target string) bool {
	var matched []string

	for _, p := range injectionPatterns {
		if p.MatchString(target) {
			matched = append(matched, "injection")
			break
		}
	}
	for _, p := range traversalPatterns {
		if p.MatchString(target) {
			matched = append(matched, "traversal")
			break
		}
	}
	for _, p := range scannerAgents {
		if p.MatchString(userAgent) {
			matched = append(matched, "scanner")
			break
		}
	}

	if len(matched) > 0 {
		d.record(ip, matched)
	}

	return !d.IsBlocked(ip)
}

// IsBlocked reports whether the IP has crossed the strike threshold
func (d *AbuseDetector) IsBlocked(ip string) bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	o, exists := d.strikes[ip]
	return exists && o.count >= blockThreshold
}

func (d *AbuseDetector) record(ip string, patterns []string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	o, exists := d.strikes[ip]
	if !exists {
		o = &offender{}
		d.strikes[ip] = o
	}

	o.count++
	o.lastSeen = time.Now()
	o.patterns = append(o.patterns, patterns...)

	d.logger.Warn("suspicious request recorded",
		"ip", ip,
		"strikes", o.count,
		"patterns", strings.Join(patterns, ","))
}

func (d *AbuseDetector) cleanup() {
	for {
		time.Sleep(30 * time.Minute)

		d.mutex.Lock()
		for ip, o := range d.strikes {
			if time.Since(o.lastSeen) > time.Hour {
				delete(d.strikes, ip)
			}
		}
		d.mutex.Unlock()
	}
}
