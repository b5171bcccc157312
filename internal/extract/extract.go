// Package extract implements the Extraction Worker: the eighteen
// regex-driven classifier functions applied to decompressed HTML from a
// batch file, plus the dispatcher that drives them over a record set.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BumpyClock/netindexer"
)

// Functions lists the names accepted by --function.
var Functions = map[string]bool{
	"error": true, "ip": true, "server": true, "headers": true, "raw_html": true,
	"html": true, "title": true, "generator": true, "poweredby": true, "links": true,
	"scripts": true, "hiddenwp": true, "phpinfo": true, "indexof": true,
	"adminpanel": true, "s3bucket": true, "max": true, "regexmatch": true,
}

// maxKeywords is the fixed keyword set the "max" function matches a page
// title against.
var maxKeywords = regexp.MustCompile(`(?i)(phpmyadmin|phpldapadmin|tivoli|nas|san|sap|torrent|router|switch|webcam|scada|plc|nvr|storage|ipmi|firewall|grafana|prometheus|dashboard|kubernetes|swagger|jira|redmine|confluence|mantis|nagios|icinga)`)

var (
	titleRe      = regexp.MustCompile(`(?im)<title>(.*?)</title>`)
	generatorRe  = regexp.MustCompile(`(?im)<meta name="generator" content="(.*?)" />`)
	linksRe      = regexp.MustCompile(`(?im)href=["'].*?["']`)
	scriptsRe    = regexp.MustCompile(`(?im)<script>.*?<script>`)
	wpContentRe  = regexp.MustCompile(`(?im)wp-content`)
	phpinfoRe    = regexp.MustCompile(`(?im)/phpinfo\.php`)
	indexOfRe    = regexp.MustCompile(`(?im)<title>Index of /</title>`)
	indexHrefRe  = regexp.MustCompile(`(?im)href=["']/.*?["']`)
	adminLoginRe = regexp.MustCompile(`(?i)(admin|login)`)
	s3bucketRe   = regexp.MustCompile(`(?im)(https?://[^.]+\.s3\.amazonaws\.com/|https?://s3\.amazonaws\.com/[^/]+/)`)
)

// Process applies functionName (one of Functions) to every
// record, returning the number of records examined and the accumulated
// output text. userRegexp is only consulted when functionName is
// "regexmatch".
func Process(records []netindexer.FetchResult, functionName, userRegexp string) (int, string, error) {
	var regexMatch *regexp.Regexp
	if functionName == "regexmatch" {
		compiled, err := regexp.Compile("(?im)" + userRegexp)
		if err != nil {
			return 0, "", &netindexer.EngineError{Code: netindexer.ErrConfig, Op: "extract.Process", Err: err}
		}
		regexMatch = compiled
	}

	var sb strings.Builder
	count := 0
	for _, r := range records {
		count++

		// Special case: every record is emitted regardless of status.
		if functionName == "error" {
			fmt.Fprintf(&sb, "%s\t%s\n", r.Error, r.URL)
			continue
		}

		if r.HTTPCode != 200 {
			continue
		}

		// A Content-Encoding other than gzip leaves no usable text: skip.
		if enc, ok := r.Headers.Get("Content-Encoding"); ok && !strings.EqualFold(enc, "gzip") {
			continue
		}

		server, html := decodeHTML(r.Headers, r.Body)
		applyFunction(&sb, functionName, r, server, html, regexMatch)
	}
	return count, sb.String(), nil
}

const delimiter = "=================================================="

func applyFunction(sb *strings.Builder, functionName string, r netindexer.FetchResult, server, html string, regexMatch *regexp.Regexp) {
	switch functionName {
	case "ip":
		fmt.Fprintf(sb, "%s\t%s\n", r.IP, r.URL)

	case "server":
		if server != "" {
			fmt.Fprintf(sb, "%s\t%s\n", server, r.URL)
		}

	case "raw_html":
		fmt.Fprintf(sb, "%s\n%s\n%s\n", delimiter, r.URL, string(r.Body))

	case "html":
		fmt.Fprintf(sb, "%s\n%s\n%s\n", delimiter, r.URL, html)

	case "headers":
		fmt.Fprintf(sb, "%s\n%s\n%s\n", delimiter, r.URL, formatHeaders(r.Headers))

	case "poweredby":
		if v, ok := r.Headers.Get("X-Powered-By"); ok {
			fmt.Fprintf(sb, "%s\t%s\n", v, r.URL)
		}

	case "generator":
		if m := generatorRe.FindStringSubmatch(html); m != nil {
			fmt.Fprintf(sb, "%s\t%s\n", m[1], r.URL)
		}

	case "title":
		if m := titleRe.FindStringSubmatch(html); m != nil {
			fmt.Fprintf(sb, "%s\t%s\n", r.URL, m[1])
		}

	case "links":
		if matches := linksRe.FindAllString(html, -1); len(matches) > 0 {
			unique := uniqueStrings(matches)
			fmt.Fprintf(sb, "%s\n%s\n%s\n", delimiter, r.URL, strings.Join(unique, "\n"))
		}

	case "scripts":
		if matches := scriptsRe.FindAllString(html, -1); len(matches) > 0 {
			fmt.Fprintf(sb, "%s\n%s\n%s\n", delimiter, r.URL, strings.Join(matches, "\n"))
		}

	case "hiddenwp":
		if wpContentRe.MatchString(html) {
			fmt.Fprintf(sb, "%s\n", r.URL)
		}

	case "phpinfo":
		if phpinfoRe.MatchString(html) {
			fmt.Fprintf(sb, "%s\n", r.URL)
		}

	case "indexof":
		if indexOfRe.MatchString(html) {
			if matches := indexHrefRe.FindAllString(html, -1); len(matches) > 0 {
				unique := uniqueStrings(matches)
				fmt.Fprintf(sb, "%s\n\t%s\n", r.URL, strings.Join(unique, "\n\t"))
			}
		}

	case "adminpanel":
		if m := titleRe.FindStringSubmatch(html); m != nil {
			title := m[1]
			if adminLoginRe.MatchString(title) {
				fmt.Fprintf(sb, "%s\t%s\n", r.URL, title)
			}
		}

	case "s3bucket":
		buckets := map[string]struct{}{}
		for _, m := range s3bucketRe.FindAllStringSubmatch(html, -1) {
			buckets[m[1]] = struct{}{}
		}
		for bucket := range buckets {
			fmt.Fprintf(sb, "%s\t%s\n", r.URL, bucket)
		}

	case "max":
		if m := titleRe.FindStringSubmatch(html); m != nil {
			title := m[1]
			if maxKeywords.MatchString(title) {
				fmt.Fprintf(sb, "%s\t%s\n", r.URL, title)
			}
		}

	case "regexmatch":
		if matches := regexMatch.FindAllString(html, -1); len(matches) > 0 {
			fmt.Fprintf(sb, "%s\n%v\n", r.URL, matches)
		}
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func formatHeaders(h netindexer.Headers) string {
	var sb strings.Builder
	for _, hdr := range h {
		fmt.Fprintf(&sb, "%s: %s\n", hdr.Name, hdr.Value)
	}
	return sb.String()
}
