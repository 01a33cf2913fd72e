package chart

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/agentviz/agentviz/pkg/api"
)

var (
	jsBlockRe      = regexp.MustCompile("(?s)```javascript\\s*(.*?)\\s*```")
	assignmentRe   = regexp.MustCompile(`(const\s+|let\s+|var\s+)?option\s*=\s*`)
	lineCommentRe  = regexp.MustCompile(`//.*?\n`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	unquotedKeyRe  = regexp.MustCompile(`(\s*)(\w+)(\s*):([^:])`)
	trailingComma  = regexp.MustCompile(`,(\s*[\]}])`)
	braceObjectRe  = regexp.MustCompile(`(?s)(\{.*?\})`)
)

// ExtractBlocks returns the bodies of all ```javascript fenced blocks
// in the message content, in order.
func ExtractBlocks(content string) []string {
	var blocks []string
	for _, m := range jsBlockRe.FindAllStringSubmatch(content, -1) {
		blocks = append(blocks, m[1])
	}
	return blocks
}

// ParseBlock converts one generated JS config block into a plain-data
// chart config. The block is cleaned (assignment prefix, semicolons,
// comments, single quotes) and parsed as JSON; on failure a second pass
// quotes bare object keys and strips trailing commas. The boolean
// result reports whether parsing succeeded.
func ParseBlock(block string) (Config, bool) {
	cleaned := assignmentRe.ReplaceAllString(block, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, ";")
	cleaned = strings.ReplaceAll(cleaned, "'", `"`)
	cleaned = lineCommentRe.ReplaceAllString(cleaned, "\n")
	cleaned = blockCommentRe.ReplaceAllString(cleaned, "")

	var cfg Config
	if err := json.Unmarshal([]byte(cleaned), &cfg); err == nil {
		return cfg, true
	}

	// Quote bare keys and drop trailing commas, then retry.
	fixed := unquotedKeyRe.ReplaceAllString(cleaned, `${1}"${2}"${3}:${4}`)
	fixed = trailingComma.ReplaceAllString(fixed, "${1}")
	if err := json.Unmarshal([]byte(fixed), &cfg); err == nil {
		return cfg, true
	}

	return nil, false
}

// FromMessages extracts chart configs from every code-producing
// participant's messages, in message order. Blocks that fail to parse
// contribute a parse-error placeholder so the caller always receives
// one config per found block. Messages without fenced blocks are
// scanned for bare JSON objects that look like a chart config.
func FromMessages(messages []api.Message) []Config {
	var configs []Config
	blockIndex := 0

	for _, msg := range messages {
		if msg.Role != api.RoleCoder {
			continue
		}

		blocks := ExtractBlocks(msg.Content)
		if len(blocks) == 0 {
			if cfg, ok := scanLooseJSON(msg.Content); ok {
				configs = append(configs, cfg)
			}
			continue
		}

		for _, block := range blocks {
			blockIndex++
			if cfg, ok := ParseBlock(block); ok {
				configs = append(configs, cfg)
			} else {
				configs = append(configs, ParseError(blockIndex))
			}
		}
	}

	return configs
}

// scanLooseJSON looks for a brace-delimited JSON object in free text
// that carries at least one chart-config key.
func scanLooseJSON(content string) (Config, bool) {
	for _, m := range braceObjectRe.FindAllStringSubmatch(content, -1) {
		var cfg Config
		if err := json.Unmarshal([]byte(m[1]), &cfg); err != nil {
			continue
		}
		for _, key := range []string{"title", "series", "xAxis", "yAxis"} {
			if _, ok := cfg[key]; ok {
				return cfg, true
			}
		}
	}
	return nil, false
}
