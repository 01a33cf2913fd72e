package chart

import (
	"testing"

	"github.com/agentviz/agentviz/pkg/api"
)

func TestExtractBlocks(t *testing.T) {
	content := "Here is the chart:\n```javascript\noption = {\"title\": {}}\n```\nand another\n```javascript\n{\"series\": []}\n```"

	blocks := ExtractBlocks(content)
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	if blocks[0] != `option = {"title": {}}` {
		t.Errorf("block 0 = %q", blocks[0])
	}
}

func TestParseBlockCleanJSON(t *testing.T) {
	cfg, ok := ParseBlock(`{"title": {"text": "T"}, "series": [{"type": "bar", "data": [1, 2]}]}`)
	if !ok {
		t.Fatal("ParseBlock() failed on valid JSON")
	}
	if cfg["title"].(map[string]any)["text"] != "T" {
		t.Errorf("title = %v", cfg["title"])
	}
}

func TestParseBlockStripsAssignment(t *testing.T) {
	tests := []string{
		`option = {"title": {"text": "T"}};`,
		`const option = {"title": {"text": "T"}}`,
		`let option = {"title": {"text": "T"}};`,
		`var option = {"title": {"text": "T"}}`,
	}
	for _, src := range tests {
		cfg, ok := ParseBlock(src)
		if !ok {
			t.Errorf("ParseBlock(%q) failed", src)
			continue
		}
		if cfg["title"].(map[string]any)["text"] != "T" {
			t.Errorf("ParseBlock(%q) title = %v", src, cfg["title"])
		}
	}
}

func TestParseBlockSingleQuotes(t *testing.T) {
	cfg, ok := ParseBlock(`{'title': {'text': 'Revenue'}}`)
	if !ok {
		t.Fatal("ParseBlock() failed on single-quoted input")
	}
	if cfg["title"].(map[string]any)["text"] != "Revenue" {
		t.Errorf("title = %v", cfg["title"])
	}
}

func TestParseBlockComments(t *testing.T) {
	src := `{
  "title": {"text": "T"}, // chart title
  /* series follow */
  "series": []
}`
	if _, ok := ParseBlock(src); !ok {
		t.Fatal("ParseBlock() failed on commented input")
	}
}

func TestParseBlockUnquotedKeys(t *testing.T) {
	cfg, ok := ParseBlock(`{title: {text: "T"}, series: [{type: "bar", data: [1]}]}`)
	if !ok {
		t.Fatal("ParseBlock() failed on unquoted keys")
	}
	if cfg["title"].(map[string]any)["text"] != "T" {
		t.Errorf("title = %v", cfg["title"])
	}
}

func TestParseBlockTrailingCommas(t *testing.T) {
	cfg, ok := ParseBlock(`{"series": [{"type": "bar", "data": [1, 2,],},],}`)
	if !ok {
		t.Fatal("ParseBlock() failed on trailing commas")
	}
	if len(cfg["series"].([]any)) != 1 {
		t.Errorf("series = %v", cfg["series"])
	}
}

func TestParseBlockHopeless(t *testing.T) {
	if _, ok := ParseBlock(`function draw() { return 42; }`); ok {
		t.Error("ParseBlock() succeeded on non-config input")
	}
}

func TestFromMessages(t *testing.T) {
	messages := []api.Message{
		{Role: api.RoleAnalyst, Content: "use a bar chart\n```javascript\n{\"series\": []}\n```"},
		{Role: api.RoleCoder, Content: "```javascript\n{\"title\": {\"text\": \"A\"}, \"series\": [{\"type\": \"bar\", \"data\": []}]}\n```"},
		{Role: api.RoleCoder, Content: "```javascript\nthis is not parseable {{{\n```"},
	}

	configs := FromMessages(messages)
	if len(configs) != 2 {
		t.Fatalf("configs = %d, want 2 (analyst block ignored)", len(configs))
	}
	if configs[0]["title"].(map[string]any)["text"] != "A" {
		t.Errorf("config 0 title = %v", configs[0]["title"])
	}
	// The unparseable block yields a parse-error placeholder.
	title := configs[1]["title"].(map[string]any)["text"].(string)
	if title != "Visualization 2 (Parsing Error)" {
		t.Errorf("config 1 title = %q, want parse-error placeholder", title)
	}
}

func TestFromMessagesLooseJSON(t *testing.T) {
	messages := []api.Message{
		{Role: api.RoleCoder, Content: `the config is {"title": "loose", "series": []} as requested`},
	}

	configs := FromMessages(messages)
	if len(configs) != 1 {
		t.Fatalf("configs = %d, want 1", len(configs))
	}
}
