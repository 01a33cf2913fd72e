package engine

import (
	"fmt"
	"strings"

	"github.com/agentviz/agentviz/pkg/dataset"
)

// Participant display names, recorded on every emitted message.
const (
	participantProxy   = "User_Proxy"
	participantAnalyst = "Data_Analyst"
	participantCoder   = "Visualization_Coder"
	participantSystem  = "System"
)

const proxyPrompt = `You are a proxy for the human user. Your role is to request visualizations and approve them when they look good. When the Visualization_Coder provides complete ECharts configurations, thank them and end the conversation.`

// proxyAck is what the proxy says on its non-kickoff turns. It carries
// no analysis; it only keeps the rotation moving.
const proxyAck = `Thank you. Please continue: refine the visualizations or provide the remaining configurations.`

func analystPrompt(dataPath string, summary *dataset.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert data analyst. Your task is to analyze the provided dataset (%s) and identify the most insightful visualizations.

Dataset summary:
%s

INSTRUCTIONS:
1. Suggest visualizations that reveal meaningful patterns: distributions across categories, comparisons between numeric columns, trends over time.
2. For each visualization give DETAILED specifications:
   - The exact column names to use (must match the dataset exactly)
   - Precise data transformations: "Group by <column>", "Sum <column> for each group", "Sort descending by the aggregated value"
   - The chart type with a short justification
   - Descriptive title and axis labels
   - Limits when categories are numerous: "Include only the top 10, group the rest as 'Other'"
3. Recommend number formatting (thousand separators for large values), axis label rotation for long category names, and tooltip content.

Remember, the Visualization_Coder implements your suggestions using Apache ECharts, so be as specific as possible about data processing and visual elements.`,
		dataPath, summary.Describe())
	return b.String()
}

const coderPrompt = `You are an expert in creating data visualizations using Apache ECharts.

IMPORTANT: your configurations are parsed directly as JSON and rendered in a browser.

REQUIREMENTS:
1. Always use REAL DATA from the dataset, never placeholder values.
2. Apply the grouping, aggregation, and sorting the Data_Analyst specified.
3. Generate complete ECharts configuration objects as valid JSON: double quotes for all keys and string values, no functions, no comments, no trailing commas.
4. Include a "title", axis descriptors ("xAxis"/"yAxis", or pie series), tooltips with formatted values, and a "series" list where every entry declares "type" and "data".
5. Keep charts readable: rotate axis labels when category names are long, limit category counts, position legends at the bottom.

RESPONSE FORMAT: wrap each configuration in a fenced block:
` + "```javascript" + `
{ ... }
` + "```" + `

When the data processing is too involved to express directly, you may instead provide Python code in a ` + "```python" + ` block that uses the pre-loaded DataFrame ` + "`df`" + ` with pandas and plotly, and assigns the resulting figure to a variable named ` + "`fig`" + `.`

// kickoff builds the proxy's opening message. With no user prompt the
// agents are asked for an initial set of suggestions; otherwise the
// specific request is forwarded.
func kickoff(userPrompt, dataPath string, summary *dataset.Summary) string {
	sample := summary.Describe()
	if userPrompt == "" {
		return fmt.Sprintf(`Analyze the dataset at %s and provide 3 insightful visualizations using Apache ECharts.
Here is a sample of the data:
%s

Data_Analyst: Please analyze this dataset and suggest 3 insightful visualizations with clear specifications.
Visualization_Coder: Once you receive the specifications, create ECharts configurations that can be directly used in a browser application.`, dataPath, sample)
	}
	return fmt.Sprintf(`The user asks for a specific visualization: %q
Analyze this request based on the dataset at %s and create the visualization.
Here is a sample of the data:
%s

Data_Analyst: Please analyze this specific request and suggest how to visualize it effectively.
Visualization_Coder: Once you receive the specifications, create an ECharts configuration that can be directly used in a browser application.`, userPrompt, dataPath, sample)
}
