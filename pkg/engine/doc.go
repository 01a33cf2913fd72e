// Package engine drives the multi-agent conversation that turns a
// dataset and an optional user prompt into chart configurations. A
// fixed cast (proxy, analyst, coder) speaks in round-robin order up to
// a bounded number of turns; the exchange ends early once the coder
// delivers a chart configuration. Generated Python code blocks are
// handed to the sandbox through the repair driver, and every produced
// message is appended to the job record the moment it exists.
package engine
