// Package mcp exposes the analysis service as MCP tools over stdio.
//
// Tools:
//
//	analyze_output        classify one command's output
//	detect_intent         classify one phrase
//	analyze_conversation  aggregate intent over turns
//	analyze_session       analyze a Claude Code transcript file
//	list_rules            list execution rules
//	tool_search           find tools by name, description or keyword
//
// Signal excerpts are scrubbed for secrets by the analysis service before
// they reach the client.
package mcp
