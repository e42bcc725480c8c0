// Package tool holds the tools agents can call and the Registry that
// resolves the names a model asks for.
//
// A Tool describes its arguments as a JSON schema and receives them as raw
// JSON:
//
//	reg, err := tool.NewRegistry(
//		tool.NewSystemTime(nil),
//		tool.Calculator(),
//	)
//	if err != nil {
//		return err
//	}
//	t, err := reg.Lookup("get_system_time")
//	out, err := t.Call(ctx, `{"format": "%H:%M"}`)
//
// Lookup of a name that was never registered returns *UnknownToolError.
//
// # Available Tools
//
//   - get_system_time: current time, strftime layout
//   - calculator and DuckDuckGo_Search: langchaingo tools wrapped by FromLangChain
//   - tavily_search and brave_search: web search, also usable as a Searcher
//   - fetch_web_page: readable text of a URL
//   - Research: runs the search_queries of a structured research answer
package tool
