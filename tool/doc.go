// Package tool exposes the name search as a named capability that an external
// orchestrator (an LLM agent, an MCP client) can invoke.
//
// A Tool declares its name, description and JSON schemas and is invoked with
// a single free-text input. Tools are kept in a Registry; a Session bounds how
// many invocations one orchestration run may make. Adapters publish tools as
// langchaingo tools and on an MCP server.
package tool
