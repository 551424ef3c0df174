// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models driving routing decisions.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (host agent, runner) remain decoupled from vendor
// SDKs.
package model
